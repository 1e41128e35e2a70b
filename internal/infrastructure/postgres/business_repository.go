package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
)

// Asegura que BusinessRepo implementa repository.BusinessRepository.
var _ repository.BusinessRepository = (*BusinessRepo)(nil)

// BusinessRepo implementación del puerto BusinessRepository sobre PostgreSQL.
type BusinessRepo struct {
	q Querier
}

// NewBusinessRepository construye el adaptador de persistencia para negocios.
func NewBusinessRepository(q Querier) *BusinessRepo {
	return &BusinessRepo{q: q}
}

// GetByID obtiene un negocio por ID.
func (r *BusinessRepo) GetByID(ctx context.Context, id string) (*entity.Business, error) {
	query := `
		SELECT id, name, tax_id, status, created_at, updated_at
		FROM businesses WHERE id = $1`
	var b entity.Business
	err := r.q.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.Name, &b.TaxID, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get business: %w", err)
	}
	return &b, nil
}

// HasActiveModule informa si el negocio tiene el módulo activo y sin vencer.
// Consulta directamente business_modules para una respuesta O(1) vía índice.
func (r *BusinessRepo) HasActiveModule(ctx context.Context, businessID, moduleName string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM business_modules
			 WHERE business_id = $1
			   AND module_name = $2
			   AND is_active   = true
			   AND (expires_at IS NULL OR expires_at > now())
		)`
	var active bool
	if err := r.q.QueryRow(ctx, query, businessID, moduleName).Scan(&active); err != nil {
		return false, fmt.Errorf("check module %s: %w", moduleName, err)
	}
	return active, nil
}
