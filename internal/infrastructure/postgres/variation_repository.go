package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
)

var _ repository.VariationRepository = (*VariationRepo)(nil)

// VariationRepo lectura del catálogo de variaciones sobre PostgreSQL.
type VariationRepo struct {
	q Querier
}

// NewVariationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewVariationRepository(q Querier) *VariationRepo {
	return &VariationRepo{q: q}
}

// GetByID obtiene una variación por ID.
func (r *VariationRepo) GetByID(ctx context.Context, id string) (*entity.ProductVariation, error) {
	query := `
		SELECT id, business_id, product_id, sku, name, unit
		FROM product_variations WHERE id = $1`
	var v entity.ProductVariation
	err := r.q.QueryRow(ctx, query, id).Scan(&v.ID, &v.BusinessID, &v.ProductID, &v.SKU, &v.Name, &v.Unit)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get variation: %w", err)
	}
	return &v, nil
}

// GetBySKU obtiene una variación por SKU dentro del negocio (importación de saldos iniciales).
func (r *VariationRepo) GetBySKU(ctx context.Context, businessID, sku string) (*entity.ProductVariation, error) {
	query := `
		SELECT id, business_id, product_id, sku, name, unit
		FROM product_variations WHERE business_id = $1 AND sku = $2`
	var v entity.ProductVariation
	err := r.q.QueryRow(ctx, query, businessID, sku).Scan(&v.ID, &v.BusinessID, &v.ProductID, &v.SKU, &v.Name, &v.Unit)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get variation by sku: %w", err)
	}
	return &v, nil
}
