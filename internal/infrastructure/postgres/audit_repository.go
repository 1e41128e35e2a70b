package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo registro de auditoría en PostgreSQL (solo inserción).
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador.
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Create inserta una entrada.
func (r *AuditRepo) Create(ctx context.Context, e *entity.AuditEntry) error {
	query := `
		INSERT INTO audit_entries (id, business_id, entity_type, entity_id, action, actor_id, ts,
			before_state, after_state, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.BusinessID, e.EntityType, e.EntityID, e.Action, e.ActorID, e.Timestamp,
		jsonOrNil(e.Before), jsonOrNil(e.After), jsonOrNil(e.Metadata),
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListByEntity historial de una entidad en orden cronológico.
func (r *AuditRepo) ListByEntity(ctx context.Context, businessID, entityType, entityID string) ([]*entity.AuditEntry, error) {
	query := `
		SELECT id, business_id, entity_type, entity_id, action, actor_id, ts, before_state, after_state, metadata
		FROM audit_entries
		WHERE business_id = $1 AND entity_type = $2 AND entity_id = $3
		ORDER BY ts, id`
	rows, err := r.q.Query(ctx, query, businessID, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuditEntry
	for rows.Next() {
		var e entity.AuditEntry
		if err := rows.Scan(&e.ID, &e.BusinessID, &e.EntityType, &e.EntityID, &e.Action, &e.ActorID, &e.Timestamp,
			&e.Before, &e.After, &e.Metadata); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// jsonOrNil evita enviar un []byte vacío a una columna JSONB.
func jsonOrNil(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
