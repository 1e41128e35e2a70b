package repository

import (
	"context"

	"github.com/jhoicas/traslados-api/internal/domain/entity"
)

// AuditRepository puerto del registro de auditoría (solo inserción y consulta).
type AuditRepository interface {
	Create(ctx context.Context, entry *entity.AuditEntry) error
	ListByEntity(ctx context.Context, businessID, entityType, entityID string) ([]*entity.AuditEntry, error)
}
