package repository

import (
	"context"

	"github.com/jhoicas/traslados-api/internal/domain/entity"
)

// BusinessRepository define el puerto de persistencia para Business y sus módulos contratados.
type BusinessRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Business, error)
	// HasActiveModule informa si el negocio tiene el módulo activo y sin vencer.
	HasActiveModule(ctx context.Context, businessID, moduleName string) (bool, error)
}
