package repository

import (
	"context"

	"github.com/jhoicas/traslados-api/internal/domain/entity"
)

// LocationRepository define el puerto de persistencia para Location (DIP).
type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	Update(ctx context.Context, location *entity.Location) error
	ListByBusiness(ctx context.Context, businessID string, limit, offset int) ([]*entity.Location, error)
}

// VariationRepository consulta de solo lectura sobre el catálogo de variaciones.
type VariationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.ProductVariation, error)
}
