package repository

import (
	"context"

	"github.com/jhoicas/traslados-api/internal/domain/entity"
)

// TransferFilter filtros del listado de traslados. Campos vacíos no filtran.
type TransferFilter struct {
	BusinessID     string
	Status         entity.TransferStatus
	FromLocationID string
	ToLocationID   string
	Limit          int
	Offset         int
}

// TransferRepository define el puerto de persistencia del agregado Transfer (cabecera + ítems).
// GetByID y GetForUpdate devuelven (nil, nil) si no existe en el negocio.
type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.Transfer) error
	GetByID(ctx context.Context, businessID, id string) (*entity.Transfer, error)
	// GetForUpdate lee el agregado bloqueando la cabecera (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, businessID, id string) (*entity.Transfer, error)
	// Update persiste la cabecera solo si la versión almacenada es expectedVersion y la incrementa;
	// si otra transición ganó devuelve domain.ErrInvalidTransition.
	Update(ctx context.Context, transfer *entity.Transfer, expectedVersion int) error
	// ReplaceItems reemplaza las líneas de un borrador.
	ReplaceItems(ctx context.Context, transfer *entity.Transfer) error
	// UpdateItem persiste los datos de verificación de una línea.
	UpdateItem(ctx context.Context, item *entity.TransferItem) error
	List(ctx context.Context, filter TransferFilter) ([]*entity.Transfer, error)
	// NextNumber reserva el siguiente consecutivo del negocio para el año dado.
	NextNumber(ctx context.Context, businessID string, year int) (int, error)
}
