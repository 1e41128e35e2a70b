package transfer

import (
	"context"
	"time"

	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
)

// TxRunner ejecuta una transición dentro de una transacción: el agregado y el libro de stock
// comparten la misma tx, de modo que estado y asientos se confirman juntos o no se confirman.
type TxRunner interface {
	RunTransfer(ctx context.Context, fn func(
		transferRepo repository.TransferRepository,
		ledgerRepo repository.StockLedgerRepository,
	) error) error
}

// Authorizer consulta si un actor tiene un permiso.
type Authorizer interface {
	HasPermission(ctx context.Context, actorID string, perm entity.Permission) (bool, error)
}

// Event notificación emitida tras cada transición confirmada.
type Event struct {
	BusinessID     string                `json:"business_id"`
	TransferID     string                `json:"transfer_id"`
	TransferNumber string                `json:"transfer_number"`
	Action         string                `json:"action"`
	Status         entity.TransferStatus `json:"status"`
	ActorID        string                `json:"actor_id"`
	OccurredAt     time.Time             `json:"occurred_at"`
}

// Notifier publica eventos sin bloquear la transición (fire-and-forget).
type Notifier interface {
	Publish(ctx context.Context, evt Event) error
}

// DispatchNoteRenderer genera la guía de traslado.
type DispatchNoteRenderer interface {
	Render(note DispatchNote) ([]byte, error)
}

// Actor identidad de quien ejecuta la operación (tomada del JWT).
type Actor struct {
	UserID     string
	BusinessID string
}
