package transfer

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/traslados-api/internal/domain/entity"
	workflow "github.com/jhoicas/traslados-api/internal/domain/transfer"
)

// UpdateDraft corrige un borrador (por ejemplo tras un rechazo). Solo en draft.
func (s *Service) UpdateDraft(ctx context.Context, actor Actor, transferID string, in UpdateDraftInput) (*entity.Transfer, error) {
	if err := s.authorize(ctx, actor, entity.PermTransferCreate); err != nil {
		return nil, err
	}
	current, err := s.Get(ctx, actor, transferID)
	if err != nil {
		return nil, err
	}
	if err := workflow.ValidateDraft(current.FromLocationID, current.ToLocationID, in.Items); err != nil {
		return nil, err
	}
	items, err := s.checkCatalog(ctx, actor.BusinessID, current.FromLocationID, current.ToLocationID, in.Items)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, transferID, workflow.OpUpdateDraft, entity.PermTransferCreate,
		func(t *entity.Transfer, now time.Time) (effect, error) {
			if err := workflow.ReplaceDraft(t, in.Notes, in.TransferDate, items, newID, now); err != nil {
				return effect{}, err
			}
			return effect{replaceItems: true, stockChecks: items, meta: map[string]any{"items": len(items)}}, nil
		})
}

// Submit envía el borrador a revisión.
func (s *Service) Submit(ctx context.Context, actor Actor, transferID string) (*entity.Transfer, error) {
	return s.transition(ctx, actor, transferID, workflow.OpSubmit, entity.PermTransferSubmit,
		func(t *entity.Transfer, now time.Time) (effect, error) {
			return effect{}, workflow.Submit(t, actor.UserID, now)
		})
}

// Approve aprueba la revisión; quien envió a revisión no puede aprobar.
func (s *Service) Approve(ctx context.Context, actor Actor, transferID string) (*entity.Transfer, error) {
	return s.transition(ctx, actor, transferID, workflow.OpApprove, entity.PermTransferCheck,
		func(t *entity.Transfer, now time.Time) (effect, error) {
			return effect{}, workflow.Approve(t, actor.UserID, now)
		})
}

// Reject devuelve el traslado a borrador con un motivo obligatorio.
func (s *Service) Reject(ctx context.Context, actor Actor, transferID, reason string) (*entity.Transfer, error) {
	return s.transition(ctx, actor, transferID, workflow.OpReject, entity.PermTransferCheck,
		func(t *entity.Transfer, now time.Time) (effect, error) {
			if err := workflow.Reject(t, reason, now); err != nil {
				return effect{}, err
			}
			return effect{meta: map[string]any{"reason": t.CheckerNotes}}, nil
		})
}

// Send despacha la mercancía: descuenta el origen contra el saldo vigente (bloqueado) de cada ítem.
func (s *Service) Send(ctx context.Context, actor Actor, transferID string) (*entity.Transfer, error) {
	return s.transition(ctx, actor, transferID, workflow.OpSend, entity.PermTransferSend,
		func(t *entity.Transfer, now time.Time) (effect, error) {
			postings, err := workflow.Send(t, actor.UserID, now)
			if err != nil {
				return effect{}, err
			}
			return effect{postings: postings}, nil
		})
}

// MarkArrived registra la llegada al destino. No mueve stock.
func (s *Service) MarkArrived(ctx context.Context, actor Actor, transferID string) (*entity.Transfer, error) {
	return s.transition(ctx, actor, transferID, workflow.OpMarkArrived, entity.PermTransferReceive,
		func(t *entity.Transfer, now time.Time) (effect, error) {
			return effect{}, workflow.MarkArrived(t, actor.UserID, now)
		})
}

// StartVerification abre el conteo de recepción.
func (s *Service) StartVerification(ctx context.Context, actor Actor, transferID string) (*entity.Transfer, error) {
	return s.transition(ctx, actor, transferID, workflow.OpStartVerification, entity.PermTransferReceive,
		func(t *entity.Transfer, now time.Time) (effect, error) {
			return effect{}, workflow.StartVerification(t, now)
		})
}

// VerifyItem registra la cantidad recibida de un ítem. Una sola vez por ítem.
func (s *Service) VerifyItem(ctx context.Context, actor Actor, transferID, itemID string, received decimal.Decimal) (*entity.Transfer, error) {
	return s.transition(ctx, actor, transferID, workflow.OpVerifyItem, entity.PermTransferReceive,
		func(t *entity.Transfer, now time.Time) (effect, error) {
			it, err := workflow.VerifyItem(t, itemID, received, actor.UserID, now)
			if err != nil {
				return effect{}, err
			}
			return effect{item: it, meta: map[string]any{
				"item_id":            it.ID,
				"quantity_requested": it.QuantityRequested,
				"quantity_received":  received,
				"has_discrepancy":    it.HasDiscrepancy,
			}}, nil
		})
}

// Complete cierra el traslado y acredita el destino por la cantidad recibida.
func (s *Service) Complete(ctx context.Context, actor Actor, transferID string) (*entity.Transfer, error) {
	return s.transition(ctx, actor, transferID, workflow.OpComplete, entity.PermTransferReceive,
		func(t *entity.Transfer, now time.Time) (effect, error) {
			postings, err := workflow.Complete(t, actor.UserID, now)
			if err != nil {
				return effect{}, err
			}
			return effect{postings: postings, meta: map[string]any{"discrepancies": t.DiscrepancyCount()}}, nil
		})
}

// Cancel anula el traslado; si el origen ya fue descontado lo restituye en la misma transacción.
func (s *Service) Cancel(ctx context.Context, actor Actor, transferID, reason string) (*entity.Transfer, error) {
	return s.transition(ctx, actor, transferID, workflow.OpCancel, entity.PermTransferCancel,
		func(t *entity.Transfer, now time.Time) (effect, error) {
			postings, err := workflow.Cancel(t, actor.UserID, reason, now)
			if err != nil {
				return effect{}, err
			}
			return effect{postings: postings, meta: map[string]any{"reason": t.CancellationReason}}, nil
		})
}
