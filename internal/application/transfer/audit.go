package transfer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
	"github.com/jhoicas/traslados-api/pkg/logger"
)

// EntityTypeTransfer tipo de entidad en el registro de auditoría.
const EntityTypeTransfer = "transfer"

// ErrorClassAuditEmitFailed clase de error para alertar sobre auditoría omitida.
const ErrorClassAuditEmitFailed = "audit_emit_failed"

// AuditEmitter escribe una entrada por transición confirmada. Un fallo no revierte la transición
// pero queda registrado con error_class=audit_emit_failed.
type AuditEmitter struct {
	repo repository.AuditRepository
	log  *logger.Logger
}

// NewAuditEmitter construye el emisor.
func NewAuditEmitter(repo repository.AuditRepository, log *logger.Logger) *AuditEmitter {
	return &AuditEmitter{repo: repo, log: log}
}

type itemSnapshot struct {
	ID                string           `json:"id"`
	VariationID       string           `json:"variation_id"`
	QuantityRequested decimal.Decimal  `json:"quantity_requested"`
	QuantityReceived  *decimal.Decimal `json:"quantity_received,omitempty"`
	Verified          bool             `json:"verified"`
	HasDiscrepancy    bool             `json:"has_discrepancy"`
}

type transferSnapshot struct {
	Status             entity.TransferStatus `json:"status"`
	StockDeducted      bool                  `json:"stock_deducted"`
	Version            int                   `json:"version"`
	CheckerNotes       string                `json:"checker_notes,omitempty"`
	CancellationReason string                `json:"cancellation_reason,omitempty"`
	Items              []itemSnapshot        `json:"items"`
}

func snapshot(t *entity.Transfer) (json.RawMessage, error) {
	if t == nil {
		return nil, nil
	}
	s := transferSnapshot{
		Status:             t.Status,
		StockDeducted:      t.StockDeducted,
		Version:            t.Version,
		CheckerNotes:       t.CheckerNotes,
		CancellationReason: t.CancellationReason,
		Items:              make([]itemSnapshot, 0, len(t.Items)),
	}
	for _, it := range t.Items {
		s.Items = append(s.Items, itemSnapshot{
			ID:                it.ID,
			VariationID:       it.VariationID,
			QuantityRequested: it.QuantityRequested,
			QuantityReceived:  it.QuantityReceived,
			Verified:          it.Verified,
			HasDiscrepancy:    it.HasDiscrepancy,
		})
	}
	return json.Marshal(s)
}

type postingSummary struct {
	EntryID     string          `json:"entry_id"`
	LocationID  string          `json:"location_id"`
	VariationID string          `json:"variation_id"`
	Type        string          `json:"type"`
	Delta       decimal.Decimal `json:"delta"`
}

// Emit registra la transición. El contexto del request puede estar cancelado: se desacopla.
func (e *AuditEmitter) Emit(ctx context.Context, action string, actor Actor, before, after *entity.Transfer, entries []*entity.StockLedgerEntry, meta map[string]any) {
	if meta == nil {
		meta = map[string]any{}
	}
	if len(entries) > 0 {
		postings := make([]postingSummary, 0, len(entries))
		for _, en := range entries {
			postings = append(postings, postingSummary{
				EntryID:     en.ID,
				LocationID:  en.LocationID,
				VariationID: en.VariationID,
				Type:        string(en.TransactionType),
				Delta:       en.QuantityDelta,
			})
		}
		meta["postings"] = postings
	}
	metadata, err := json.Marshal(meta)
	if err != nil {
		e.failed(err, "metadata", action, actor, after)
	}
	beforeJSON, err := snapshot(before)
	if err != nil {
		e.failed(err, "before", action, actor, after)
	}
	afterJSON, err := snapshot(after)
	if err != nil {
		e.failed(err, "after", action, actor, after)
	}

	entry := &entity.AuditEntry{
		ID:         uuid.New().String(),
		BusinessID: actor.BusinessID,
		EntityType: EntityTypeTransfer,
		EntityID:   after.ID,
		Action:     action,
		ActorID:    actor.UserID,
		Timestamp:  time.Now(),
		Before:     beforeJSON,
		After:      afterJSON,
		Metadata:   metadata,
	}
	if err := e.repo.Create(context.WithoutCancel(ctx), entry); err != nil {
		e.failed(err, "store", action, actor, after)
	}
}

// failed registra con error_class=audit_emit_failed la parte de la entrada que no se pudo escribir.
func (e *AuditEmitter) failed(err error, stage, action string, actor Actor, t *entity.Transfer) {
	e.log.Error().
		Err(err).
		Str("error_class", ErrorClassAuditEmitFailed).
		Str("stage", stage).
		Str("transfer_id", t.ID).
		Str("transfer_number", t.TransferNumber).
		Str("action", action).
		Str("actor_id", actor.UserID).
		Msg("no se pudo registrar la auditoría de la transición")
}
