package http

import (
	"github.com/jhoicas/traslados-api/internal/application/dto"
	invapp "github.com/jhoicas/traslados-api/internal/application/inventory"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	workflow "github.com/jhoicas/traslados-api/internal/domain/transfer"
)

func toTransferResponse(t *entity.Transfer) dto.TransferResponse {
	out := dto.TransferResponse{
		ID:                 t.ID,
		BusinessID:         t.BusinessID,
		TransferNumber:     t.TransferNumber,
		FromLocationID:     t.FromLocationID,
		ToLocationID:       t.ToLocationID,
		TransferDate:       t.TransferDate,
		Status:             string(t.Status),
		StockDeducted:      t.StockDeducted,
		Notes:              t.Notes,
		CheckerNotes:       t.CheckerNotes,
		CancellationReason: t.CancellationReason,
		Version:            t.Version,
		DiscrepancyCount:   t.DiscrepancyCount(),
		AllowedActions:     []string{},
		CreatedBy:          t.CreatedBy,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
		SubmittedBy:        t.SubmittedBy,
		SubmittedAt:        t.SubmittedAt,
		CheckedBy:          t.CheckedBy,
		CheckedAt:          t.CheckedAt,
		SentBy:             t.SentBy,
		SentAt:             t.SentAt,
		ArrivedBy:          t.ArrivedBy,
		ArrivedAt:          t.ArrivedAt,
		CompletedBy:        t.CompletedBy,
		CompletedAt:        t.CompletedAt,
		CancelledBy:        t.CancelledBy,
		CancelledAt:        t.CancelledAt,
		Items:              make([]dto.TransferItemResponse, 0, len(t.Items)),
	}
	for _, op := range workflow.Allowed(t.Status) {
		out.AllowedActions = append(out.AllowedActions, string(op))
	}
	for _, it := range t.Items {
		out.Items = append(out.Items, dto.TransferItemResponse{
			ID:                it.ID,
			ProductID:         it.ProductID,
			VariationID:       it.VariationID,
			QuantityRequested: it.QuantityRequested,
			QuantityReceived:  it.QuantityReceived,
			Verified:          it.Verified,
			VerifiedBy:        it.VerifiedBy,
			VerifiedAt:        it.VerifiedAt,
			HasDiscrepancy:    it.HasDiscrepancy,
		})
	}
	return out
}

func toItemInputs(items []dto.TransferItemRequest) []workflow.ItemInput {
	out := make([]workflow.ItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, workflow.ItemInput{ProductID: it.ProductID, VariationID: it.VariationID, Quantity: it.Quantity})
	}
	return out
}

func toAuditEntryResponses(entries []*entity.AuditEntry) []dto.AuditEntryResponse {
	out := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.AuditEntryResponse{
			ID:        e.ID,
			Action:    e.Action,
			ActorID:   e.ActorID,
			Timestamp: e.Timestamp,
			Before:    e.Before,
			After:     e.After,
			Metadata:  e.Metadata,
		})
	}
	return out
}

func toLedgerEntryResponses(entries []*entity.StockLedgerEntry) []dto.LedgerEntryResponse {
	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toLedgerEntryResponse(e))
	}
	return out
}

func toLedgerEntryResponse(e *entity.StockLedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:              e.ID,
		LocationID:      e.LocationID,
		VariationID:     e.VariationID,
		TransactionType: string(e.TransactionType),
		QuantityDelta:   e.QuantityDelta,
		BalanceAfter:    e.BalanceAfter,
		ReferenceType:   e.ReferenceType,
		ReferenceID:     e.ReferenceID,
		ReferenceLineID: e.ReferenceLineID,
		Note:            e.Note,
		CreatedAt:       e.CreatedAt,
		CreatedBy:       e.CreatedBy,
	}
}

func toBalanceResponses(balances []*entity.StockBalance) []dto.BalanceResponse {
	out := make([]dto.BalanceResponse, 0, len(balances))
	for _, b := range balances {
		updated := b.UpdatedAt
		out = append(out, dto.BalanceResponse{
			LocationID:  b.LocationID,
			VariationID: b.VariationID,
			Quantity:    b.Quantity,
			UpdatedAt:   &updated,
		})
	}
	return out
}

func toReconcileResponse(r *invapp.Reconciliation) dto.ReconcileResponse {
	return dto.ReconcileResponse{
		LocationID:   r.LocationID,
		VariationID:  r.VariationID,
		Materialized: r.Materialized,
		LedgerSum:    r.LedgerSum,
		Consistent:   r.Consistent,
	}
}
