package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest saldo inicial o ajuste de inventario.
type RegisterMovementRequest struct {
	LocationID  string          `json:"location_id" validate:"required,uuid"`
	VariationID string          `json:"variation_id" validate:"required,uuid"`
	Type        string          `json:"type" validate:"required,oneof=opening_stock adjustment"`
	Quantity    decimal.Decimal `json:"quantity" swaggertype:"string" example:"10"`
	Note        string          `json:"note" validate:"omitempty,max=500"`
}

// LedgerEntryResponse asiento del libro de stock.
type LedgerEntryResponse struct {
	ID              string          `json:"id"`
	LocationID      string          `json:"location_id"`
	VariationID     string          `json:"variation_id"`
	TransactionType string          `json:"transaction_type"`
	QuantityDelta   decimal.Decimal `json:"quantity_delta" swaggertype:"string"`
	BalanceAfter    decimal.Decimal `json:"balance_after" swaggertype:"string"`
	ReferenceType   string          `json:"reference_type"`
	ReferenceID     string          `json:"reference_id"`
	ReferenceLineID string          `json:"reference_line_id,omitempty"`
	Note            string          `json:"note,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	CreatedBy       string          `json:"created_by"`
}

// BalanceResponse saldo de una variación en una ubicación.
type BalanceResponse struct {
	LocationID  string          `json:"location_id"`
	VariationID string          `json:"variation_id"`
	Quantity    decimal.Decimal `json:"quantity" swaggertype:"string"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

// ReconcileResponse comparación saldo materializado vs suma del libro.
type ReconcileResponse struct {
	LocationID   string          `json:"location_id"`
	VariationID  string          `json:"variation_id"`
	Materialized decimal.Decimal `json:"materialized" swaggertype:"string"`
	LedgerSum    decimal.Decimal `json:"ledger_sum" swaggertype:"string"`
	Consistent   bool            `json:"consistent"`
}
