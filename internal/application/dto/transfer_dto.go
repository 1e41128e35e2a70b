package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// TransferItemRequest línea solicitada.
type TransferItemRequest struct {
	ProductID   string          `json:"product_id" validate:"omitempty,uuid"`
	VariationID string          `json:"variation_id" validate:"required,uuid"`
	Quantity    decimal.Decimal `json:"quantity" swaggertype:"string" example:"5"`
}

// CreateTransferRequest entrada para crear un traslado.
type CreateTransferRequest struct {
	FromLocationID string                `json:"from_location_id" validate:"required,uuid"`
	ToLocationID   string                `json:"to_location_id" validate:"required,uuid,nefield=FromLocationID"`
	TransferDate   *time.Time            `json:"transfer_date"`
	Notes          string                `json:"notes" validate:"omitempty,max=1000"`
	Items          []TransferItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateTransferRequest corrección de un borrador.
type UpdateTransferRequest struct {
	TransferDate *time.Time            `json:"transfer_date"`
	Notes        string                `json:"notes" validate:"omitempty,max=1000"`
	Items        []TransferItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ReasonRequest motivo de rechazo o anulación.
type ReasonRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// VerifyItemRequest conteo físico de una línea.
type VerifyItemRequest struct {
	QuantityReceived decimal.Decimal `json:"quantity_received" swaggertype:"string" example:"5"`
}

// TransferItemResponse salida de una línea.
type TransferItemResponse struct {
	ID                string           `json:"id"`
	ProductID         string           `json:"product_id"`
	VariationID       string           `json:"variation_id"`
	QuantityRequested decimal.Decimal  `json:"quantity_requested" swaggertype:"string"`
	QuantityReceived  *decimal.Decimal `json:"quantity_received,omitempty" swaggertype:"string"`
	Verified          bool             `json:"verified"`
	VerifiedBy        string           `json:"verified_by,omitempty"`
	VerifiedAt        *time.Time       `json:"verified_at,omitempty"`
	HasDiscrepancy    bool             `json:"has_discrepancy"`
}

// TransferResponse salida del agregado.
type TransferResponse struct {
	ID                 string                 `json:"id"`
	BusinessID         string                 `json:"business_id"`
	TransferNumber     string                 `json:"transfer_number"`
	FromLocationID     string                 `json:"from_location_id"`
	ToLocationID       string                 `json:"to_location_id"`
	TransferDate       time.Time              `json:"transfer_date"`
	Status             string                 `json:"status"`
	StockDeducted      bool                   `json:"stock_deducted"`
	Notes              string                 `json:"notes,omitempty"`
	CheckerNotes       string                 `json:"checker_notes,omitempty"`
	CancellationReason string                 `json:"cancellation_reason,omitempty"`
	Version            int                    `json:"version"`
	DiscrepancyCount   int                    `json:"discrepancy_count"`
	AllowedActions     []string               `json:"allowed_actions"`
	CreatedBy          string                 `json:"created_by"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
	SubmittedBy        string                 `json:"submitted_by,omitempty"`
	SubmittedAt        *time.Time             `json:"submitted_at,omitempty"`
	CheckedBy          string                 `json:"checked_by,omitempty"`
	CheckedAt          *time.Time             `json:"checked_at,omitempty"`
	SentBy             string                 `json:"sent_by,omitempty"`
	SentAt             *time.Time             `json:"sent_at,omitempty"`
	ArrivedBy          string                 `json:"arrived_by,omitempty"`
	ArrivedAt          *time.Time             `json:"arrived_at,omitempty"`
	CompletedBy        string                 `json:"completed_by,omitempty"`
	CompletedAt        *time.Time             `json:"completed_at,omitempty"`
	CancelledBy        string                 `json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time             `json:"cancelled_at,omitempty"`
	Items              []TransferItemResponse `json:"items"`
}

// TransferListResponse lista paginada de traslados.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// AuditEntryResponse entrada del historial de un traslado.
type AuditEntryResponse struct {
	ID        string          `json:"id"`
	Action    string          `json:"action"`
	ActorID   string          `json:"actor_id"`
	Timestamp time.Time       `json:"timestamp"`
	Before    json.RawMessage `json:"before,omitempty" swaggertype:"object"`
	After     json.RawMessage `json:"after,omitempty" swaggertype:"object"`
	Metadata  json.RawMessage `json:"metadata,omitempty" swaggertype:"object"`
}
