package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus estado del flujo de traslado entre ubicaciones.
type TransferStatus string

// Estados del traslado. completed y cancelled son terminales.
const (
	TransferDraft        TransferStatus = "draft"
	TransferPendingCheck TransferStatus = "pending_check"
	TransferChecked      TransferStatus = "checked"
	TransferInTransit    TransferStatus = "in_transit"
	TransferArrived      TransferStatus = "arrived"
	TransferVerifying    TransferStatus = "verifying"
	TransferCompleted    TransferStatus = "completed"
	TransferCancelled    TransferStatus = "cancelled"
)

// IsValid indica si el estado pertenece al catálogo.
func (s TransferStatus) IsValid() bool {
	switch s {
	case TransferDraft, TransferPendingCheck, TransferChecked, TransferInTransit,
		TransferArrived, TransferVerifying, TransferCompleted, TransferCancelled:
		return true
	}
	return false
}

// IsTerminal indica si no se admiten más transiciones.
func (s TransferStatus) IsTerminal() bool {
	return s == TransferCompleted || s == TransferCancelled
}

// HoldsDeductedStock indica los estados en los que el origen ya fue descontado.
func (s TransferStatus) HoldsDeductedStock() bool {
	switch s {
	case TransferInTransit, TransferArrived, TransferVerifying, TransferCompleted:
		return true
	}
	return false
}

// Transfer cabecera de un traslado de mercancía entre dos ubicaciones del mismo negocio.
type Transfer struct {
	ID             string
	BusinessID     string
	TransferNumber string
	FromLocationID string
	ToLocationID   string
	TransferDate   time.Time
	Status         TransferStatus
	StockDeducted  bool
	Notes          string
	CheckerNotes   string
	Version        int

	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	SubmittedBy string
	SubmittedAt *time.Time
	CheckedBy   string
	CheckedAt   *time.Time
	SentBy      string
	SentAt      *time.Time
	ArrivedBy   string
	ArrivedAt   *time.Time
	CompletedBy string
	CompletedAt *time.Time
	CancelledBy string
	CancelledAt *time.Time

	CancellationReason string

	Items []TransferItem
}

// TransferItem línea de un traslado.
type TransferItem struct {
	ID                string
	TransferID        string
	ProductID         string
	VariationID       string
	QuantityRequested decimal.Decimal
	QuantityReceived  *decimal.Decimal // nil hasta verificar
	Verified          bool
	VerifiedBy        string
	VerifiedAt        *time.Time
	HasDiscrepancy    bool
}

// Item busca una línea por ID.
func (t *Transfer) Item(itemID string) *TransferItem {
	for i := range t.Items {
		if t.Items[i].ID == itemID {
			return &t.Items[i]
		}
	}
	return nil
}

// DiscrepancyCount cuenta las líneas verificadas con diferencia.
func (t *Transfer) DiscrepancyCount() int {
	n := 0
	for _, it := range t.Items {
		if it.HasDiscrepancy {
			n++
		}
	}
	return n
}

// Clone copia profunda (las líneas y los punteros de tiempo/cantidad no se comparten).
func (t *Transfer) Clone() *Transfer {
	if t == nil {
		return nil
	}
	c := *t
	c.SubmittedAt = cloneTime(t.SubmittedAt)
	c.CheckedAt = cloneTime(t.CheckedAt)
	c.SentAt = cloneTime(t.SentAt)
	c.ArrivedAt = cloneTime(t.ArrivedAt)
	c.CompletedAt = cloneTime(t.CompletedAt)
	c.CancelledAt = cloneTime(t.CancelledAt)
	c.Items = make([]TransferItem, len(t.Items))
	for i, it := range t.Items {
		c.Items[i] = it
		c.Items[i].VerifiedAt = cloneTime(it.VerifiedAt)
		if it.QuantityReceived != nil {
			q := *it.QuantityReceived
			c.Items[i].QuantityReceived = &q
		}
	}
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
