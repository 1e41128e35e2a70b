package transfer

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/inventory"
)

// ItemInput línea solicitada al crear o corregir un borrador.
type ItemInput struct {
	ProductID   string
	VariationID string
	Quantity    decimal.Decimal
}

// ValidateDraft valida origen/destino y líneas de un traslado nuevo o corregido.
func ValidateDraft(fromLocationID, toLocationID string, items []ItemInput) error {
	if fromLocationID == "" || toLocationID == "" {
		return fmt.Errorf("%w: origen y destino son obligatorios", domain.ErrInvalidInput)
	}
	if fromLocationID == toLocationID {
		return fmt.Errorf("%w: origen y destino deben ser distintos", domain.ErrInvalidInput)
	}
	if len(items) == 0 {
		return fmt.Errorf("%w: el traslado requiere al menos un ítem", domain.ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(items))
	for i, it := range items {
		if it.VariationID == "" {
			return fmt.Errorf("%w: ítem %d sin variación", domain.ErrInvalidInput, i+1)
		}
		if !it.Quantity.IsPositive() {
			return fmt.Errorf("%w: ítem %d con cantidad no positiva (%s)", domain.ErrInvalidInput, i+1, it.Quantity.String())
		}
		if err := inventory.ValidateScale(it.Quantity); err != nil {
			return fmt.Errorf("ítem %d: %w", i+1, err)
		}
		if _, dup := seen[it.VariationID]; dup {
			return fmt.Errorf("%w: la variación %s aparece más de una vez", domain.ErrInvalidInput, it.VariationID)
		}
		seen[it.VariationID] = struct{}{}
	}
	return nil
}

// CanApprove separación de funciones: quien envía a revisión no puede aprobar.
func CanApprove(actorID string, t *entity.Transfer) bool {
	return actorID != "" && t != nil && actorID != t.SubmittedBy
}

func apply(t *entity.Transfer, op Operation, now time.Time) error {
	next, err := Next(t.Status, op)
	if err != nil {
		return err
	}
	t.Status = next
	t.UpdatedAt = now
	return nil
}

// ReplaceDraft corrige notas, fecha y líneas de un borrador. newID genera los IDs de las nuevas líneas.
func ReplaceDraft(t *entity.Transfer, notes string, date time.Time, items []ItemInput, newID func() string, now time.Time) error {
	if _, err := Next(t.Status, OpUpdateDraft); err != nil {
		return err
	}
	if err := ValidateDraft(t.FromLocationID, t.ToLocationID, items); err != nil {
		return err
	}
	t.Notes = notes
	if !date.IsZero() {
		t.TransferDate = date
	}
	t.Items = BuildItems(t.ID, items, newID)
	t.UpdatedAt = now
	return nil
}

// BuildItems materializa las líneas de un borrador.
func BuildItems(transferID string, items []ItemInput, newID func() string) []entity.TransferItem {
	out := make([]entity.TransferItem, 0, len(items))
	for _, in := range items {
		out = append(out, entity.TransferItem{
			ID:                newID(),
			TransferID:        transferID,
			ProductID:         in.ProductID,
			VariationID:       in.VariationID,
			QuantityRequested: in.Quantity,
		})
	}
	return out
}

// Submit draft → pending_check.
func Submit(t *entity.Transfer, actorID string, now time.Time) error {
	if err := apply(t, OpSubmit, now); err != nil {
		return err
	}
	t.SubmittedBy = actorID
	t.SubmittedAt = &now
	return nil
}

// Approve pending_check → checked. Exige separación de funciones.
func Approve(t *entity.Transfer, actorID string, now time.Time) error {
	if _, err := Next(t.Status, OpApprove); err != nil {
		return err
	}
	if !CanApprove(actorID, t) {
		return fmt.Errorf("%w: quien envió el traslado a revisión no puede aprobarlo", domain.ErrForbidden)
	}
	_ = apply(t, OpApprove, now)
	t.CheckedBy = actorID
	t.CheckedAt = &now
	return nil
}

// Reject pending_check → draft con motivo obligatorio; limpia los datos de envío a revisión.
func Reject(t *entity.Transfer, reason string, now time.Time) error {
	if _, err := Next(t.Status, OpReject); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return fmt.Errorf("%w: el rechazo requiere un motivo", domain.ErrInvalidInput)
	}
	_ = apply(t, OpReject, now)
	t.CheckerNotes = reason
	t.SubmittedBy = ""
	t.SubmittedAt = nil
	return nil
}

// Send checked → in_transit. Devuelve los asientos transfer_out (uno por ítem, negativos, en el origen).
// La disponibilidad la valida el libro al aplicar los asientos.
func Send(t *entity.Transfer, actorID string, now time.Time) ([]inventory.Posting, error) {
	if err := apply(t, OpSend, now); err != nil {
		return nil, err
	}
	postings := make([]inventory.Posting, 0, len(t.Items))
	for _, it := range t.Items {
		postings = append(postings, inventory.Posting{
			LocationID:      t.FromLocationID,
			VariationID:     it.VariationID,
			Type:            entity.LedgerTransferOut,
			Delta:           it.QuantityRequested.Neg(),
			ReferenceLineID: it.ID,
			Note:            "despacho " + t.TransferNumber,
		})
	}
	t.StockDeducted = true
	t.SentBy = actorID
	t.SentAt = &now
	return postings, nil
}

// MarkArrived in_transit → arrived. Sin efecto en el libro.
func MarkArrived(t *entity.Transfer, actorID string, now time.Time) error {
	if err := apply(t, OpMarkArrived, now); err != nil {
		return err
	}
	t.ArrivedBy = actorID
	t.ArrivedAt = &now
	return nil
}

// StartVerification arrived → verifying. Abre la ventana de conteo.
func StartVerification(t *entity.Transfer, now time.Time) error {
	return apply(t, OpStartVerification, now)
}

// VerifyItem registra el conteo físico de una línea, una sola vez.
func VerifyItem(t *entity.Transfer, itemID string, received decimal.Decimal, actorID string, now time.Time) (*entity.TransferItem, error) {
	if _, err := Next(t.Status, OpVerifyItem); err != nil {
		return nil, err
	}
	it := t.Item(itemID)
	if it == nil {
		return nil, fmt.Errorf("%w: el ítem %s no pertenece al traslado %s", domain.ErrNotFound, itemID, t.TransferNumber)
	}
	if it.Verified {
		return nil, fmt.Errorf("%w: ítem %s", domain.ErrAlreadyVerified, itemID)
	}
	if received.IsNegative() {
		return nil, fmt.Errorf("%w: la cantidad recibida no puede ser negativa", domain.ErrInvalidInput)
	}
	if err := inventory.ValidateScale(received); err != nil {
		return nil, err
	}
	q := received
	it.QuantityReceived = &q
	it.Verified = true
	it.VerifiedBy = actorID
	it.VerifiedAt = &now
	it.HasDiscrepancy = !received.Equal(it.QuantityRequested)
	t.UpdatedAt = now
	return it, nil
}

// Complete verifying → completed. Exige todas las líneas verificadas y devuelve los asientos transfer_in
// por la cantidad recibida (no la solicitada) en el destino.
func Complete(t *entity.Transfer, actorID string, now time.Time) ([]inventory.Posting, error) {
	if _, err := Next(t.Status, OpComplete); err != nil {
		return nil, err
	}
	pending := 0
	for _, it := range t.Items {
		if !it.Verified {
			pending++
		}
	}
	if pending > 0 {
		return nil, fmt.Errorf("%w: %d de %d ítems pendientes", domain.ErrVerificationIncomplete, pending, len(t.Items))
	}
	_ = apply(t, OpComplete, now)
	postings := make([]inventory.Posting, 0, len(t.Items))
	for _, it := range t.Items {
		if it.QuantityReceived.IsZero() {
			continue
		}
		postings = append(postings, inventory.Posting{
			LocationID:      t.ToLocationID,
			VariationID:     it.VariationID,
			Type:            entity.LedgerTransferIn,
			Delta:           *it.QuantityReceived,
			ReferenceLineID: it.ID,
			Note:            "recepción " + t.TransferNumber,
		})
	}
	t.CompletedBy = actorID
	t.CompletedAt = &now
	return postings, nil
}

// Cancel cualquier estado no terminal → cancelled. Si el origen ya fue descontado devuelve los asientos de
// reversa (transfer_out positivo por la cantidad solicitada) y baja la bandera StockDeducted; la bandera
// impide una segunda reversa.
func Cancel(t *entity.Transfer, actorID, reason string, now time.Time) ([]inventory.Posting, error) {
	if err := apply(t, OpCancel, now); err != nil {
		return nil, err
	}
	var postings []inventory.Posting
	if t.StockDeducted {
		postings = make([]inventory.Posting, 0, len(t.Items))
		for _, it := range t.Items {
			postings = append(postings, inventory.Posting{
				LocationID:      t.FromLocationID,
				VariationID:     it.VariationID,
				Type:            entity.LedgerTransferOut,
				Delta:           it.QuantityRequested,
				ReferenceLineID: it.ID,
				Note:            "reversa por anulación " + t.TransferNumber,
			})
		}
		t.StockDeducted = false
	}
	t.CancelledBy = actorID
	t.CancelledAt = &now
	t.CancellationReason = strings.TrimSpace(reason)
	return postings, nil
}
