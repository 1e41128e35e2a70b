package inventory

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
)

// QuantityScale decimales que admiten las cantidades (columnas NUMERIC(18,4)).
const QuantityScale = 4

// MinQuantity unidad mínima positiva (0.0001).
var MinQuantity = decimal.New(1, -QuantityScale)

// ValidateScale rechaza cantidades con más decimales de los que se persisten.
func ValidateScale(q decimal.Decimal) error {
	if !q.Equal(q.Truncate(QuantityScale)) {
		return fmt.Errorf("%w: la cantidad %s admite máximo %d decimales (mínimo %s)",
			domain.ErrInvalidInput, q.String(), QuantityScale, MinQuantity.String())
	}
	return nil
}

// Posting es un asiento pendiente de aplicar al libro (servicio de dominio, sin persistencia).
type Posting struct {
	LocationID      string
	VariationID     string
	Type            entity.LedgerTransactionType
	Delta           decimal.Decimal
	ReferenceLineID string
	Note            string
}

// MustNotGoNegative indica los tipos cuyo retiro nunca puede dejar el saldo en negativo.
func MustNotGoNegative(t entity.LedgerTransactionType) bool {
	switch t {
	case entity.LedgerTransferOut, entity.LedgerAdjustment:
		return true
	}
	return false
}

// ApplyDelta calcula el nuevo saldo y rechaza el retiro que lo dejaría negativo.
// NuevoSaldo = SaldoActual + Delta
func ApplyDelta(current decimal.Decimal, p Posting) (decimal.Decimal, error) {
	next := current.Add(p.Delta)
	if p.Delta.IsNegative() && MustNotGoNegative(p.Type) && next.IsNegative() {
		return current, fmt.Errorf("%w: variación %s en ubicación %s (disponible %s, solicitado %s)",
			domain.ErrInsufficientStock, p.VariationID, p.LocationID, current.String(), p.Delta.Neg().String())
	}
	return next, nil
}

// SortForLocking ordena por (ubicación, variación) para que transacciones concurrentes bloqueen las filas
// de saldo siempre en el mismo orden.
func SortForLocking(postings []Posting) {
	sort.SliceStable(postings, func(i, j int) bool {
		if postings[i].LocationID != postings[j].LocationID {
			return postings[i].LocationID < postings[j].LocationID
		}
		return postings[i].VariationID < postings[j].VariationID
	})
}
