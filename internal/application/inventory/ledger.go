package inventory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/inventory"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
)

// PostRef documento que origina un grupo de asientos.
type PostRef struct {
	BusinessID    string
	ActorID       string
	ReferenceType string
	ReferenceID   string
}

// Post aplica los asientos dentro de la transacción del llamador (ledgerRepo atado a la tx).
// Bloquea cada saldo en orden (ubicación, variación), valida que el retiro no deje saldo negativo,
// actualiza el saldo materializado y agrega el asiento. Ante el primer error devuelve sin escribir más;
// el llamador debe abortar la transacción para que no quede ningún asiento parcial.
func Post(ctx context.Context, ledgerRepo repository.StockLedgerRepository, ref PostRef, postings []inventory.Posting, now time.Time) ([]*entity.StockLedgerEntry, error) {
	ordered := slices.Clone(postings)
	inventory.SortForLocking(ordered)

	entries := make([]*entity.StockLedgerEntry, 0, len(ordered))
	for _, p := range ordered {
		if !p.Type.IsValid() {
			return nil, fmt.Errorf("%w: tipo de asiento %q", domain.ErrInvalidInput, p.Type)
		}
		if p.Delta.IsZero() {
			return nil, fmt.Errorf("%w: asiento sin cantidad para la variación %s", domain.ErrInvalidInput, p.VariationID)
		}
		balance, err := ledgerRepo.LockBalance(ctx, ref.BusinessID, p.LocationID, p.VariationID)
		if err != nil {
			return nil, err
		}
		next, err := inventory.ApplyDelta(balance.Quantity, p)
		if err != nil {
			return nil, err
		}
		balance.Quantity = next
		balance.UpdatedAt = now
		if err := ledgerRepo.SaveBalance(ctx, balance); err != nil {
			return nil, err
		}
		entry := &entity.StockLedgerEntry{
			ID:              uuid.New().String(),
			BusinessID:      ref.BusinessID,
			LocationID:      p.LocationID,
			VariationID:     p.VariationID,
			TransactionType: p.Type,
			QuantityDelta:   p.Delta,
			BalanceAfter:    next,
			ReferenceType:   ref.ReferenceType,
			ReferenceID:     ref.ReferenceID,
			ReferenceLineID: p.ReferenceLineID,
			Note:            p.Note,
			CreatedAt:       now,
			CreatedBy:       ref.ActorID,
		}
		if err := ledgerRepo.Append(ctx, entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// PairsOf devuelve los saldos tocados por un grupo de asientos (para invalidar la caché tras el commit).
func PairsOf(entries []*entity.StockLedgerEntry) []Pair {
	pairs := make([]Pair, 0, len(entries))
	for _, e := range entries {
		p := Pair{LocationID: e.LocationID, VariationID: e.VariationID}
		if !slices.Contains(pairs, p) {
			pairs = append(pairs, p)
		}
	}
	return pairs
}

// LedgerQueries consultas del libro de stock fuera de transacción.
type LedgerQueries struct {
	ledgerRepo repository.StockLedgerRepository
	cache      BalanceCache
}

// NewLedgerQueries construye el servicio de consulta. cache nil = sin caché.
func NewLedgerQueries(ledgerRepo repository.StockLedgerRepository, cache BalanceCache) *LedgerQueries {
	return &LedgerQueries{ledgerRepo: ledgerRepo, cache: orNoCache(cache)}
}

// CurrentBalance saldo disponible del par; se sirve desde la caché cuando existe.
func (q *LedgerQueries) CurrentBalance(ctx context.Context, businessID, locationID, variationID string) (decimal.Decimal, error) {
	if qty, ok := q.cache.Get(ctx, businessID, locationID, variationID); ok {
		return qty, nil
	}
	b, err := q.ledgerRepo.GetBalance(ctx, businessID, locationID, variationID)
	if err != nil {
		return decimal.Zero, err
	}
	qty := decimal.Zero
	if b != nil {
		qty = b.Quantity
	}
	q.cache.Set(ctx, businessID, locationID, variationID, qty)
	return qty, nil
}

// ListBalances saldos materializados del negocio (opcionalmente de una ubicación).
func (q *LedgerQueries) ListBalances(ctx context.Context, businessID, locationID string) ([]*entity.StockBalance, error) {
	return q.ledgerRepo.ListBalances(ctx, businessID, locationID)
}

// ListEntries asientos del libro con filtros y paginación.
func (q *LedgerQueries) ListEntries(ctx context.Context, filter repository.LedgerFilter) ([]*entity.StockLedgerEntry, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return q.ledgerRepo.ListEntries(ctx, filter)
}

// EntriesByReference asientos generados por un documento (p. ej. un traslado).
func (q *LedgerQueries) EntriesByReference(ctx context.Context, businessID, referenceType, referenceID string) ([]*entity.StockLedgerEntry, error) {
	return q.ledgerRepo.ListByReference(ctx, businessID, referenceType, referenceID)
}

// Reconciliation compara el saldo materializado contra la suma de asientos.
type Reconciliation struct {
	LocationID   string
	VariationID  string
	Materialized decimal.Decimal
	LedgerSum    decimal.Decimal
	Consistent   bool
}

// Reconcile verifica el invariante saldo = Σ deltas para un par.
func (q *LedgerQueries) Reconcile(ctx context.Context, businessID, locationID, variationID string) (*Reconciliation, error) {
	b, err := q.ledgerRepo.GetBalance(ctx, businessID, locationID, variationID)
	if err != nil {
		return nil, err
	}
	sum, err := q.ledgerRepo.SumDeltas(ctx, businessID, locationID, variationID)
	if err != nil {
		return nil, err
	}
	materialized := decimal.Zero
	if b != nil {
		materialized = b.Quantity
	}
	return &Reconciliation{
		LocationID:   locationID,
		VariationID:  variationID,
		Materialized: materialized,
		LedgerSum:    sum,
		Consistent:   materialized.Equal(sum),
	}, nil
}
