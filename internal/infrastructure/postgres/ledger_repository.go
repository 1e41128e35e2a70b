package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
)

var _ repository.StockLedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo libro de stock sobre PostgreSQL (usable con pool o tx). Los asientos solo se insertan;
// un trigger rechaza UPDATE/DELETE sobre stock_ledger_entries.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador del libro. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// LockBalance asegura que la fila de saldo exista y la bloquea (SELECT FOR UPDATE) hasta el fin de la tx.
func (r *LedgerRepo) LockBalance(ctx context.Context, businessID, locationID, variationID string) (*entity.StockBalance, error) {
	const ensure = `
		INSERT INTO stock_balances (business_id, location_id, variation_id, quantity, updated_at)
		VALUES ($1, $2, $3, 0, now())
		ON CONFLICT (business_id, location_id, variation_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, ensure, businessID, locationID, variationID); err != nil {
		return nil, fmt.Errorf("ensure stock balance: %w", err)
	}
	const lock = `
		SELECT business_id, location_id, variation_id, quantity, updated_at
		FROM stock_balances
		WHERE business_id = $1 AND location_id = $2 AND variation_id = $3
		FOR UPDATE`
	var b entity.StockBalance
	err := r.q.QueryRow(ctx, lock, businessID, locationID, variationID).Scan(
		&b.BusinessID, &b.LocationID, &b.VariationID, &b.Quantity, &b.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("lock stock balance: %w", err)
	}
	return &b, nil
}

// GetBalance obtiene el saldo materializado sin bloquear; (nil, nil) si no hay registro.
func (r *LedgerRepo) GetBalance(ctx context.Context, businessID, locationID, variationID string) (*entity.StockBalance, error) {
	query := `
		SELECT business_id, location_id, variation_id, quantity, updated_at
		FROM stock_balances
		WHERE business_id = $1 AND location_id = $2 AND variation_id = $3`
	var b entity.StockBalance
	err := r.q.QueryRow(ctx, query, businessID, locationID, variationID).Scan(
		&b.BusinessID, &b.LocationID, &b.VariationID, &b.Quantity, &b.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock balance: %w", err)
	}
	return &b, nil
}

// SaveBalance escribe el nuevo saldo (la fila ya fue bloqueada con LockBalance).
func (r *LedgerRepo) SaveBalance(ctx context.Context, b *entity.StockBalance) error {
	query := `
		UPDATE stock_balances SET quantity = $4, updated_at = $5
		WHERE business_id = $1 AND location_id = $2 AND variation_id = $3`
	if _, err := r.q.Exec(ctx, query, b.BusinessID, b.LocationID, b.VariationID, b.Quantity, b.UpdatedAt); err != nil {
		return fmt.Errorf("save stock balance: %w", err)
	}
	return nil
}

// Append inserta un asiento.
func (r *LedgerRepo) Append(ctx context.Context, e *entity.StockLedgerEntry) error {
	query := `
		INSERT INTO stock_ledger_entries (
			id, business_id, location_id, variation_id, transaction_type, quantity_delta, balance_after,
			reference_type, reference_id, reference_line_id, note, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.BusinessID, e.LocationID, e.VariationID, string(e.TransactionType), e.QuantityDelta, e.BalanceAfter,
		e.ReferenceType, e.ReferenceID, nullIfEmpty(e.ReferenceLineID), e.Note, e.CreatedAt, e.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// SumDeltas suma los asientos del par (saldo derivado del libro).
func (r *LedgerRepo) SumDeltas(ctx context.Context, businessID, locationID, variationID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(quantity_delta), 0)
		FROM stock_ledger_entries
		WHERE business_id = $1 AND location_id = $2 AND variation_id = $3`
	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, businessID, locationID, variationID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum ledger deltas: %w", err)
	}
	return sum, nil
}

// ListBalances saldos del negocio, opcionalmente de una ubicación.
func (r *LedgerRepo) ListBalances(ctx context.Context, businessID, locationID string) ([]*entity.StockBalance, error) {
	query := `
		SELECT business_id, location_id, variation_id, quantity, updated_at
		FROM stock_balances
		WHERE business_id = $1 AND ($2 = '' OR location_id::text = $2)
		ORDER BY location_id, variation_id`
	rows, err := r.q.Query(ctx, query, businessID, locationID)
	if err != nil {
		return nil, fmt.Errorf("list stock balances: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockBalance
	for rows.Next() {
		var b entity.StockBalance
		if err := rows.Scan(&b.BusinessID, &b.LocationID, &b.VariationID, &b.Quantity, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock balance: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}

const ledgerColumns = `id, business_id, location_id, variation_id, transaction_type, quantity_delta, balance_after,
	reference_type, reference_id, reference_line_id, note, created_at, created_by`

// ListEntries asientos filtrados en orden cronológico.
func (r *LedgerRepo) ListEntries(ctx context.Context, f repository.LedgerFilter) ([]*entity.StockLedgerEntry, error) {
	where := []string{"business_id = $1"}
	args := []any{f.BusinessID}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.LocationID != "" {
		add("location_id = $%d", f.LocationID)
	}
	if f.VariationID != "" {
		add("variation_id = $%d", f.VariationID)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}
	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM stock_ledger_entries WHERE %s ORDER BY created_at, id LIMIT $%d OFFSET $%d`,
		ledgerColumns, strings.Join(where, " AND "), len(args)-1, len(args))
	return r.queryEntries(ctx, query, args...)
}

// ListByReference asientos generados por un documento.
func (r *LedgerRepo) ListByReference(ctx context.Context, businessID, referenceType, referenceID string) ([]*entity.StockLedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM stock_ledger_entries
		WHERE business_id = $1 AND reference_type = $2 AND reference_id = $3
		ORDER BY created_at, id`
	return r.queryEntries(ctx, query, businessID, referenceType, referenceID)
}

func (r *LedgerRepo) queryEntries(ctx context.Context, query string, args ...any) ([]*entity.StockLedgerEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockLedgerEntry
	for rows.Next() {
		var (
			e       entity.StockLedgerEntry
			txType  string
			lineRef *string
		)
		if err := rows.Scan(&e.ID, &e.BusinessID, &e.LocationID, &e.VariationID, &txType, &e.QuantityDelta, &e.BalanceAfter,
			&e.ReferenceType, &e.ReferenceID, &lineRef, &e.Note, &e.CreatedAt, &e.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.TransactionType = entity.LedgerTransactionType(txType)
		e.ReferenceLineID = emptyIfNull(lineRef)
		list = append(list, &e)
	}
	return list, rows.Err()
}
