package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/traslados-api/internal/domain/entity"
)

// LedgerFilter filtros de consulta del libro de stock. Campos vacíos no filtran.
type LedgerFilter struct {
	BusinessID  string
	LocationID  string
	VariationID string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// StockLedgerRepository puerto del libro de stock (asientos append-only + saldo materializado).
// Usado dentro de transacciones: LockBalance debe tomarse antes de Append/SaveBalance sobre el mismo par.
type StockLedgerRepository interface {
	// LockBalance bloquea (SELECT FOR UPDATE) el saldo del par, creándolo en cero si no existe.
	LockBalance(ctx context.Context, businessID, locationID, variationID string) (*entity.StockBalance, error)
	// GetBalance devuelve (nil, nil) si el par no tiene registro de stock.
	GetBalance(ctx context.Context, businessID, locationID, variationID string) (*entity.StockBalance, error)
	SaveBalance(ctx context.Context, balance *entity.StockBalance) error
	Append(ctx context.Context, entry *entity.StockLedgerEntry) error
	SumDeltas(ctx context.Context, businessID, locationID, variationID string) (decimal.Decimal, error)
	ListBalances(ctx context.Context, businessID, locationID string) ([]*entity.StockBalance, error)
	ListEntries(ctx context.Context, filter LedgerFilter) ([]*entity.StockLedgerEntry, error)
	ListByReference(ctx context.Context, businessID, referenceType, referenceID string) ([]*entity.StockLedgerEntry, error)
}
