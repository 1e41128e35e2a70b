package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/traslados-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando el libro de stock atado a esa tx.
// Garantiza atomicidad entre asientos y saldo materializado.
type TxRunner interface {
	Run(ctx context.Context, fn func(ledgerRepo repository.StockLedgerRepository) error) error
}

// BalanceCache caché de lectura de saldos (cache-aside). Nunca se consulta desde una guarda de transición.
type BalanceCache interface {
	Get(ctx context.Context, businessID, locationID, variationID string) (decimal.Decimal, bool)
	Set(ctx context.Context, businessID, locationID, variationID string, qty decimal.Decimal)
	Invalidate(ctx context.Context, businessID string, pairs ...Pair)
}

// Pair identifica un saldo (ubicación, variación).
type Pair struct {
	LocationID  string
	VariationID string
}

type noCache struct{}

func (noCache) Get(context.Context, string, string, string) (decimal.Decimal, bool) {
	return decimal.Zero, false
}
func (noCache) Set(context.Context, string, string, string, decimal.Decimal) {}
func (noCache) Invalidate(context.Context, string, ...Pair)                  {}

func orNoCache(c BalanceCache) BalanceCache {
	if c == nil {
		return noCache{}
	}
	return c
}
