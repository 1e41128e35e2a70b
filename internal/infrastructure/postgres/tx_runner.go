package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/traslados-api/internal/application/inventory"
	"github.com/jhoicas/traslados-api/internal/application/transfer"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
)

// Ensure TxRunner implements inventory.TxRunner and transfer.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ transfer.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con el libro de stock atado a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(ledgerRepo repository.StockLedgerRepository) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewLedgerRepository(tx))
	})
}

// RunTransfer inicia una transacción con traslados y libro de stock (una transición completa).
func (r *TxRunner) RunTransfer(ctx context.Context, fn func(
	transferRepo repository.TransferRepository,
	ledgerRepo repository.StockLedgerRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewTransferRepository(tx), NewLedgerRepository(tx))
	})
}

func (r *TxRunner) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
