package main

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
	"github.com/jhoicas/traslados-api/internal/infrastructure/memory"
	"github.com/jhoicas/traslados-api/internal/infrastructure/postgres"
	"github.com/jhoicas/traslados-api/pkg/config"
	"github.com/jhoicas/traslados-api/pkg/logger"
)

// txRunner transacciones del libro de stock y de los traslados.
type txRunner interface {
	Run(ctx context.Context, fn func(ledgerRepo repository.StockLedgerRepository) error) error
	RunTransfer(ctx context.Context, fn func(
		transferRepo repository.TransferRepository,
		ledgerRepo repository.StockLedgerRepository,
	) error) error
}

// store repositorios del driver elegido.
type store struct {
	txRunner   txRunner
	users      repository.UserRepository
	businesses repository.BusinessRepository
	locations  repository.LocationRepository
	variations repository.VariationRepository
	transfers  repository.TransferRepository
	ledger     repository.StockLedgerRepository
	audit      repository.AuditRepository
	close      func()
}

func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*store, error) {
	if cfg.Transfers.StoreDriver == config.StoreDriverMemory {
		mem := memory.New()
		seedDemo(mem, log)
		return &store{
			txRunner:   mem,
			users:      mem.Users(),
			businesses: mem.Businesses(),
			locations:  mem.Locations(),
			variations: mem.Variations(),
			transfers:  mem.Transfers(),
			ledger:     mem.Ledger(),
			audit:      mem.Audit(),
			close:      func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &store{
		txRunner:   postgres.NewTxRunner(pool),
		users:      postgres.NewUserRepository(pool),
		businesses: postgres.NewBusinessRepository(pool),
		locations:  postgres.NewLocationRepository(pool),
		variations: postgres.NewVariationRepository(pool),
		transfers:  postgres.NewTransferRepository(pool),
		ledger:     postgres.NewLedgerRepository(pool),
		audit:      postgres.NewAuditRepository(pool),
		close:      pool.Close,
	}, nil
}

// seedDemo negocio de demostración para el driver en memoria: módulo de inventario activo, dos ubicaciones
// y dos variaciones. Los usuarios se registran por /api/auth/register con el business_id registrado en el log.
func seedDemo(mem *memory.Store, log *logger.Logger) {
	businessID := uuid.NewString()
	productID := uuid.NewString()
	now := time.Now()
	mem.AddBusiness(entity.Business{ID: businessID, Name: "Negocio demo", Status: "active", CreatedAt: now, UpdatedAt: now},
		entity.BusinessModule{ID: uuid.NewString(), BusinessID: businessID, ModuleName: entity.ModuleInventory, IsActive: true, ActivatedAt: now})
	for _, name := range []string{"Bodega principal", "Sucursal centro"} {
		mem.AddLocation(entity.Location{ID: uuid.NewString(), BusinessID: businessID, Name: name, IsActive: true, CreatedAt: now, UpdatedAt: now})
	}
	for _, v := range []struct{ sku, name string }{{"DEMO-S", "Camiseta demo S"}, {"DEMO-M", "Camiseta demo M"}} {
		mem.AddVariation(entity.ProductVariation{ID: uuid.NewString(), BusinessID: businessID, ProductID: productID, SKU: v.sku, Name: v.name, Unit: "UND"})
	}
	log.Warn().Str("business_id", businessID).Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
}
