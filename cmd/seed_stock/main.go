// seed_stock carga saldos iniciales (opening_stock) desde un CSV exportado por el sistema anterior.
// El archivo viene en ISO-8859-1 con columnas sku;cantidad y una fila de encabezado opcional.
//
// Uso: go run ./cmd/seed_stock -business <id> -location <id> -user <id> [-sep ';'] saldos.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/traslados-api/internal/application/inventory"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/infrastructure/cache"
	"github.com/jhoicas/traslados-api/internal/infrastructure/postgres"
	"github.com/jhoicas/traslados-api/pkg/config"
	"github.com/jhoicas/traslados-api/pkg/logger"
)

func main() {
	businessID := flag.String("business", "", "ID del negocio")
	locationID := flag.String("location", "", "ID de la ubicación que recibe el saldo")
	userID := flag.String("user", "", "ID del usuario que registra la carga")
	sep := flag.String("sep", ";", "separador de columnas")
	flag.Parse()

	if flag.NArg() != 1 || *businessID == "" || *locationID == "" || *userID == "" || len(*sep) != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed_stock -business <id> -location <id> -user <id> [-sep ';'] archivo.csv")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	defer f.Close()

	rows, err := parseRows(f, rune((*sep)[0]))
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a base de datos")
	}
	defer pool.Close()

	variations := postgres.NewVariationRepository(pool)
	uc := inventory.NewRegisterMovementUseCase(
		postgres.NewTxRunner(pool),
		postgres.NewLocationRepository(pool),
		variations,
		cache.NoopBalanceCache{},
	)

	loaded, skipped := 0, 0
	for _, row := range rows {
		v, err := variations.GetBySKU(ctx, *businessID, row.SKU)
		if err != nil {
			log.Fatal().Err(err).Int("line", row.Line).Msg("buscar variación")
		}
		if v == nil {
			log.Warn().Int("line", row.Line).Str("sku", row.SKU).Msg("SKU inexistente, se omite")
			skipped++
			continue
		}
		_, err = uc.RegisterMovement(ctx, inventory.MovementInput{
			BusinessID:  *businessID,
			UserID:      *userID,
			LocationID:  *locationID,
			VariationID: v.ID,
			Type:        entity.LedgerOpeningStock,
			Quantity:    row.Quantity,
			Note:        "carga inicial " + row.SKU,
		})
		if err != nil {
			log.Fatal().Err(err).Int("line", row.Line).Str("sku", row.SKU).Msg("registrar saldo inicial")
		}
		loaded++
	}
	log.Info().Int("loaded", loaded).Int("skipped", skipped).Msg("carga de saldos iniciales terminada")
}
