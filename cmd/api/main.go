package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/traslados-api/docs"
	"github.com/jhoicas/traslados-api/internal/application/auth"
	"github.com/jhoicas/traslados-api/internal/application/inventory"
	"github.com/jhoicas/traslados-api/internal/application/transfer"
	"github.com/jhoicas/traslados-api/internal/application/usecase"
	"github.com/jhoicas/traslados-api/internal/infrastructure/cache"
	"github.com/jhoicas/traslados-api/internal/infrastructure/migrations"
	infrapdf "github.com/jhoicas/traslados-api/internal/infrastructure/pdf"
	httpRouter "github.com/jhoicas/traslados-api/internal/interfaces/http"
	"github.com/jhoicas/traslados-api/pkg/config"
	"github.com/jhoicas/traslados-api/pkg/logger"
)

// @title        Traslados API
// @version      1.0
// @description  Flujo de traslados de mercancía entre ubicaciones con libro de stock.
// @BasePath     /
// @securityDefinitions.apikey Bearer
// @in           header
// @name         Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Transfers.StoreDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	if cfg.Migrations.RunOnStart && cfg.Transfers.StoreDriver == config.StoreDriverPostgres {
		migrator, err := migrations.New(cfg.DB.ConnectionString(), log)
		if err != nil {
			log.Fatal().Err(err).Msg("inicializar migraciones")
		}
		if err := migrator.Up(); err != nil {
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
		_ = migrator.Close()
	}

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer st.close()

	var (
		balanceCache inventory.BalanceCache = cache.NoopBalanceCache{}
		notifier     transfer.Notifier      = cache.NoopNotifier{}
	)
	if cfg.Redis.Enabled {
		client, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer client.Close()
		balanceCache = cache.NewRedisBalanceCache(client, cfg.Redis.BalanceTTL, log)
		notifier = cache.NewRedisNotifier(client, cfg.Redis.NotifyChannel)
		log.Info().Str("addr", cfg.Redis.Addr).Str("channel", cfg.Redis.NotifyChannel).Msg("caché y eventos en Redis")
	}

	authz := auth.NewRolePermissionAuthorizer(st.users)
	registerMovementUC := inventory.NewRegisterMovementUseCase(st.txRunner, st.locations, st.variations, balanceCache)
	ledgerQueries := inventory.NewLedgerQueries(st.ledger, balanceCache)
	transferSvc := transfer.NewService(transfer.Deps{
		TxRunner:      st.txRunner,
		Transfers:     st.transfers,
		Locations:     st.locations,
		Variations:    st.variations,
		Audit:         st.audit,
		Authorizer:    authz,
		Notifier:      notifier,
		Cache:         balanceCache,
		Renderer:      infrapdf.NewDispatchNoteRenderer(cfg.App.Name),
		Logger:        log,
		NumberPrefix:  cfg.Transfers.NumberPrefix,
		NotifyTimeout: cfg.Transfers.NotifyTimeout,
	})
	authUC := auth.NewAuthUseCase(st.users, st.businesses, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Traslados API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Transfers.StoreDriver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:           authUC,
		LocationUC:       usecase.NewLocationUseCase(st.locations),
		ModuleService:    usecase.NewModuleService(st.businesses),
		Authorizer:       authz,
		RegisterMovement: registerMovementUC,
		LedgerQueries:    ledgerQueries,
		Transfers:        transferSvc,
		JWTSecret:        cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
