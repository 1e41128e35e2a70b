package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/traslados-api/internal/application/auth"
	"github.com/jhoicas/traslados-api/internal/application/inventory"
	"github.com/jhoicas/traslados-api/internal/application/transfer"
	"github.com/jhoicas/traslados-api/internal/application/usecase"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC           *auth.AuthUseCase
	LocationUC       *usecase.LocationUseCase
	ModuleService    moduleChecker
	Authorizer       permissionChecker
	RegisterMovement *inventory.RegisterMovementUseCase
	LedgerQueries    *inventory.LedgerQueries
	Transfers        *transfer.Service
	JWTSecret        string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas: Bearer Token + módulo de inventario activo
	protected := []fiber.Handler{
		AuthMiddleware(deps.JWTSecret),
		RequireModule(entity.ModuleInventory, deps.ModuleService),
	}

	// Locations
	locations := api.Group("/locations", protected...)
	locationHandler := NewLocationHandler(deps.LocationUC)
	locations.Get("/", locationHandler.List)
	locations.Get("/:id", locationHandler.GetByID)
	locations.Post("/", RequireRole(entity.RoleAdmin), locationHandler.Create)
	locations.Put("/:id", RequireRole(entity.RoleAdmin), locationHandler.Update)

	// Inventory: libro de stock
	inv := api.Group("/inventory", protected...)
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.LedgerQueries, deps.Authorizer)
	inv.Post("/movements", inventoryHandler.RegisterMovement)
	inv.Get("/balances", inventoryHandler.ListBalances)
	inv.Get("/balances/:location_id/:variation_id", inventoryHandler.GetBalance)
	inv.Get("/ledger", inventoryHandler.ListLedger)
	inv.Get("/ledger/by-reference/:reference_type/:reference_id", inventoryHandler.EntriesByReference)
	inv.Get("/reconcile", inventoryHandler.Reconcile)

	// Transfers: flujo completo
	transfers := api.Group("/transfers", protected...)
	transferHandler := NewTransferHandler(deps.Transfers)
	transfers.Post("/", transferHandler.Create)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Put("/:id", transferHandler.UpdateDraft)
	transfers.Post("/:id/submit", transferHandler.Submit)
	transfers.Post("/:id/approve", transferHandler.Approve)
	transfers.Post("/:id/reject", transferHandler.Reject)
	transfers.Post("/:id/send", transferHandler.Send)
	transfers.Post("/:id/arrive", transferHandler.MarkArrived)
	transfers.Post("/:id/start-verification", transferHandler.StartVerification)
	transfers.Post("/:id/items/:item_id/verify", transferHandler.VerifyItem)
	transfers.Post("/:id/complete", transferHandler.Complete)
	transfers.Post("/:id/cancel", transferHandler.Cancel)
	transfers.Get("/:id/history", transferHandler.History)
	transfers.Get("/:id/dispatch-note", transferHandler.DispatchNote)
}
