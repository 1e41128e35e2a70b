package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/traslados-api/internal/application/dto"
	"github.com/jhoicas/traslados-api/internal/application/inventory"
	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
)

// permissionChecker lo implementa el authorizer de roles de la capa de aplicación.
type permissionChecker interface {
	HasPermission(ctx context.Context, actorID string, perm entity.Permission) (bool, error)
}

// InventoryHandler maneja movimientos fuera del flujo de traslados y consultas del libro de stock (protegido).
type InventoryHandler struct {
	movements *inventory.RegisterMovementUseCase
	queries   *inventory.LedgerQueries
	authz     permissionChecker
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(movements *inventory.RegisterMovementUseCase, queries *inventory.LedgerQueries, authz permissionChecker) *InventoryHandler {
	return &InventoryHandler{movements: movements, queries: queries, authz: authz}
}

// RegisterMovement godoc
// @Summary      Registrar saldo inicial o ajuste
// @Description  opening_stock exige cantidad positiva; adjustment admite signo y falla con INSUFFICIENT_STOCK
//
//	si dejaría el saldo en negativo.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "location_id, variation_id, type, quantity"
// @Success      201   {object}  dto.LedgerEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	ok, err := h.authz.HasPermission(c.UserContext(), userID, entity.PermStockAdjust)
	if err != nil {
		return writeError(c, err)
	}
	if !ok {
		return writeError(c, fmt.Errorf("%w: se requiere el permiso %s", domain.ErrForbidden, entity.PermStockAdjust))
	}
	var in dto.RegisterMovementRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	entry, err := h.movements.RegisterMovement(c.UserContext(), inventory.MovementInput{
		BusinessID:  GetBusinessID(c),
		UserID:      userID,
		LocationID:  in.LocationID,
		VariationID: in.VariationID,
		Type:        entity.LedgerTransactionType(in.Type),
		Quantity:    in.Quantity,
		Note:        in.Note,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toLedgerEntryResponse(entry))
}

// ListBalances godoc
// @Summary      Saldos materializados
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  false  "Filtrar por ubicación"
// @Success      200  {array}   dto.BalanceResponse
// @Router       /api/inventory/balances [get]
func (h *InventoryHandler) ListBalances(c *fiber.Ctx) error {
	list, err := h.queries.ListBalances(c.UserContext(), GetBusinessID(c), c.Query("location_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toBalanceResponses(list))
}

// GetBalance godoc
// @Summary      Saldo disponible de una variación en una ubicación
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_id   path  string  true  "Ubicación"
// @Param        variation_id  path  string  true  "Variación"
// @Success      200  {object}  dto.BalanceResponse
// @Router       /api/inventory/balances/{location_id}/{variation_id} [get]
func (h *InventoryHandler) GetBalance(c *fiber.Ctx) error {
	locationID, err := uuidParam(c, "location_id")
	if err != nil {
		return writeError(c, err)
	}
	variationID, err := uuidParam(c, "variation_id")
	if err != nil {
		return writeError(c, err)
	}
	qty, err := h.queries.CurrentBalance(c.UserContext(), GetBusinessID(c), locationID, variationID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.BalanceResponse{LocationID: locationID, VariationID: variationID, Quantity: qty})
}

// ListLedger godoc
// @Summary      Asientos del libro de stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_id   query  string  false  "Ubicación"
// @Param        variation_id  query  string  false  "Variación"
// @Param        from          query  string  false  "Desde (RFC3339)"
// @Param        to            query  string  false  "Hasta (RFC3339)"
// @Param        limit         query  int     false  "Límite"  default(100)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {array}   dto.LedgerEntryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/ledger [get]
func (h *InventoryHandler) ListLedger(c *fiber.Ctx) error {
	from, err := queryTime(c, "from")
	if err != nil {
		return writeError(c, err)
	}
	to, err := queryTime(c, "to")
	if err != nil {
		return writeError(c, err)
	}
	entries, err := h.queries.ListEntries(c.UserContext(), repository.LedgerFilter{
		BusinessID:  GetBusinessID(c),
		LocationID:  c.Query("location_id"),
		VariationID: c.Query("variation_id"),
		From:        from,
		To:          to,
		Limit:       c.QueryInt("limit", 100),
		Offset:      c.QueryInt("offset", 0),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toLedgerEntryResponses(entries))
}

// EntriesByReference godoc
// @Summary      Asientos generados por un documento
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        reference_type  path  string  true  "transfer | adjustment | opening_stock"
// @Param        reference_id    path  string  true  "ID del documento"
// @Success      200  {array}   dto.LedgerEntryResponse
// @Router       /api/inventory/ledger/by-reference/{reference_type}/{reference_id} [get]
func (h *InventoryHandler) EntriesByReference(c *fiber.Ctx) error {
	referenceID, err := uuidParam(c, "reference_id")
	if err != nil {
		return writeError(c, err)
	}
	entries, err := h.queries.EntriesByReference(c.UserContext(), GetBusinessID(c), c.Params("reference_type"), referenceID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toLedgerEntryResponses(entries))
}

// Reconcile godoc
// @Summary      Conciliar saldo materializado contra el libro
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_id   query  string  true  "Ubicación"
// @Param        variation_id  query  string  true  "Variación"
// @Success      200  {object}  dto.ReconcileResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/reconcile [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	locationID, variationID := c.Query("location_id"), c.Query("variation_id")
	if locationID == "" || variationID == "" {
		return writeError(c, fmt.Errorf("%w: location_id y variation_id son obligatorios", domain.ErrInvalidInput))
	}
	r, err := h.queries.Reconcile(c.UserContext(), GetBusinessID(c), locationID, variationID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toReconcileResponse(r))
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s debe estar en formato RFC3339", domain.ErrInvalidInput, key)
	}
	return &t, nil
}
