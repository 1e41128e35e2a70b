package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/traslados-api/internal/application/dto"
	"github.com/jhoicas/traslados-api/internal/application/transfer"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
)

// TransferHandler expone el flujo de traslados entre ubicaciones (protegido).
// Cada transición es un POST sobre el recurso; la autorización fina la resuelve el servicio.
type TransferHandler struct {
	svc *transfer.Service
}

// NewTransferHandler construye el handler.
func NewTransferHandler(svc *transfer.Service) *TransferHandler {
	return &TransferHandler{svc: svc}
}

// Create godoc
// @Summary      Crear traslado (borrador)
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "Origen, destino e ítems"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	t, err := h.svc.Create(c.UserContext(), actorFrom(c), transfer.CreateInput{
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		TransferDate:   dateOrZero(in.TransferDate),
		Notes:          in.Notes,
		Items:          toItemInputs(in.Items),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransferResponse(t))
}

// List godoc
// @Summary      Listar traslados
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        status            query  string  false  "Estado (draft, pending_check, ...)"
// @Param        from_location_id  query  string  false  "Origen"
// @Param        to_location_id    query  string  false  "Destino"
// @Param        limit             query  int     false  "Límite"  default(20)
// @Param        offset            query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.TransferListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	list, err := h.svc.List(c.UserContext(), actorFrom(c), repository.TransferFilter{
		Status:         entity.TransferStatus(c.Query("status")),
		FromLocationID: c.Query("from_location_id"),
		ToLocationID:   c.Query("to_location_id"),
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := dto.TransferListResponse{
		Items: make([]dto.TransferResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
	for _, t := range list {
		out.Items = append(out.Items, toTransferResponse(t))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalle de un traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	t, err := h.svc.Get(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTransferResponse(t))
}

// UpdateDraft godoc
// @Summary      Corregir un borrador
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del traslado"
// @Param        body  body  dto.UpdateTransferRequest  true  "Notas, fecha e ítems"
// @Success      200   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [put]
func (h *TransferHandler) UpdateDraft(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateTransferRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	t, err := h.svc.UpdateDraft(c.UserContext(), actorFrom(c), id, transfer.UpdateDraftInput{
		TransferDate: dateOrZero(in.TransferDate),
		Notes:        in.Notes,
		Items:        toItemInputs(in.Items),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTransferResponse(t))
}

type simpleTransition func(ctx context.Context, actor transfer.Actor, transferID string) (*entity.Transfer, error)

func (h *TransferHandler) run(op simpleTransition) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuidParam(c, "id")
		if err != nil {
			return writeError(c, err)
		}
		t, err := op(c.UserContext(), actorFrom(c), id)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(toTransferResponse(t))
	}
}

// Submit godoc
// @Summary      Enviar a revisión (draft → pending_check)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/submit [post]
func (h *TransferHandler) Submit(c *fiber.Ctx) error { return h.run(h.svc.Submit)(c) }

// Approve godoc
// @Summary      Aprobar revisión (pending_check → checked)
// @Description  Quien envió el traslado a revisión no puede aprobarlo.
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/approve [post]
func (h *TransferHandler) Approve(c *fiber.Ctx) error { return h.run(h.svc.Approve)(c) }

// Reject godoc
// @Summary      Rechazar revisión (pending_check → draft)
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID del traslado"
// @Param        body  body  dto.ReasonRequest  true  "Motivo (obligatorio)"
// @Success      200   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/reject [post]
func (h *TransferHandler) Reject(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.ReasonRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	t, err := h.svc.Reject(c.UserContext(), actorFrom(c), id, in.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTransferResponse(t))
}

// Send godoc
// @Summary      Despachar (checked → in_transit)
// @Description  Descuenta el stock del origen; falla con INSUFFICIENT_STOCK si algún ítem no alcanza.
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/send [post]
func (h *TransferHandler) Send(c *fiber.Ctx) error { return h.run(h.svc.Send)(c) }

// MarkArrived godoc
// @Summary      Registrar llegada (in_transit → arrived)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/arrive [post]
func (h *TransferHandler) MarkArrived(c *fiber.Ctx) error { return h.run(h.svc.MarkArrived)(c) }

// StartVerification godoc
// @Summary      Iniciar verificación (arrived → verifying)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/start-verification [post]
func (h *TransferHandler) StartVerification(c *fiber.Ctx) error {
	return h.run(h.svc.StartVerification)(c)
}

// VerifyItem godoc
// @Summary      Verificar un ítem (conteo físico)
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id       path  string                 true  "ID del traslado"
// @Param        item_id  path  string                 true  "ID del ítem"
// @Param        body     body  dto.VerifyItemRequest  true  "Cantidad recibida"
// @Success      200      {object}  dto.TransferResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Failure      409      {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/items/{item_id}/verify [post]
func (h *TransferHandler) VerifyItem(c *fiber.Ctx) error {
	var in dto.VerifyItemRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	itemID, err := uuidParam(c, "item_id")
	if err != nil {
		return writeError(c, err)
	}
	t, err := h.svc.VerifyItem(c.UserContext(), actorFrom(c), id, itemID, in.QuantityReceived)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTransferResponse(t))
}

// Complete godoc
// @Summary      Completar (verifying → completed)
// @Description  Exige todos los ítems verificados; ingresa al destino la cantidad recibida.
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/complete [post]
func (h *TransferHandler) Complete(c *fiber.Ctx) error { return h.run(h.svc.Complete)(c) }

// Cancel godoc
// @Summary      Anular traslado
// @Description  Si el origen ya fue descontado, se registra la reversa en el libro.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true   "ID del traslado"
// @Param        body  body  dto.ReasonRequest  false  "Motivo"
// @Success      200   {object}  dto.TransferResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.ReasonRequest
	if len(c.Body()) > 0 {
		if err := bindJSON(c, &in); err != nil {
			return writeError(c, err)
		}
	}
	t, err := h.svc.Cancel(c.UserContext(), actorFrom(c), id, in.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTransferResponse(t))
}

// History godoc
// @Summary      Historial de auditoría del traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {array}   dto.AuditEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/history [get]
func (h *TransferHandler) History(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	entries, err := h.svc.History(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toAuditEntryResponses(entries))
}

// DispatchNote godoc
// @Summary      Guía de traslado en PDF
// @Tags         transfers
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/dispatch-note [get]
func (h *TransferHandler) DispatchNote(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	pdf, filename, err := h.svc.DispatchNote(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdf)
}

func dateOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
