package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/traslados-api/internal/application/dto"
	"github.com/jhoicas/traslados-api/internal/domain"
)

// errInvalidBody cuerpo JSON que no se pudo decodificar.
var errInvalidBody = errors.New("cuerpo inválido")

type errorMapping struct {
	target error
	status int
	code   string
}

// errorMappings orden de evaluación: el primer sentinel que coincide define status y código.
var errorMappings = []errorMapping{
	{errInvalidBody, fiber.StatusBadRequest, "INVALID_BODY"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrVerificationIncomplete, fiber.StatusConflict, "VERIFICATION_INCOMPLETE"},
	{domain.ErrAlreadyVerified, fiber.StatusConflict, "ALREADY_VERIFIED"},
	{domain.ErrImmutableState, fiber.StatusConflict, "IMMUTABLE_STATE"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
}

// writeError traduce un error de la aplicación a la respuesta HTTP. Lo no tipado es INTERNAL (reintentable).
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno en la petición")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno, intente de nuevo"})
}

// ErrorHandler manejador de errores de Fiber (rutas inexistentes, panics recuperados, errores sin tipar).
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message})
	}
	return writeError(c, err)
}
