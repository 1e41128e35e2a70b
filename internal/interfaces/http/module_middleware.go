package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/traslados-api/internal/application/dto"
)

// moduleChecker es el contrato mínimo que necesita el middleware para verificar módulos.
// Lo implementa *usecase.ModuleService.
type moduleChecker interface {
	HasActiveModule(ctx context.Context, businessID, moduleName string) (bool, error)
}

// RequireModule verifica que el negocio del token tenga el módulo activo. Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 403 Forbidden → módulo no contratado o vencido.
//   - 503 Service Unavailable → fallo de infraestructura al consultar la DB.
//   - 401 si no hay business_id en el contexto.
func RequireModule(moduleName string, checker moduleChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		businessID := GetBusinessID(c)
		if businessID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "business_id no encontrado en el token",
			})
		}

		active, err := checker.HasActiveModule(c.UserContext(), businessID, moduleName)
		if err != nil {
			log.Error().Err(err).Str("business_id", businessID).Str("module", moduleName).Msg("verificación de módulo")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "MODULE_CHECK_FAILED",
				Message: "no se pudo verificar el módulo, intente más tarde",
			})
		}
		if !active {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "MODULE_DISABLED",
				Message: "el módulo '" + moduleName + "' no está activo para este negocio",
			})
		}
		return c.Next()
	}
}
