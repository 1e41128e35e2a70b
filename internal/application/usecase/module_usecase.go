package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/traslados-api/internal/domain/repository"
)

// ModuleService verifica qué módulos SaaS tiene activos un negocio.
// Es el único punto de la aplicación que conoce la lógica de activación de módulos.
type ModuleService struct {
	businessRepo repository.BusinessRepository
}

// NewModuleService construye el servicio de módulos.
func NewModuleService(businessRepo repository.BusinessRepository) *ModuleService {
	return &ModuleService{businessRepo: businessRepo}
}

// HasActiveModule informa si el negocio tiene el módulo activo y sin vencer.
// Devuelve false (sin error) si el negocio no tiene el módulo contratado.
// Devuelve error solo ante fallos de infraestructura (DB caída, timeout, etc.).
func (s *ModuleService) HasActiveModule(ctx context.Context, businessID, moduleName string) (bool, error) {
	if businessID == "" || moduleName == "" {
		return false, fmt.Errorf("module: businessID y moduleName son obligatorios")
	}
	return s.businessRepo.HasActiveModule(ctx, businessID, moduleName)
}
