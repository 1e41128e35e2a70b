package auth

import (
	"context"

	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
)

// RolePermissionAuthorizer resuelve permisos a partir del rol vigente del usuario en la BD
// (no del JWT, para que un cambio de rol o una suspensión aplique de inmediato).
type RolePermissionAuthorizer struct {
	userRepo repository.UserRepository
}

// NewRolePermissionAuthorizer construye el autorizador.
func NewRolePermissionAuthorizer(userRepo repository.UserRepository) *RolePermissionAuthorizer {
	return &RolePermissionAuthorizer{userRepo: userRepo}
}

// HasPermission informa si el usuario activo tiene el permiso. Usuario inexistente o inactivo: false.
func (a *RolePermissionAuthorizer) HasPermission(ctx context.Context, actorID string, perm entity.Permission) (bool, error) {
	user, err := a.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return false, err
	}
	if !user.IsActive() {
		return false, nil
	}
	return entity.RoleHasPermission(user.Role, perm), nil
}
