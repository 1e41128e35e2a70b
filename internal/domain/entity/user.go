package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleBodeguero  = "bodeguero"
	RoleVendedor   = "vendedor"
)

// User representa un usuario del sistema (pertenece a un Business).
type User struct {
	ID           string
	BusinessID   string
	Email        string
	PasswordHash string // bcrypt hash
	Name         string
	Role         string // admin, supervisor, bodeguero, vendedor
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive indica si el usuario puede operar.
func (u *User) IsActive() bool {
	return u != nil && u.Status == "active"
}
