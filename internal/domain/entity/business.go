package entity

import "time"

// Business representa una organización/tenant del sistema (multi-tenant).
type Business struct {
	ID        string
	Name      string
	TaxID     string
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Módulos SaaS disponibles (deben coincidir con el CHECK de la tabla business_modules).
const (
	ModuleInventory = "inventory"
	ModuleSales     = "sales"
	ModulePurchases = "purchases"
)

// BusinessModule representa la activación de un módulo en un negocio.
type BusinessModule struct {
	ID          string
	BusinessID  string
	ModuleName  string // ver constantes Module*
	IsActive    bool
	ActivatedAt time.Time
	ExpiresAt   *time.Time // nil = sin vencimiento
}

// IsUsable indica si el módulo está activo y no vencido en el instante dado.
func (m BusinessModule) IsUsable(now time.Time) bool {
	if !m.IsActive {
		return false
	}
	return m.ExpiresAt == nil || now.Before(*m.ExpiresAt)
}
