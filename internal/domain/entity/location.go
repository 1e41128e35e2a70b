package entity

import "time"

// Location representa una bodega o sucursal del negocio donde se almacena inventario.
type Location struct {
	ID         string
	BusinessID string
	Name       string
	Address    string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
