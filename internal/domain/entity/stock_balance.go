package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalance es el saldo materializado de una variación en una ubicación.
// Se mantiene en la misma transacción que cada asiento del libro; la fila existe desde el primer asiento
// y es el "registro de stock" que exige la creación de un traslado.
type StockBalance struct {
	BusinessID  string
	LocationID  string
	VariationID string
	Quantity    decimal.Decimal
	UpdatedAt   time.Time
}
