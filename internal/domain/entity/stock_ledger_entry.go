package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerTransactionType clasifica cada asiento del libro de stock.
type LedgerTransactionType string

// Tipos de asiento del libro de stock.
const (
	LedgerPurchase       LedgerTransactionType = "purchase"
	LedgerSale           LedgerTransactionType = "sale"
	LedgerTransferOut    LedgerTransactionType = "transfer_out"
	LedgerTransferIn     LedgerTransactionType = "transfer_in"
	LedgerAdjustment     LedgerTransactionType = "adjustment"
	LedgerSellReturn     LedgerTransactionType = "sell_return"
	LedgerPurchaseReturn LedgerTransactionType = "purchase_return"
	LedgerOpeningStock   LedgerTransactionType = "opening_stock"
)

// IsValid indica si el tipo pertenece al catálogo cerrado.
func (t LedgerTransactionType) IsValid() bool {
	switch t {
	case LedgerPurchase, LedgerSale, LedgerTransferOut, LedgerTransferIn, LedgerAdjustment,
		LedgerSellReturn, LedgerPurchaseReturn, LedgerOpeningStock:
		return true
	}
	return false
}

// Tipos de documento que originan asientos (referenceType).
const (
	ReferenceTransfer     = "transfer"
	ReferenceAdjustment   = "adjustment"
	ReferenceOpeningStock = "opening_stock"
)

// StockLedgerEntry es un asiento inmutable del libro de stock.
// La suma de QuantityDelta por (ubicación, variación) es el saldo disponible; nunca se actualiza ni se borra,
// las correcciones son asientos nuevos.
type StockLedgerEntry struct {
	ID              string
	BusinessID      string
	LocationID      string
	VariationID     string
	TransactionType LedgerTransactionType
	QuantityDelta   decimal.Decimal // con signo
	BalanceAfter    decimal.Decimal // saldo materializado tras aplicar el asiento
	ReferenceType   string
	ReferenceID     string
	ReferenceLineID string // ítem del traslado, si aplica
	Note            string
	CreatedAt       time.Time
	CreatedBy       string
}
