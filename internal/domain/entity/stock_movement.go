package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockMovement registro inmutable del libro de movimientos.
// EffectiveQuantity = Quantity × multiplicador × factor, congelado al crear para que la
// reconstrucción del saldo no dependa de cambios posteriores en el tipo.
type StockMovement struct {
	ID                string
	ItemID            string
	LocationID        string
	MovementTypeID    string
	MovementTypeCode  string
	Quantity          int64 // siempre positiva, tal como la ingresó el usuario
	EffectiveQuantity int64
	UnitPrice         decimal.Decimal
	UserID            string
	TransferID        *string
	Notes             string
	CreatedAt         time.Time
}
