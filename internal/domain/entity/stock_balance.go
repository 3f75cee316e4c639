package entity

import "time"

// StockBalance saldo materializado por (ítem, locación). Solo el libro lo modifica.
type StockBalance struct {
	ItemID     string
	LocationID string
	Quantity   int64
	UpdatedAt  time.Time
}

// LocationBalance saldo de un ítem en una locación con datos de la locación para mostrar.
type LocationBalance struct {
	LocationID   string
	LocationCode string
	LocationName string
	Quantity     int64
	UpdatedAt    time.Time
}
