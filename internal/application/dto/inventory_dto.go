package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CreateMovementRequest body para POST /api/movements.
type CreateMovementRequest struct {
	ItemID           string `json:"item_id" validate:"required,uuid"`
	LocationID       string `json:"location_id" validate:"required,uuid"`
	MovementTypeCode string `json:"movement_type" validate:"required,max=30"`
	Quantity         int64  `json:"quantity" validate:"required,max=1000000000"`
	Notes            string `json:"notes,omitempty" validate:"max=500"`
}

// TransferRequest body para POST /api/movements/transfer.
type TransferRequest struct {
	ItemID         string `json:"item_id" validate:"required,uuid"`
	FromLocationID string `json:"from_location_id" validate:"required,uuid"`
	ToLocationID   string `json:"to_location_id" validate:"required,uuid,nefield=FromLocationID"`
	Quantity       int64  `json:"quantity" validate:"required,max=1000000000"`
	Notes          string `json:"notes,omitempty" validate:"max=500"`
}

// MovementListRequest filtros de GET /api/movements.
type MovementListRequest struct {
	PageRequest
	BranchID     string `query:"branch_id" validate:"omitempty,uuid"`
	ItemID       string `query:"item_id" validate:"omitempty,uuid"`
	LocationID   string `query:"location_id" validate:"omitempty,uuid"`
	MovementType string `query:"movement_type" validate:"max=30"`
	UserID       string `query:"user_id"`
	From         string `query:"from" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"` // RFC 3339
	To           string `query:"to" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// MovementResponse salida de un movimiento del libro.
type MovementResponse struct {
	ID                string          `json:"id"`
	ItemID            string          `json:"item_id"`
	LocationID        string          `json:"location_id"`
	MovementTypeID    string          `json:"movement_type_id"`
	MovementType      string          `json:"movement_type"`
	Quantity          int64           `json:"quantity"`
	EffectiveQuantity int64           `json:"effective_quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	UserID            string          `json:"user_id"`
	TransferID        *string         `json:"transfer_id,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// TransferResponse los dos asientos del traslado.
type TransferResponse struct {
	TransferID string           `json:"transfer_id"`
	Out        MovementResponse `json:"out"`
	In         MovementResponse `json:"in"`
}

// BalanceResponse saldo de un par (ítem, locación).
type BalanceResponse struct {
	ItemID     string    `json:"item_id"`
	LocationID string    `json:"location_id"`
	Quantity   int64     `json:"quantity"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// LocationBalanceResponse una fila de la distribución del stock de un ítem.
type LocationBalanceResponse struct {
	LocationID   string `json:"location_id"`
	LocationCode string `json:"location_code"`
	LocationName string `json:"location_name"`
	Quantity     int64  `json:"quantity"`
}

// StockDistributionResponse stock de un ítem por locación.
type StockDistributionResponse struct {
	ItemID        string                    `json:"item_id"`
	TotalQuantity int64                     `json:"total_quantity"`
	Locations     []LocationBalanceResponse `json:"locations"`
}

// BalanceCheckResponse saldo guardado frente al reconstruido desde el libro.
type BalanceCheckResponse struct {
	ItemID     string `json:"item_id"`
	LocationID string `json:"location_id"`
	Stored     int64  `json:"stored"`
	Replayed   int64  `json:"replayed"`
	Consistent bool   `json:"consistent"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un ítem bajo su stock mínimo.
type ReplenishmentSuggestionDTO struct {
	ItemID             string           `json:"item_id"`
	BranchID           string           `json:"branch_id"`
	SKU                string           `json:"sku"`
	Name               string           `json:"name"`
	CurrentStock       int64            `json:"current_stock"`
	MinimumStock       int64            `json:"minimum_stock"`
	IdealStock         int64            `json:"ideal_stock"`         // MinimumStock * 1.5, redondeado hacia arriba
	SuggestedOrderQty  int64            `json:"suggested_order_qty"` // IdealStock - CurrentStock
	UnitCost           *decimal.Decimal `json:"unit_cost,omitempty"` // precio de compra
	EstimatedOrderCost decimal.Decimal  `json:"estimated_order_cost"`
	Priority           int              `json:"priority"` // 1 = más urgente
}

func FromMovement(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:                m.ID,
		ItemID:            m.ItemID,
		LocationID:        m.LocationID,
		MovementTypeID:    m.MovementTypeID,
		MovementType:      m.MovementTypeCode,
		Quantity:          m.Quantity,
		EffectiveQuantity: m.EffectiveQuantity,
		UnitPrice:         m.UnitPrice,
		UserID:            m.UserID,
		TransferID:        m.TransferID,
		Notes:             m.Notes,
		CreatedAt:         m.CreatedAt,
	}
}

func FromLocationBalance(b *entity.LocationBalance) LocationBalanceResponse {
	return LocationBalanceResponse{
		LocationID: b.LocationID, LocationCode: b.LocationCode, LocationName: b.LocationName, Quantity: b.Quantity,
	}
}
