package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CreateItemRequest entrada para crear un ítem. Los precios pueden quedar vacíos (borrador).
type CreateItemRequest struct {
	BranchID         string           `json:"branch_id,omitempty" validate:"omitempty,uuid"`
	SKU              string           `json:"sku" validate:"required,min=1,max=50"`
	EAN              *string          `json:"ean,omitempty" validate:"omitempty,len=13,numeric"`
	Name             string           `json:"name" validate:"required,min=1,max=150"`
	Brand            string           `json:"brand,omitempty" validate:"max=100"`
	ShortDescription string           `json:"short_description,omitempty" validate:"max=255"`
	Status           string           `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE DISCONTINUED INACTIVE"`
	CategoryID       *string          `json:"category_id,omitempty" validate:"omitempty,uuid"`
	SupplierID       *string          `json:"supplier_id,omitempty" validate:"omitempty,uuid"`
	PurchasePrice    *decimal.Decimal `json:"purchase_price,omitempty"`
	SalePrice        *decimal.Decimal `json:"sale_price,omitempty"`
	MinimumStock     *int64           `json:"minimum_stock,omitempty" validate:"omitempty,min=0"`
	UnitOfMeasure    string           `json:"unit_of_measure,omitempty" validate:"max=20"`
}

// UpdateItemRequest entrada para actualizar un ítem (campos opcionales). Una cadena vacía
// en ean, category_id o supplier_id borra el valor.
type UpdateItemRequest struct {
	SKU              *string          `json:"sku,omitempty" validate:"omitempty,min=1,max=50"`
	EAN              *string          `json:"ean,omitempty" validate:"omitempty,len=13,numeric"`
	Name             *string          `json:"name,omitempty" validate:"omitempty,min=1,max=150"`
	Brand            *string          `json:"brand,omitempty" validate:"omitempty,max=100"`
	ShortDescription *string          `json:"short_description,omitempty" validate:"omitempty,max=255"`
	Status           *string          `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE DISCONTINUED INACTIVE"`
	CategoryID       *string          `json:"category_id,omitempty" validate:"omitempty,uuid"`
	SupplierID       *string          `json:"supplier_id,omitempty" validate:"omitempty,uuid"`
	PurchasePrice    *decimal.Decimal `json:"purchase_price,omitempty"`
	SalePrice        *decimal.Decimal `json:"sale_price,omitempty"`
	MinimumStock     *int64           `json:"minimum_stock,omitempty" validate:"omitempty,min=0"`
	UnitOfMeasure    *string          `json:"unit_of_measure,omitempty" validate:"omitempty,max=20"`
}

// ItemListRequest filtros de GET /api/items.
type ItemListRequest struct {
	PageRequest
	BranchID       string `query:"branch_id" validate:"omitempty,uuid"`
	LocationID     string `query:"location_id" validate:"omitempty,uuid"`
	Status         string `query:"status" validate:"omitempty,oneof=ACTIVE DISCONTINUED INACTIVE"`
	CategoryID     string `query:"category_id" validate:"omitempty,uuid"`
	SupplierID     string `query:"supplier_id" validate:"omitempty,uuid"`
	Search         string `query:"search" validate:"max=100"`
	LowStock       bool   `query:"low_stock"`
	IncludeDeleted bool   `query:"include_deleted"`
}

// ItemResponse salida de un ítem con sus atributos derivados.
type ItemResponse struct {
	ID               string           `json:"id"`
	BranchID         string           `json:"branch_id"`
	SKU              string           `json:"sku"`
	EAN              *string          `json:"ean,omitempty"`
	Name             string           `json:"name"`
	Brand            string           `json:"brand,omitempty"`
	ShortDescription string           `json:"short_description,omitempty"`
	Status           string           `json:"status"`
	CategoryID       *string          `json:"category_id,omitempty"`
	SupplierID       *string          `json:"supplier_id,omitempty"`
	PurchasePrice    *decimal.Decimal `json:"purchase_price,omitempty"`
	SalePrice        *decimal.Decimal `json:"sale_price,omitempty"`
	MinimumStock     int64            `json:"minimum_stock"`
	UnitOfMeasure    string           `json:"unit_of_measure"`
	TotalQuantity    int64            `json:"total_quantity"`
	IsLowStock       bool             `json:"is_low_stock"`
	DeletedAt        *time.Time       `json:"deleted_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func FromItemStock(s *entity.ItemStock) ItemResponse {
	return ItemResponse{
		ID:               s.ID,
		BranchID:         s.BranchID,
		SKU:              s.SKU,
		EAN:              s.EAN,
		Name:             s.Name,
		Brand:            s.Brand,
		ShortDescription: s.ShortDescription,
		Status:           s.Status,
		CategoryID:       s.CategoryID,
		SupplierID:       s.SupplierID,
		PurchasePrice:    s.PurchasePrice,
		SalePrice:        s.SalePrice,
		MinimumStock:     s.MinimumStock,
		UnitOfMeasure:    s.UnitOfMeasure,
		TotalQuantity:    s.TotalQuantity,
		IsLowStock:       s.IsLowStock(),
		DeletedAt:        s.DeletedAt,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}
