package dto

import (
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CreateLocationRequest entrada para crear una locación. BranchID vacío = filial por defecto.
type CreateLocationRequest struct {
	BranchID string `json:"branch_id,omitempty" validate:"omitempty,uuid"`
	Code     string `json:"code" validate:"required,min=1,max=30"`
	Name     string `json:"name" validate:"required,min=1,max=150"`
	Type     string `json:"type" validate:"required,oneof=RECEIVING STORAGE PICKING DISPATCH STOREFRONT"`
}

// UpdateLocationRequest entrada para actualizar una locación.
type UpdateLocationRequest struct {
	Code     *string `json:"code,omitempty" validate:"omitempty,min=1,max=30"`
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=150"`
	Type     *string `json:"type,omitempty" validate:"omitempty,oneof=RECEIVING STORAGE PICKING DISPATCH STOREFRONT"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// LocationResponse salida de una locación.
type LocationResponse struct {
	ID        string    `json:"id"`
	BranchID  string    `json:"branch_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func FromLocation(l *entity.Location) LocationResponse {
	return LocationResponse{
		ID: l.ID, BranchID: l.BranchID, Code: l.Code, Name: l.Name,
		Type: l.Type, IsActive: l.IsActive, CreatedAt: l.CreatedAt,
	}
}
