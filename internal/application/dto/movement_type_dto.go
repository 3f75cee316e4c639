package dto

import "github.com/jhoicas/stock-ledger/internal/domain/entity"

// CreateMovementTypeRequest entrada para registrar un tipo de movimiento.
type CreateMovementTypeRequest struct {
	Code             string  `json:"code" validate:"required,min=1,max=30"`
	Name             string  `json:"name" validate:"required,min=1,max=100"`
	Description      string  `json:"description,omitempty" validate:"max=255"`
	Factor           int     `json:"factor" validate:"required,oneof=1 -1"`
	UnitsPerPackage  *int    `json:"units_per_package,omitempty"`
	Category         string  `json:"category" validate:"required,oneof=inbound outbound adjustment transfer production quality"`
	ParentID         *string `json:"parent_id,omitempty" validate:"omitempty,uuid"`
	RequiresApproval bool    `json:"requires_approval"`
	AffectsFinance   bool    `json:"affects_finance"`
}

// UpdateMovementTypeRequest entrada para actualizar un tipo. El código no cambia.
type UpdateMovementTypeRequest struct {
	Name             *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description      *string `json:"description,omitempty" validate:"omitempty,max=255"`
	Factor           *int    `json:"factor,omitempty" validate:"omitempty,oneof=1 -1"`
	UnitsPerPackage  *int    `json:"units_per_package,omitempty"`
	ClearPackage     bool    `json:"clear_units_per_package,omitempty"`
	Category         *string `json:"category,omitempty" validate:"omitempty,oneof=inbound outbound adjustment transfer production quality"`
	ParentID         *string `json:"parent_id,omitempty" validate:"omitempty,uuid"`
	ClearParent      bool    `json:"clear_parent,omitempty"`
	RequiresApproval *bool   `json:"requires_approval,omitempty"`
	AffectsFinance   *bool   `json:"affects_finance,omitempty"`
	IsActive         *bool   `json:"is_active,omitempty"`
}

// MovementTypeResponse salida de un tipo de movimiento.
type MovementTypeResponse struct {
	ID               string  `json:"id"`
	Code             string  `json:"code"`
	Name             string  `json:"name"`
	Description      string  `json:"description,omitempty"`
	Factor           int     `json:"factor"`
	UnitsPerPackage  *int    `json:"units_per_package,omitempty"`
	Category         string  `json:"category"`
	ParentID         *string `json:"parent_id,omitempty"`
	RequiresApproval bool    `json:"requires_approval"`
	AffectsFinance   bool    `json:"affects_finance"`
	IsActive         bool    `json:"is_active"`
}

func FromMovementType(mt *entity.MovementType) MovementTypeResponse {
	return MovementTypeResponse{
		ID:               mt.ID,
		Code:             mt.Code,
		Name:             mt.Name,
		Description:      mt.Description,
		Factor:           mt.Factor,
		UnitsPerPackage:  mt.UnitsPerPackage,
		Category:         mt.Category,
		ParentID:         mt.ParentID,
		RequiresApproval: mt.RequiresApproval,
		AffectsFinance:   mt.AffectsFinance,
		IsActive:         mt.IsActive,
	}
}
