package dto

import (
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CreateCategoryGroupRequest entrada para crear un grupo de categorías.
type CreateCategoryGroupRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description,omitempty" validate:"max=255"`
}

type UpdateCategoryGroupRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=255"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type CategoryGroupResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCategoryRequest entrada para crear una categoría, opcionalmente dentro de un grupo.
type CreateCategoryRequest struct {
	GroupID     *string `json:"group_id,omitempty" validate:"omitempty,uuid"`
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description string  `json:"description,omitempty" validate:"max=255"`
}

// UpdateCategoryRequest campos opcionales; group_id vacío saca la categoría de su grupo.
type UpdateCategoryRequest struct {
	GroupID     *string `json:"group_id,omitempty" validate:"omitempty,uuid"`
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=255"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// CategoryListRequest filtros de GET /api/categories.
type CategoryListRequest struct {
	GroupID         string `query:"group_id" validate:"omitempty,uuid"`
	IncludeInactive bool   `query:"include_inactive"`
}

type CategoryResponse struct {
	ID          string    `json:"id"`
	GroupID     *string   `json:"group_id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateSupplierRequest entrada para registrar un proveedor.
type CreateSupplierRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=150"`
	TaxID         string `json:"tax_id,omitempty" validate:"max=20"`
	ContactPerson string `json:"contact_person,omitempty" validate:"max=100"`
	PhoneNumber   string `json:"phone_number,omitempty" validate:"omitempty,phone"`
	Email         string `json:"email,omitempty" validate:"omitempty,email,max=254"`
}

type UpdateSupplierRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,min=1,max=150"`
	TaxID         *string `json:"tax_id,omitempty" validate:"omitempty,max=20"`
	ContactPerson *string `json:"contact_person,omitempty" validate:"omitempty,max=100"`
	PhoneNumber   *string `json:"phone_number,omitempty" validate:"omitempty,phone"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

// SupplierListRequest filtros de GET /api/suppliers.
type SupplierListRequest struct {
	PageRequest
	Search          string `query:"search" validate:"max=100"`
	IncludeInactive bool   `query:"include_inactive"`
}

type SupplierResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	TaxID         string    `json:"tax_id,omitempty"`
	ContactPerson string    `json:"contact_person,omitempty"`
	PhoneNumber   string    `json:"phone_number,omitempty"`
	Email         string    `json:"email,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ReferenceOption par id/nombre para selectores.
type ReferenceOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type StatusOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FilterOptionsResponse valores con los que se puede filtrar GET /api/items.
type FilterOptionsResponse struct {
	Categories []ReferenceOption `json:"categories"`
	Suppliers  []ReferenceOption `json:"suppliers"`
	Statuses   []StatusOption    `json:"statuses"`
}

func FromCategoryGroup(g *entity.CategoryGroup) CategoryGroupResponse {
	return CategoryGroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		IsActive:    g.IsActive,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func FromCategory(c *entity.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		GroupID:     c.GroupID,
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func FromSupplier(s *entity.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:            s.ID,
		Name:          s.Name,
		TaxID:         s.TaxID,
		ContactPerson: s.ContactPerson,
		PhoneNumber:   s.PhoneNumber,
		Email:         s.Email,
		IsActive:      s.IsActive,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
