package dto

import (
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CreateBranchRequest entrada para crear una filial.
type CreateBranchRequest struct {
	Name string `json:"name" validate:"required,min=1,max=150"`
}

// UpdateBranchRequest entrada para actualizar una filial (campos opcionales).
type UpdateBranchRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=150"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// BranchResponse salida de una filial.
type BranchResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateSectorRequest entrada para crear un sector dentro de una filial.
type CreateSectorRequest struct {
	Name string `json:"name" validate:"required,min=1,max=150"`
}

// SectorResponse salida de un sector.
type SectorResponse struct {
	ID       string `json:"id"`
	BranchID string `json:"branch_id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

func FromBranch(b *entity.Branch) BranchResponse {
	return BranchResponse{ID: b.ID, Name: b.Name, IsActive: b.IsActive, CreatedAt: b.CreatedAt, UpdatedAt: b.UpdatedAt}
}

func FromSector(s *entity.Sector) SectorResponse {
	return SectorResponse{ID: s.ID, BranchID: s.BranchID, Name: s.Name, IsActive: s.IsActive}
}
