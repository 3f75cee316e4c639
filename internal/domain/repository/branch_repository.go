package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// BranchFilter filtro para listar filiales.
type BranchFilter struct {
	Scope           BranchScope
	IncludeInactive bool
	Page
}

// BranchRepository define el puerto de persistencia para filiales y sectores.
type BranchRepository interface {
	Create(ctx context.Context, branch *entity.Branch) error
	GetByID(ctx context.Context, id string) (*entity.Branch, error)
	Update(ctx context.Context, branch *entity.Branch) error
	List(ctx context.Context, filter BranchFilter) ([]*entity.Branch, error)

	CreateSector(ctx context.Context, sector *entity.Sector) error
	GetSector(ctx context.Context, id string) (*entity.Sector, error)
	ListSectors(ctx context.Context, branchID string) ([]*entity.Sector, error)
}
