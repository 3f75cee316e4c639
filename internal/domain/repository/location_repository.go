package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// LocationFilter filtro para listar locaciones.
type LocationFilter struct {
	Scope           BranchScope
	Type            string
	IncludeInactive bool
	Page
}

// LocationRepository define el puerto de persistencia para locaciones.
type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	GetByBranchAndCode(ctx context.Context, branchID, code string) (*entity.Location, error)
	Update(ctx context.Context, location *entity.Location) error
	List(ctx context.Context, filter LocationFilter) ([]*entity.Location, error)
}
