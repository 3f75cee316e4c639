package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

type SupplierFilter struct {
	Search          string // nombre o identificación fiscal
	IncludeInactive bool
	Page
}

type SupplierRepository interface {
	Create(ctx context.Context, supplier *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	Update(ctx context.Context, supplier *entity.Supplier) error
	List(ctx context.Context, filter SupplierFilter) ([]*entity.Supplier, error)
}
