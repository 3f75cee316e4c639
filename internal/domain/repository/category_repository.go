package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CategoryFilter filtro de categorías.
type CategoryFilter struct {
	GroupID         string
	IncludeInactive bool
}

// CategoryRepository categorías y grupos de categorías. Los nombres se comparan sin
// distinguir mayúsculas; un duplicado devuelve domain.ErrDuplicate.
type CategoryRepository interface {
	CreateGroup(ctx context.Context, group *entity.CategoryGroup) error
	GetGroup(ctx context.Context, id string) (*entity.CategoryGroup, error)
	UpdateGroup(ctx context.Context, group *entity.CategoryGroup) error
	ListGroups(ctx context.Context, includeInactive bool) ([]*entity.CategoryGroup, error)

	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	List(ctx context.Context, filter CategoryFilter) ([]*entity.Category, error)
}
