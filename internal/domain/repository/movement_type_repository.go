package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementTypeFilter filtro para listar tipos de movimiento.
type MovementTypeFilter struct {
	ActiveOnly bool
	Factor     int // 0 = cualquiera
	Category   string
}

// MovementTypeRepository define el puerto de persistencia para el registro de tipos.
type MovementTypeRepository interface {
	Create(ctx context.Context, mt *entity.MovementType) error
	GetByID(ctx context.Context, id string) (*entity.MovementType, error)
	GetByCode(ctx context.Context, code string) (*entity.MovementType, error)
	Update(ctx context.Context, mt *entity.MovementType) error
	List(ctx context.Context, filter MovementTypeFilter) ([]*entity.MovementType, error)
}
