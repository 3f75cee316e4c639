package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementFilter filtro del historial de movimientos. Scope se aplica sobre la filial del ítem.
type MovementFilter struct {
	Scope          BranchScope
	ItemID         string
	LocationID     string
	MovementTypeID string
	UserID         string
	From, To       *time.Time
	Page
}

// StockMovementReader lecturas del libro.
type StockMovementReader interface {
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
	// SumEffective reconstruye el saldo sumando todo el libro del par.
	SumEffective(ctx context.Context, itemID, locationID string) (int64, error)
}

// StockMovementRepository libro de solo anexado: no hay Update ni Delete.
type StockMovementRepository interface {
	StockMovementReader
	Create(ctx context.Context, movement *entity.StockMovement) error
}
