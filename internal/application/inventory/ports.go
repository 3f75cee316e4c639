package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el libro: o se aplican saldo y movimiento, o nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		items repository.ItemLocker,
		balances repository.StockBalanceRepository,
		movements repository.StockMovementRepository,
	) error) error
}

// Observer recibe el resultado de cada intento de registro (métricas).
type Observer interface {
	MovementAccepted(movementType string, duration time.Duration)
	MovementRejected(movementType, reason string)
}

type noopObserver struct{}

func (noopObserver) MovementAccepted(string, time.Duration) {}
func (noopObserver) MovementRejected(string, string)        {}
