package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockBalanceReader lecturas de saldos fuera de transacción (para mostrar).
type StockBalanceReader interface {
	// Get devuelve el saldo; cantidad 0 si la fila no existe.
	Get(ctx context.Context, itemID, locationID string) (*entity.StockBalance, error)
	ListByItem(ctx context.Context, itemID string) ([]*entity.LocationBalance, error)
	SumByItem(ctx context.Context, itemID string) (int64, error)
}

// StockBalanceRepository escritura de saldos. Solo existe atada a la transacción del libro.
type StockBalanceRepository interface {
	StockBalanceReader
	// GetForUpdate crea la fila en 0 si no existe y la bloquea hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, itemID, locationID string) (*entity.StockBalance, error)
	// ApplyDelta suma delta al saldo bloqueado y devuelve la nueva cantidad.
	ApplyDelta(ctx context.Context, itemID, locationID string, delta int64) (int64, error)
}
