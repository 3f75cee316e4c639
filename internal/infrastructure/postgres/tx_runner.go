package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED).
// La serialización por par ítem/locación la dan los SELECT ... FOR UPDATE del saldo; la
// fila del ítem se bloquea antes (FOR SHARE al mover, FOR UPDATE al dar de baja).
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	items repository.ItemLocker,
	balances repository.StockBalanceRepository,
	movements repository.StockMovementRepository,
) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return mapError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if err := fn(NewItemRepository(tx), NewStockBalanceRepository(tx), NewStockMovementRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError("commit transaction", fmt.Errorf("commit: %w", err))
	}
	return nil
}
