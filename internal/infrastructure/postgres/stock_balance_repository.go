package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockBalanceRepository = (*StockBalanceRepo)(nil)

// StockBalanceRepo saldos materializados sobre PostgreSQL (usable con pool o tx).
// GetForUpdate y ApplyDelta solo tienen sentido dentro de una transacción.
type StockBalanceRepo struct {
	q Querier
}

// NewStockBalanceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockBalanceRepository(q Querier) *StockBalanceRepo {
	return &StockBalanceRepo{q: q}
}

const balanceQuery = `
	SELECT item_id, location_id, quantity, updated_at
	FROM stock_balances WHERE item_id = $1 AND location_id = $2`

func (r *StockBalanceRepo) Get(ctx context.Context, itemID, locationID string) (*entity.StockBalance, error) {
	return r.get(ctx, "get balance", balanceQuery, itemID, locationID)
}

func (r *StockBalanceRepo) get(ctx context.Context, op, query, itemID, locationID string) (*entity.StockBalance, error) {
	var b entity.StockBalance
	err := r.q.QueryRow(ctx, query, itemID, locationID).Scan(&b.ItemID, &b.LocationID, &b.Quantity, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockBalance{ItemID: itemID, LocationID: locationID}, nil
		}
		return nil, mapError(op, err)
	}
	return &b, nil
}

func (r *StockBalanceRepo) ListByItem(ctx context.Context, itemID string) ([]*entity.LocationBalance, error) {
	query := `
		SELECT sb.location_id, l.code, l.name, sb.quantity, sb.updated_at
		FROM stock_balances sb
		JOIN locations l ON l.id = sb.location_id
		WHERE sb.item_id = $1
		ORDER BY l.code`
	rows, err := r.q.Query(ctx, query, itemID)
	if err != nil {
		return nil, mapError("list balances", err)
	}
	defer rows.Close()
	out := []*entity.LocationBalance{}
	for rows.Next() {
		var lb entity.LocationBalance
		if err := rows.Scan(&lb.LocationID, &lb.LocationCode, &lb.LocationName, &lb.Quantity, &lb.UpdatedAt); err != nil {
			return nil, mapError("scan balance", err)
		}
		out = append(out, &lb)
	}
	return out, mapError("list balances", rows.Err())
}

func (r *StockBalanceRepo) SumByItem(ctx context.Context, itemID string) (int64, error) {
	var total int64
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0)::BIGINT FROM stock_balances WHERE item_id = $1`, itemID,
	).Scan(&total)
	if err != nil {
		return 0, mapError("sum balances", err)
	}
	return total, nil
}

// GetForUpdate crea la fila en cero si no existe y la bloquea (SELECT ... FOR UPDATE).
// Dos transacciones sobre el mismo par se serializan aquí; la espera la acota lock_timeout.
func (r *StockBalanceRepo) GetForUpdate(ctx context.Context, itemID, locationID string) (*entity.StockBalance, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_balances (item_id, location_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (item_id, location_id) DO NOTHING`, itemID, locationID)
	if err != nil {
		return nil, mapError("ensure balance row", err)
	}
	return r.get(ctx, "get balance for update", balanceQuery+` FOR UPDATE`, itemID, locationID)
}

// ApplyDelta suma delta y devuelve la cantidad resultante. El CHECK (quantity >= 0) de la
// tabla es la última barrera contra saldos negativos.
func (r *StockBalanceRepo) ApplyDelta(ctx context.Context, itemID, locationID string, delta int64) (int64, error) {
	var quantity int64
	err := r.q.QueryRow(ctx, `
		UPDATE stock_balances SET quantity = quantity + $3, updated_at = now()
		WHERE item_id = $1 AND location_id = $2
		RETURNING quantity`, itemID, locationID, delta,
	).Scan(&quantity)
	if err != nil {
		return 0, mapError("apply balance delta", err)
	}
	return quantity, nil
}
