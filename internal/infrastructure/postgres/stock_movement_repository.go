package postgres

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo libro de movimientos sobre PostgreSQL. Solo anexado: un trigger de la
// tabla rechaza UPDATE y DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `m.id, m.item_id, m.location_id, m.movement_type_id, m.movement_type_code,
	m.quantity, m.effective_quantity, m.unit_price, m.user_id, m.transfer_id, m.notes, m.created_at`

func scanMovement(row interface{ Scan(...any) error }) (*entity.StockMovement, error) {
	var m entity.StockMovement
	err := row.Scan(&m.ID, &m.ItemID, &m.LocationID, &m.MovementTypeID, &m.MovementTypeCode,
		&m.Quantity, &m.EffectiveQuantity, &m.UnitPrice, &m.UserID, &m.TransferID, &m.Notes, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create anexa el movimiento. CreatedAt vacío toma la hora del servidor de BD.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, item_id, location_id, movement_type_id, movement_type_code,
			quantity, effective_quantity, unit_price, user_id, transfer_id, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, COALESCE($12::timestamptz, now()))
		RETURNING created_at`
	var createdAt any
	if !m.CreatedAt.IsZero() {
		createdAt = m.CreatedAt
	}
	err := r.q.QueryRow(ctx, query,
		m.ID, m.ItemID, m.LocationID, m.MovementTypeID, m.MovementTypeCode,
		m.Quantity, m.EffectiveQuantity, m.UnitPrice, m.UserID, m.TransferID, m.Notes, createdAt,
	).Scan(&m.CreatedAt)
	return mapError("insert movement", err)
}

func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM stock_movements m WHERE m.id = $1`, id))
	if err != nil {
		return nil, mapError("get movement", err)
	}
	return m, nil
}

// List historial filtrado, más recientes primero. El alcance se aplica sobre la filial del ítem.
func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	if f.Scope.IsEmpty() {
		return []*entity.StockMovement{}, nil
	}
	var w whereBuilder
	if f.Scope.Restricted {
		w.add("i.branch_id = ANY(?)", f.Scope.BranchIDs)
	}
	if f.ItemID != "" {
		w.add("m.item_id = ?", f.ItemID)
	}
	if f.LocationID != "" {
		w.add("m.location_id = ?", f.LocationID)
	}
	if f.MovementTypeID != "" {
		w.add("m.movement_type_id = ?", f.MovementTypeID)
	}
	if f.UserID != "" {
		w.add("m.user_id = ?", f.UserID)
	}
	if f.From != nil {
		w.add("m.created_at >= ?", *f.From)
	}
	if f.To != nil {
		w.add("m.created_at < ?", *f.To)
	}
	p := f.Page.Normalize()
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements m
		JOIN items i ON i.id = m.item_id` + w.sql() + `
		ORDER BY m.created_at DESC, m.seq DESC` + w.page(p.Limit, p.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapError("list movements", err)
	}
	defer rows.Close()
	out := []*entity.StockMovement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, mapError("scan movement", err)
		}
		out = append(out, m)
	}
	return out, mapError("list movements", rows.Err())
}

// SumEffective reconstruye el saldo de un par desde el libro.
func (r *StockMovementRepo) SumEffective(ctx context.Context, itemID, locationID string) (int64, error) {
	var sum int64
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(effective_quantity), 0)::BIGINT
		FROM stock_movements WHERE item_id = $1 AND location_id = $2`, itemID, locationID,
	).Scan(&sum)
	if err != nil {
		return 0, mapError("sum movements", err)
	}
	return sum, nil
}
