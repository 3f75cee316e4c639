package postgres

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.MovementTypeRepository = (*MovementTypeRepo)(nil)

// MovementTypeRepo registro de tipos de movimiento sobre PostgreSQL.
type MovementTypeRepo struct {
	q Querier
}

// NewMovementTypeRepository construye el adaptador del registro de tipos.
func NewMovementTypeRepository(q Querier) *MovementTypeRepo {
	return &MovementTypeRepo{q: q}
}

const movementTypeColumns = `id, code, name, description, factor, units_per_package, category, parent_id,
	requires_approval, affects_finance, is_active, created_by, updated_by, created_at, updated_at`

func scanMovementType(row interface{ Scan(...any) error }) (*entity.MovementType, error) {
	var mt entity.MovementType
	err := row.Scan(&mt.ID, &mt.Code, &mt.Name, &mt.Description, &mt.Factor, &mt.UnitsPerPackage,
		&mt.Category, &mt.ParentID, &mt.RequiresApproval, &mt.AffectsFinance, &mt.IsActive,
		&mt.CreatedBy, &mt.UpdatedBy, &mt.CreatedAt, &mt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &mt, nil
}

func (r *MovementTypeRepo) Create(ctx context.Context, mt *entity.MovementType) error {
	query := `
		INSERT INTO movement_types (` + movementTypeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		mt.ID, mt.Code, mt.Name, mt.Description, mt.Factor, mt.UnitsPerPackage, mt.Category, mt.ParentID,
		mt.RequiresApproval, mt.AffectsFinance, mt.IsActive, mt.CreatedBy, mt.UpdatedBy, mt.CreatedAt, mt.UpdatedAt,
	)
	return mapError("insert movement type", err)
}

func (r *MovementTypeRepo) GetByID(ctx context.Context, id string) (*entity.MovementType, error) {
	mt, err := scanMovementType(r.q.QueryRow(ctx, `SELECT `+movementTypeColumns+` FROM movement_types WHERE id = $1`, id))
	if err != nil {
		return nil, mapError("get movement type", err)
	}
	return mt, nil
}

func (r *MovementTypeRepo) GetByCode(ctx context.Context, code string) (*entity.MovementType, error) {
	mt, err := scanMovementType(r.q.QueryRow(ctx, `SELECT `+movementTypeColumns+` FROM movement_types WHERE code = $1`, code))
	if err != nil {
		return nil, mapError("get movement type by code", err)
	}
	return mt, nil
}

// Update reescribe la definición. Los movimientos ya registrados conservan su cantidad efectiva.
func (r *MovementTypeRepo) Update(ctx context.Context, mt *entity.MovementType) error {
	query := `
		UPDATE movement_types SET code = $2, name = $3, description = $4, factor = $5, units_per_package = $6,
			category = $7, parent_id = $8, requires_approval = $9, affects_finance = $10, is_active = $11,
			updated_by = $12, updated_at = $13
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		mt.ID, mt.Code, mt.Name, mt.Description, mt.Factor, mt.UnitsPerPackage, mt.Category, mt.ParentID,
		mt.RequiresApproval, mt.AffectsFinance, mt.IsActive, mt.UpdatedBy, mt.UpdatedAt,
	)
	if err != nil {
		return mapError("update movement type", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("update movement type", errNoRows)
	}
	return nil
}

func (r *MovementTypeRepo) List(ctx context.Context, f repository.MovementTypeFilter) ([]*entity.MovementType, error) {
	var w whereBuilder
	if f.ActiveOnly {
		w.raw("is_active")
	}
	if f.Factor != 0 {
		w.add("factor = ?", f.Factor)
	}
	if f.Category != "" {
		w.add("category = ?", f.Category)
	}
	rows, err := r.q.Query(ctx, `SELECT `+movementTypeColumns+` FROM movement_types`+w.sql()+` ORDER BY name`, w.args...)
	if err != nil {
		return nil, mapError("list movement types", err)
	}
	defer rows.Close()
	out := []*entity.MovementType{}
	for rows.Next() {
		mt, err := scanMovementType(rows)
		if err != nil {
			return nil, mapError("scan movement type", err)
		}
		out = append(out, mt)
	}
	return out, mapError("list movement types", rows.Err())
}
