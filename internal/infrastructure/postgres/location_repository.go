package postgres

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo implementación de LocationRepository sobre PostgreSQL.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador de locaciones.
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

const locationColumns = `id, branch_id, code, name, type, is_active, created_by, updated_by, created_at, updated_at`

func scanLocation(row interface{ Scan(...any) error }) (*entity.Location, error) {
	var l entity.Location
	err := row.Scan(&l.ID, &l.BranchID, &l.Code, &l.Name, &l.Type, &l.IsActive,
		&l.CreatedBy, &l.UpdatedBy, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LocationRepo) Create(ctx context.Context, l *entity.Location) error {
	query := `
		INSERT INTO locations (` + locationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query, l.ID, l.BranchID, l.Code, l.Name, l.Type, l.IsActive,
		l.CreatedBy, l.UpdatedBy, l.CreatedAt, l.UpdatedAt)
	return mapError("insert location", err)
}

func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	l, err := scanLocation(r.q.QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = $1`, id))
	if err != nil {
		return nil, mapError("get location", err)
	}
	return l, nil
}

func (r *LocationRepo) GetByBranchAndCode(ctx context.Context, branchID, code string) (*entity.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE branch_id = $1 AND code = $2`
	l, err := scanLocation(r.q.QueryRow(ctx, query, branchID, code))
	if err != nil {
		return nil, mapError("get location by code", err)
	}
	return l, nil
}

func (r *LocationRepo) Update(ctx context.Context, l *entity.Location) error {
	query := `
		UPDATE locations SET code = $2, name = $3, type = $4, is_active = $5, updated_by = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, l.ID, l.Code, l.Name, l.Type, l.IsActive, l.UpdatedBy, l.UpdatedAt)
	if err != nil {
		return mapError("update location", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("update location", errNoRows)
	}
	return nil
}

func (r *LocationRepo) List(ctx context.Context, f repository.LocationFilter) ([]*entity.Location, error) {
	if f.Scope.IsEmpty() {
		return []*entity.Location{}, nil
	}
	var w whereBuilder
	if f.Scope.Restricted {
		w.add("branch_id = ANY(?)", f.Scope.BranchIDs)
	}
	if f.Type != "" {
		w.add("type = ?", f.Type)
	}
	if !f.IncludeInactive {
		w.raw("is_active")
	}
	p := f.Page.Normalize()
	query := `SELECT ` + locationColumns + ` FROM locations` + w.sql() + ` ORDER BY code` + w.page(p.Limit, p.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapError("list locations", err)
	}
	defer rows.Close()
	out := []*entity.Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, mapError("scan location", err)
		}
		out = append(out, l)
	}
	return out, mapError("list locations", rows.Err())
}
