package postgres

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.BranchRepository = (*BranchRepo)(nil)

// BranchRepo implementación de BranchRepository sobre PostgreSQL.
type BranchRepo struct {
	q Querier
}

// NewBranchRepository construye el adaptador de filiales y sectores.
func NewBranchRepository(q Querier) *BranchRepo {
	return &BranchRepo{q: q}
}

const branchColumns = `id, name, is_active, created_by, updated_by, created_at, updated_at`

func scanBranch(row interface{ Scan(...any) error }) (*entity.Branch, error) {
	var b entity.Branch
	err := row.Scan(&b.ID, &b.Name, &b.IsActive, &b.CreatedBy, &b.UpdatedBy, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BranchRepo) Create(ctx context.Context, b *entity.Branch) error {
	query := `
		INSERT INTO branches (` + branchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, b.ID, b.Name, b.IsActive, b.CreatedBy, b.UpdatedBy, b.CreatedAt, b.UpdatedAt)
	return mapError("insert branch", err)
}

func (r *BranchRepo) GetByID(ctx context.Context, id string) (*entity.Branch, error) {
	b, err := scanBranch(r.q.QueryRow(ctx, `SELECT `+branchColumns+` FROM branches WHERE id = $1`, id))
	if err != nil {
		return nil, mapError("get branch", err)
	}
	return b, nil
}

func (r *BranchRepo) Update(ctx context.Context, b *entity.Branch) error {
	query := `
		UPDATE branches SET name = $2, is_active = $3, updated_by = $4, updated_at = $5
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, b.ID, b.Name, b.IsActive, b.UpdatedBy, b.UpdatedAt)
	if err != nil {
		return mapError("update branch", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("update branch", errNoRows)
	}
	return nil
}

func (r *BranchRepo) List(ctx context.Context, f repository.BranchFilter) ([]*entity.Branch, error) {
	if f.Scope.IsEmpty() {
		return []*entity.Branch{}, nil
	}
	var w whereBuilder
	if f.Scope.Restricted {
		w.add("id = ANY(?)", f.Scope.BranchIDs)
	}
	if !f.IncludeInactive {
		w.raw("is_active")
	}
	p := f.Page.Normalize()
	query := `SELECT ` + branchColumns + ` FROM branches` + w.sql() + ` ORDER BY name` + w.page(p.Limit, p.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapError("list branches", err)
	}
	defer rows.Close()
	out := []*entity.Branch{}
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, mapError("scan branch", err)
		}
		out = append(out, b)
	}
	return out, mapError("list branches", rows.Err())
}

const sectorColumns = `id, branch_id, name, is_active, created_by, updated_by, created_at, updated_at`

func scanSector(row interface{ Scan(...any) error }) (*entity.Sector, error) {
	var s entity.Sector
	err := row.Scan(&s.ID, &s.BranchID, &s.Name, &s.IsActive, &s.CreatedBy, &s.UpdatedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *BranchRepo) CreateSector(ctx context.Context, s *entity.Sector) error {
	query := `
		INSERT INTO sectors (` + sectorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, s.ID, s.BranchID, s.Name, s.IsActive, s.CreatedBy, s.UpdatedBy, s.CreatedAt, s.UpdatedAt)
	return mapError("insert sector", err)
}

func (r *BranchRepo) GetSector(ctx context.Context, id string) (*entity.Sector, error) {
	s, err := scanSector(r.q.QueryRow(ctx, `SELECT `+sectorColumns+` FROM sectors WHERE id = $1`, id))
	if err != nil {
		return nil, mapError("get sector", err)
	}
	return s, nil
}

func (r *BranchRepo) ListSectors(ctx context.Context, branchID string) ([]*entity.Sector, error) {
	rows, err := r.q.Query(ctx, `SELECT `+sectorColumns+` FROM sectors WHERE branch_id = $1 ORDER BY name`, branchID)
	if err != nil {
		return nil, mapError("list sectors", err)
	}
	defer rows.Close()
	out := []*entity.Sector{}
	for rows.Next() {
		s, err := scanSector(rows)
		if err != nil {
			return nil, mapError("scan sector", err)
		}
		out = append(out, s)
	}
	return out, mapError("list sectors", rows.Err())
}
