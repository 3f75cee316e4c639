package postgres

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.CategoryRepository = (*CategoryRepo)(nil)
	_ repository.SupplierRepository = (*SupplierRepo)(nil)
)

// CategoryRepo categorías y grupos de categorías sobre PostgreSQL.
type CategoryRepo struct {
	q Querier
}

func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

const groupColumns = `id, name, description, is_active, created_by, updated_by, created_at, updated_at`

func scanGroup(row interface{ Scan(...any) error }) (*entity.CategoryGroup, error) {
	var g entity.CategoryGroup
	err := row.Scan(&g.ID, &g.Name, &g.Description, &g.IsActive, &g.CreatedBy, &g.UpdatedBy, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *CategoryRepo) CreateGroup(ctx context.Context, g *entity.CategoryGroup) error {
	query := `
		INSERT INTO category_groups (` + groupColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, g.ID, g.Name, g.Description, g.IsActive, g.CreatedBy, g.UpdatedBy, g.CreatedAt, g.UpdatedAt)
	return mapError("insert category group", err)
}

func (r *CategoryRepo) GetGroup(ctx context.Context, id string) (*entity.CategoryGroup, error) {
	g, err := scanGroup(r.q.QueryRow(ctx, `SELECT `+groupColumns+` FROM category_groups WHERE id = $1`, id))
	if err != nil {
		return nil, mapError("get category group", err)
	}
	return g, nil
}

func (r *CategoryRepo) UpdateGroup(ctx context.Context, g *entity.CategoryGroup) error {
	query := `
		UPDATE category_groups SET name = $2, description = $3, is_active = $4, updated_by = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, g.ID, g.Name, g.Description, g.IsActive, g.UpdatedBy, g.UpdatedAt)
	if err != nil {
		return mapError("update category group", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("update category group", errNoRows)
	}
	return nil
}

func (r *CategoryRepo) ListGroups(ctx context.Context, includeInactive bool) ([]*entity.CategoryGroup, error) {
	var w whereBuilder
	if !includeInactive {
		w.raw("is_active")
	}
	rows, err := r.q.Query(ctx, `SELECT `+groupColumns+` FROM category_groups`+w.sql()+` ORDER BY name`, w.args...)
	if err != nil {
		return nil, mapError("list category groups", err)
	}
	defer rows.Close()
	out := []*entity.CategoryGroup{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, mapError("scan category group", err)
		}
		out = append(out, g)
	}
	return out, mapError("list category groups", rows.Err())
}

const categoryColumns = `id, group_id, name, description, is_active, created_by, updated_by, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (*entity.Category, error) {
	var c entity.Category
	err := row.Scan(&c.ID, &c.GroupID, &c.Name, &c.Description, &c.IsActive, &c.CreatedBy, &c.UpdatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	query := `
		INSERT INTO categories (` + categoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query, c.ID, c.GroupID, c.Name, c.Description, c.IsActive, c.CreatedBy, c.UpdatedBy, c.CreatedAt, c.UpdatedAt)
	return mapError("insert category", err)
}

func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	c, err := scanCategory(r.q.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err != nil {
		return nil, mapError("get category", err)
	}
	return c, nil
}

func (r *CategoryRepo) Update(ctx context.Context, c *entity.Category) error {
	query := `
		UPDATE categories SET group_id = $2, name = $3, description = $4, is_active = $5, updated_by = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, c.ID, c.GroupID, c.Name, c.Description, c.IsActive, c.UpdatedBy, c.UpdatedAt)
	if err != nil {
		return mapError("update category", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("update category", errNoRows)
	}
	return nil
}

func (r *CategoryRepo) List(ctx context.Context, f repository.CategoryFilter) ([]*entity.Category, error) {
	var w whereBuilder
	if !f.IncludeInactive {
		w.raw("is_active")
	}
	if f.GroupID != "" {
		w.add("group_id = ?", f.GroupID)
	}
	rows, err := r.q.Query(ctx, `SELECT `+categoryColumns+` FROM categories`+w.sql()+` ORDER BY name`, w.args...)
	if err != nil {
		return nil, mapError("list categories", err)
	}
	defer rows.Close()
	out := []*entity.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, mapError("scan category", err)
		}
		out = append(out, c)
	}
	return out, mapError("list categories", rows.Err())
}

// SupplierRepo proveedores sobre PostgreSQL.
type SupplierRepo struct {
	q Querier
}

func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

const supplierColumns = `id, name, tax_id, contact_person, phone_number, email, is_active,
	created_by, updated_by, created_at, updated_at`

func scanSupplier(row interface{ Scan(...any) error }) (*entity.Supplier, error) {
	var s entity.Supplier
	err := row.Scan(&s.ID, &s.Name, &s.TaxID, &s.ContactPerson, &s.PhoneNumber, &s.Email, &s.IsActive,
		&s.CreatedBy, &s.UpdatedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	query := `
		INSERT INTO suppliers (` + supplierColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query, s.ID, s.Name, s.TaxID, s.ContactPerson, s.PhoneNumber, s.Email, s.IsActive,
		s.CreatedBy, s.UpdatedBy, s.CreatedAt, s.UpdatedAt)
	return mapError("insert supplier", err)
}

func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	s, err := scanSupplier(r.q.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id))
	if err != nil {
		return nil, mapError("get supplier", err)
	}
	return s, nil
}

func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	query := `
		UPDATE suppliers SET name = $2, tax_id = $3, contact_person = $4, phone_number = $5, email = $6,
			is_active = $7, updated_by = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, s.ID, s.Name, s.TaxID, s.ContactPerson, s.PhoneNumber, s.Email,
		s.IsActive, s.UpdatedBy, s.UpdatedAt)
	if err != nil {
		return mapError("update supplier", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("update supplier", errNoRows)
	}
	return nil
}

func (r *SupplierRepo) List(ctx context.Context, f repository.SupplierFilter) ([]*entity.Supplier, error) {
	var w whereBuilder
	if !f.IncludeInactive {
		w.raw("is_active")
	}
	if f.Search != "" {
		w.add("(name ILIKE ? OR tax_id ILIKE ?)", "%"+f.Search+"%")
	}
	p := f.Page.Normalize()
	query := `SELECT ` + supplierColumns + ` FROM suppliers` + w.sql() + ` ORDER BY name` + w.page(p.Limit, p.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapError("list suppliers", err)
	}
	defer rows.Close()
	out := []*entity.Supplier{}
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, mapError("scan supplier", err)
		}
		out = append(out, s)
	}
	return out, mapError("list suppliers", rows.Err())
}
