package postgres

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.ItemRepository = (*ItemRepo)(nil)
	_ repository.ItemLocker     = (*ItemRepo)(nil)
)

// ItemRepo implementación de ItemRepository sobre PostgreSQL.
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador del catálogo.
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

const itemColumns = `i.id, i.branch_id, i.sku, i.ean, i.name, i.brand, i.short_description, i.status,
	i.category_id, i.supplier_id, i.purchase_price, i.sale_price, i.minimum_stock, i.unit_of_measure,
	i.created_by, i.updated_by, i.created_at, i.updated_at, i.deleted_at`

func itemDest(it *entity.Item) []any {
	return []any{
		&it.ID, &it.BranchID, &it.SKU, &it.EAN, &it.Name, &it.Brand, &it.ShortDescription, &it.Status,
		&it.CategoryID, &it.SupplierID, &it.PurchasePrice, &it.SalePrice, &it.MinimumStock, &it.UnitOfMeasure,
		&it.CreatedBy, &it.UpdatedBy, &it.CreatedAt, &it.UpdatedAt, &it.DeletedAt,
	}
}

func (r *ItemRepo) Create(ctx context.Context, it *entity.Item) error {
	query := `
		INSERT INTO items (id, branch_id, sku, ean, name, brand, short_description, status,
			category_id, supplier_id, purchase_price, sale_price, minimum_stock, unit_of_measure,
			created_by, updated_by, created_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.BranchID, it.SKU, it.EAN, it.Name, it.Brand, it.ShortDescription, it.Status,
		it.CategoryID, it.SupplierID, it.PurchasePrice, it.SalePrice, it.MinimumStock, it.UnitOfMeasure,
		it.CreatedBy, it.UpdatedBy, it.CreatedAt, it.UpdatedAt, it.DeletedAt,
	)
	return mapError("insert item", err)
}

func (r *ItemRepo) getBy(ctx context.Context, op, column, value string) (*entity.Item, error) {
	var it entity.Item
	err := r.q.QueryRow(ctx, `SELECT `+itemColumns+` FROM items i WHERE i.`+column+` = $1`, value).Scan(itemDest(&it)...)
	if err != nil {
		return nil, mapError(op, err)
	}
	return &it, nil
}

func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	return r.getBy(ctx, "get item", "id", id)
}

// GetForShare FOR SHARE: convive con otros movimientos del ítem y espera a una baja en curso.
func (r *ItemRepo) GetForShare(ctx context.Context, id string) (*entity.Item, error) {
	return r.lockRow(ctx, "lock item for share", id, "FOR SHARE")
}

// GetForUpdate FOR UPDATE: espera a que terminen los movimientos en curso del ítem.
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	return r.lockRow(ctx, "lock item for update", id, "FOR UPDATE")
}

func (r *ItemRepo) lockRow(ctx context.Context, op, id, mode string) (*entity.Item, error) {
	var it entity.Item
	err := r.q.QueryRow(ctx, `SELECT `+itemColumns+` FROM items i WHERE i.id = $1 `+mode, id).Scan(itemDest(&it)...)
	if err != nil {
		return nil, mapError(op, err)
	}
	return &it, nil
}

func (r *ItemRepo) GetBySKU(ctx context.Context, sku string) (*entity.Item, error) {
	return r.getBy(ctx, "get item by sku", "sku", sku)
}

func (r *ItemRepo) GetByEAN(ctx context.Context, ean string) (*entity.Item, error) {
	return r.getBy(ctx, "get item by ean", "ean", ean)
}

// Update actualiza los datos del catálogo. La cantidad no vive aquí: solo el libro la mueve.
func (r *ItemRepo) Update(ctx context.Context, it *entity.Item) error {
	query := `
		UPDATE items SET sku = $2, ean = $3, name = $4, brand = $5, short_description = $6, status = $7,
			category_id = $8, supplier_id = $9, purchase_price = $10, sale_price = $11,
			minimum_stock = $12, unit_of_measure = $13, updated_by = $14, updated_at = $15
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		it.ID, it.SKU, it.EAN, it.Name, it.Brand, it.ShortDescription, it.Status,
		it.CategoryID, it.SupplierID, it.PurchasePrice, it.SalePrice, it.MinimumStock, it.UnitOfMeasure,
		it.UpdatedBy, it.UpdatedAt,
	)
	if err != nil {
		return mapError("update item", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("update item", errNoRows)
	}
	return nil
}

func (r *ItemRepo) SetDeletedAt(ctx context.Context, id string, deletedAt *time.Time, userID string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE items SET deleted_at = $2, updated_by = $3, updated_at = now() WHERE id = $1`,
		id, deletedAt, userID)
	if err != nil {
		return mapError("set item deleted_at", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("set item deleted_at", errNoRows)
	}
	return nil
}

// List devuelve los ítems con su total sumado sobre todas las locaciones.
func (r *ItemRepo) List(ctx context.Context, f repository.ItemFilter) ([]*entity.ItemStock, error) {
	if f.Scope.IsEmpty() {
		return []*entity.ItemStock{}, nil
	}
	var w whereBuilder
	if f.Scope.Restricted {
		w.add("i.branch_id = ANY(?)", f.Scope.BranchIDs)
	}
	if !f.IncludeDeleted {
		w.raw("i.deleted_at IS NULL")
	}
	if f.Status != "" {
		w.add("i.status = ?", f.Status)
	}
	if f.CategoryID != "" {
		w.add("i.category_id = ?", f.CategoryID)
	}
	if f.SupplierID != "" {
		w.add("i.supplier_id = ?", f.SupplierID)
	}
	if f.LocationID != "" {
		w.add("EXISTS (SELECT 1 FROM stock_balances sb WHERE sb.item_id = i.id AND sb.location_id = ?)", f.LocationID)
	}
	if f.Search != "" {
		w.add("(i.sku ILIKE ? OR i.name ILIKE ? OR i.brand ILIKE ?)", "%"+f.Search+"%")
	}
	if f.LowStockOnly {
		w.raw("COALESCE(t.total, 0) < i.minimum_stock")
	}
	p := f.Page.Normalize()
	query := `
		SELECT ` + itemColumns + `, COALESCE(t.total, 0)
		FROM items i
		LEFT JOIN (
			SELECT item_id, SUM(quantity)::BIGINT AS total FROM stock_balances GROUP BY item_id
		) t ON t.item_id = i.id` + w.sql() + `
		ORDER BY i.sku` + w.page(p.Limit, p.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapError("list items", err)
	}
	defer rows.Close()
	out := []*entity.ItemStock{}
	for rows.Next() {
		var row entity.ItemStock
		dest := append(itemDest(&row.Item), &row.TotalQuantity)
		if err := rows.Scan(dest...); err != nil {
			return nil, mapError("scan item", err)
		}
		out = append(out, &row)
	}
	return out, mapError("list items", rows.Err())
}

// Facets valores distintos de categoría, proveedor y estado en los ítems visibles.
func (r *ItemRepo) Facets(ctx context.Context, scope repository.BranchScope, includeDeleted bool) (*entity.ItemFacets, error) {
	facets := &entity.ItemFacets{CategoryIDs: []string{}, SupplierIDs: []string{}, Statuses: []string{}}
	if scope.IsEmpty() {
		return facets, nil
	}
	var w whereBuilder
	if scope.Restricted {
		w.add("i.branch_id = ANY(?)", scope.BranchIDs)
	}
	if !includeDeleted {
		w.raw("i.deleted_at IS NULL")
	}
	query := `
		SELECT
			COALESCE(array_agg(DISTINCT i.category_id ORDER BY i.category_id) FILTER (WHERE i.category_id IS NOT NULL), '{}'),
			COALESCE(array_agg(DISTINCT i.supplier_id ORDER BY i.supplier_id) FILTER (WHERE i.supplier_id IS NOT NULL), '{}'),
			COALESCE(array_agg(DISTINCT i.status ORDER BY i.status), '{}')
		FROM items i` + w.sql()
	err := r.q.QueryRow(ctx, query, w.args...).Scan(&facets.CategoryIDs, &facets.SupplierIDs, &facets.Statuses)
	if err != nil {
		return nil, mapError("item facets", err)
	}
	return facets, nil
}
