package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ItemFilter filtro para listar ítems con sus totales derivados.
type ItemFilter struct {
	Scope          BranchScope
	LocationID     string // ítems con fila de saldo en la locación
	Status         string
	CategoryID     string
	SupplierID     string
	Search         string // SKU, nombre o marca
	LowStockOnly   bool
	IncludeDeleted bool
	Page
}

// ItemRepository define el puerto de persistencia para el catálogo.
// GetByID devuelve también ítems desactivados (el libro sigue resolviéndolos).
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Item, error)
	GetByEAN(ctx context.Context, ean string) (*entity.Item, error)
	Update(ctx context.Context, item *entity.Item) error
	SetDeletedAt(ctx context.Context, id string, deletedAt *time.Time, userID string) error
	List(ctx context.Context, filter ItemFilter) ([]*entity.ItemStock, error)
	// Facets categorías, proveedores y estados presentes en los ítems del alcance.
	Facets(ctx context.Context, scope BranchScope, includeDeleted bool) (*entity.ItemFacets, error)
}

// ItemLocker bloqueos de fila del ítem dentro de una transacción del libro. Todo
// movimiento toma el bloqueo compartido antes que los de saldo; la baja toma el exclusivo.
type ItemLocker interface {
	GetForShare(ctx context.Context, id string) (*entity.Item, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Item, error)
	SetDeletedAt(ctx context.Context, id string, deletedAt *time.Time, userID string) error
}
