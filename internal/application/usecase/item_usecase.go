package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/access"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/ean13"
)

const (
	defaultMinimumStock  = 10
	defaultUnitOfMeasure = "UN"
)

// ItemUseCase casos de uso del catálogo. El stock solo cambia vía movimientos; la baja es
// lógica y reversible y nunca toca saldos ni movimientos.
type ItemUseCase struct {
	repo       repository.ItemRepository
	branches   repository.BranchRepository
	categories repository.CategoryRepository
	suppliers  repository.SupplierRepository
	balances   repository.StockBalanceReader
	txRunner   inventory.TxRunner
	access     *access.Filter
}

// ItemReferences repositorios de los datos de referencia que un ítem puede apuntar.
type ItemReferences struct {
	Categories repository.CategoryRepository
	Suppliers  repository.SupplierRepository
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(
	repo repository.ItemRepository,
	branches repository.BranchRepository,
	refs ItemReferences,
	balances repository.StockBalanceReader,
	txRunner inventory.TxRunner,
	filter *access.Filter,
) *ItemUseCase {
	return &ItemUseCase{
		repo:       repo,
		branches:   branches,
		categories: refs.Categories,
		suppliers:  refs.Suppliers,
		balances:   balances,
		txRunner:   txRunner,
		access:     filter,
	}
}

// Create crea un ítem. Los precios pueden faltar: se exigen al registrar movimientos.
func (uc *ItemUseCase) Create(ctx context.Context, p entity.Principal, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	branchID, err := uc.access.ResolveWriteBranch(p, in.BranchID)
	if err != nil {
		return nil, err
	}
	branch, err := uc.branches.GetByID(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if !branch.IsActive {
		return nil, domain.InvalidState("branch %s is inactive", branch.Name)
	}

	sku := strings.TrimSpace(in.SKU)
	if sku == "" {
		return nil, domain.InvalidArgument("sku is required")
	}
	if existing, _ := uc.repo.GetBySKU(ctx, sku); existing != nil {
		return nil, domain.ErrDuplicate
	}
	ean, err := uc.checkEAN(ctx, "", in.EAN)
	if err != nil {
		return nil, err
	}
	if err := validatePrices(in.PurchasePrice, in.SalePrice); err != nil {
		return nil, err
	}
	categoryID, err := uc.checkCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	supplierID, err := uc.checkSupplier(ctx, in.SupplierID)
	if err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = entity.ItemStatusActive
	}
	minimum := int64(defaultMinimumStock)
	if in.MinimumStock != nil {
		minimum = *in.MinimumStock
	}
	if minimum < 0 {
		return nil, domain.InvalidArgument("minimum stock cannot be negative")
	}
	uom := in.UnitOfMeasure
	if uom == "" {
		uom = defaultUnitOfMeasure
	}

	item := &entity.Item{
		ID:               uuid.New().String(),
		BranchID:         branchID,
		SKU:              sku,
		EAN:              ean,
		Name:             in.Name,
		Brand:            in.Brand,
		ShortDescription: in.ShortDescription,
		Status:           status,
		CategoryID:       categoryID,
		SupplierID:       supplierID,
		PurchasePrice:    in.PurchasePrice,
		SalePrice:        in.SalePrice,
		MinimumStock:     minimum,
		UnitOfMeasure:    uom,
		AuditInfo:        entity.NewAuditInfo(p.UserID, time.Now().UTC()),
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	out := dto.FromItemStock(&entity.ItemStock{Item: *item})
	return &out, nil
}

// GetByID obtiene un ítem visible con su total y bandera de stock bajo.
func (uc *ItemUseCase) GetByID(ctx context.Context, p entity.Principal, id string) (*dto.ItemResponse, error) {
	item, err := uc.visible(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return uc.withTotal(ctx, item)
}

// Update actualiza un ítem. Cantidad y saldos no se tocan aquí.
func (uc *ItemUseCase) Update(ctx context.Context, p entity.Principal, id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := uc.visible(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if in.SKU != nil {
		sku := strings.TrimSpace(*in.SKU)
		if sku == "" {
			return nil, domain.InvalidArgument("sku is required")
		}
		if sku != item.SKU {
			if existing, _ := uc.repo.GetBySKU(ctx, sku); existing != nil {
				return nil, domain.ErrDuplicate
			}
			item.SKU = sku
		}
	}
	if in.EAN != nil {
		ean, err := uc.checkEAN(ctx, item.ID, in.EAN)
		if err != nil {
			return nil, err
		}
		item.EAN = ean
	}
	if err := validatePrices(in.PurchasePrice, in.SalePrice); err != nil {
		return nil, err
	}
	if in.PurchasePrice != nil {
		item.PurchasePrice = in.PurchasePrice
	}
	if in.SalePrice != nil {
		item.SalePrice = in.SalePrice
	}
	if in.Name != nil {
		item.Name = *in.Name
	}
	if in.Brand != nil {
		item.Brand = *in.Brand
	}
	if in.ShortDescription != nil {
		item.ShortDescription = *in.ShortDescription
	}
	if in.Status != nil {
		item.Status = *in.Status
	}
	if in.CategoryID != nil && !sameRef(item.CategoryID, *in.CategoryID) {
		if item.CategoryID, err = uc.checkCategory(ctx, in.CategoryID); err != nil {
			return nil, err
		}
	}
	if in.SupplierID != nil && !sameRef(item.SupplierID, *in.SupplierID) {
		if item.SupplierID, err = uc.checkSupplier(ctx, in.SupplierID); err != nil {
			return nil, err
		}
	}
	if in.MinimumStock != nil {
		if *in.MinimumStock < 0 {
			return nil, domain.InvalidArgument("minimum stock cannot be negative")
		}
		item.MinimumStock = *in.MinimumStock
	}
	if in.UnitOfMeasure != nil {
		item.UnitOfMeasure = *in.UnitOfMeasure
	}
	item.Touch(p.UserID, time.Now().UTC())
	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return uc.withTotal(ctx, item)
}

// List lista ítems visibles con sus totales derivados.
func (uc *ItemUseCase) List(ctx context.Context, p entity.Principal, in dto.ItemListRequest) (*dto.ListResponse[dto.ItemResponse], error) {
	in.DefaultPage()
	list, err := uc.repo.List(ctx, repository.ItemFilter{
		Scope:          uc.access.Scope(p, in.BranchID),
		LocationID:     in.LocationID,
		Status:         in.Status,
		CategoryID:     in.CategoryID,
		SupplierID:     in.SupplierID,
		Search:         in.Search,
		LowStockOnly:   in.LowStock,
		IncludeDeleted: uc.access.IncludeDeleted(p, in.IncludeDeleted),
		Page:           repository.Page{Limit: in.Limit, Offset: in.Offset},
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, dto.FromItemStock(it))
	}
	return &dto.ListResponse[dto.ItemResponse]{Items: items, Page: dto.PageResponse{Limit: in.Limit, Offset: in.Offset}}, nil
}

// FilterOptions categorías, proveedores y estados presentes en los ítems que el usuario ve.
func (uc *ItemUseCase) FilterOptions(ctx context.Context, p entity.Principal, in dto.ItemListRequest) (*dto.FilterOptionsResponse, error) {
	facets, err := uc.repo.Facets(ctx, uc.access.Scope(p, in.BranchID), uc.access.IncludeDeleted(p, in.IncludeDeleted))
	if err != nil {
		return nil, err
	}
	out := &dto.FilterOptionsResponse{
		Categories: make([]dto.ReferenceOption, 0, len(facets.CategoryIDs)),
		Suppliers:  make([]dto.ReferenceOption, 0, len(facets.SupplierIDs)),
		Statuses:   make([]dto.StatusOption, 0, len(facets.Statuses)),
	}
	for _, id := range facets.CategoryIDs {
		c, err := uc.categories.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out.Categories = append(out.Categories, dto.ReferenceOption{ID: c.ID, Name: c.Name})
	}
	for _, id := range facets.SupplierIDs {
		s, err := uc.suppliers.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out.Suppliers = append(out.Suppliers, dto.ReferenceOption{ID: s.ID, Name: s.Name})
	}
	for _, status := range facets.Statuses {
		out.Statuses = append(out.Statuses, dto.StatusOption{Value: status, Label: entity.ItemStatusLabel(status)})
	}
	sort.Slice(out.Categories, func(i, j int) bool { return out.Categories[i].Name < out.Categories[j].Name })
	sort.Slice(out.Suppliers, func(i, j int) bool { return out.Suppliers[i].Name < out.Suppliers[j].Name })
	return out, nil
}

// Deactivate baja lógica. Falla con InvalidState si el ítem aún tiene stock. El total se
// suma con el ítem bloqueado en exclusiva, así ningún movimiento en curso queda fuera.
func (uc *ItemUseCase) Deactivate(ctx context.Context, p entity.Principal, id string) error {
	item, err := uc.visible(ctx, p, id)
	if err != nil {
		return err
	}
	if item.IsDeleted() {
		return nil
	}
	return uc.txRunner.Run(ctx, func(items repository.ItemLocker, balances repository.StockBalanceRepository, _ repository.StockMovementRepository) error {
		locked, err := items.GetForUpdate(ctx, item.ID)
		if err != nil {
			return err
		}
		if locked.IsDeleted() {
			return nil
		}
		total, err := balances.SumByItem(ctx, item.ID)
		if err != nil {
			return err
		}
		if total > 0 {
			return domain.InvalidState("item has positive stock")
		}
		now := time.Now().UTC()
		return items.SetDeletedAt(ctx, item.ID, &now, p.UserID)
	})
}

// Restore revierte la baja lógica. Solo quien puede ver ítems desactivados puede restaurarlos.
func (uc *ItemUseCase) Restore(ctx context.Context, p entity.Principal, id string) (*dto.ItemResponse, error) {
	item, err := uc.visible(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if item.IsDeleted() {
		if err := uc.repo.SetDeletedAt(ctx, item.ID, nil, p.UserID); err != nil {
			return nil, err
		}
		item.DeletedAt = nil
	}
	return uc.withTotal(ctx, item)
}

// visible resuelve el ítem; los desactivados solo existen para el administrador.
func (uc *ItemUseCase) visible(ctx context.Context, p entity.Principal, id string) (*entity.Item, error) {
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.access.CheckVisible(p, item.BranchID); err != nil {
		return nil, err
	}
	if item.IsDeleted() && !uc.access.IncludeDeleted(p, true) {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (uc *ItemUseCase) withTotal(ctx context.Context, item *entity.Item) (*dto.ItemResponse, error) {
	total, err := uc.balances.SumByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	out := dto.FromItemStock(&entity.ItemStock{Item: *item, TotalQuantity: total})
	return &out, nil
}

// checkEAN valida checksum y unicidad. Cadena vacía borra el EAN.
func (uc *ItemUseCase) checkEAN(ctx context.Context, itemID string, raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	code := strings.TrimSpace(*raw)
	if code == "" {
		return nil, nil
	}
	if err := ean13.Validate(code); err != nil {
		return nil, domain.InvalidArgument("%s", err.Error())
	}
	if existing, _ := uc.repo.GetByEAN(ctx, code); existing != nil && existing.ID != itemID {
		return nil, domain.ErrDuplicate
	}
	return &code, nil
}

// checkCategory nil o vacío: sin categoría. Solo se asignan categorías activas.
func (uc *ItemUseCase) checkCategory(ctx context.Context, raw *string) (*string, error) {
	id := refID(raw)
	if id == "" {
		return nil, nil
	}
	c, err := uc.categories.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.InvalidArgument("category %s does not exist", id)
	}
	if err != nil {
		return nil, err
	}
	if !c.IsActive {
		return nil, domain.InvalidArgument("category %s is inactive", c.Name)
	}
	return &id, nil
}

func (uc *ItemUseCase) checkSupplier(ctx context.Context, raw *string) (*string, error) {
	id := refID(raw)
	if id == "" {
		return nil, nil
	}
	s, err := uc.suppliers.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.InvalidArgument("supplier %s does not exist", id)
	}
	if err != nil {
		return nil, err
	}
	if !s.IsActive {
		return nil, domain.InvalidArgument("supplier %s is inactive", s.Name)
	}
	return &id, nil
}

func refID(raw *string) string {
	if raw == nil {
		return ""
	}
	return strings.TrimSpace(*raw)
}

// sameRef la actualización no cambia la referencia (una inactiva se puede conservar).
func sameRef(current *string, raw string) bool {
	id := strings.TrimSpace(raw)
	if current == nil {
		return id == ""
	}
	return *current == id
}

// Los precios se guardan como NUMERIC(14,2).
const priceScale = 2

var priceLimit = decimal.New(1, 12)

func validatePrices(prices ...*decimal.Decimal) error {
	for _, p := range prices {
		if p == nil {
			continue
		}
		if p.IsNegative() {
			return domain.InvalidArgument("prices cannot be negative")
		}
		if !p.Equal(p.Truncate(priceScale)) {
			return domain.InvalidArgument("price %s has more than %d decimal places", p.String(), priceScale)
		}
		if p.GreaterThanOrEqual(priceLimit) {
			return domain.InvalidArgument("price %s is out of range", p.String())
		}
	}
	return nil
}
