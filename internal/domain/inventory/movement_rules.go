package inventory

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// EffectiveQuantity calcula la cantidad con signo que el movimiento aplica al saldo.
// EffectiveQuantity = cantidad × (unidades por paquete o 1) × factor
// Un producto que no cabe en int64 se rechaza con ErrInvalidArgument.
func EffectiveQuantity(mt *entity.MovementType, quantity int64) (int64, error) {
	multiplier := mt.PackageMultiplier()
	if multiplier < 1 {
		return 0, domain.InvalidState("movement type %s has invalid units per package %d", mt.Code, multiplier)
	}
	if quantity > math.MaxInt64/multiplier || quantity < -(math.MaxInt64/multiplier) {
		return 0, domain.InvalidArgument("quantity %d x %d units is out of range", quantity, multiplier)
	}
	return quantity * multiplier * int64(mt.Factor), nil
}

// ValidateQuantity la cantidad declarada (antes del multiplicador) debe ser positiva.
func ValidateQuantity(quantity int64) error {
	if quantity <= 0 {
		return domain.InvalidArgument("quantity must be positive, got %d", quantity)
	}
	return nil
}

// UnitPrice resuelve el precio a congelar en el movimiento: compra para entradas, venta para salidas.
// Un precio ausente o no positivo hace que el movimiento se rechace.
func UnitPrice(mt *entity.MovementType, item *entity.Item) (decimal.Decimal, error) {
	price, label := item.SalePrice, "sale price"
	if mt.IsInbound() {
		price, label = item.PurchasePrice, "purchase price"
	}
	if price == nil || !price.GreaterThan(decimal.Zero) {
		return decimal.Zero, domain.InvalidState("item %s has no valid %s", item.SKU, label)
	}
	return *price, nil
}

// ValidateMovementType reglas propias del tipo, sin mirar el resto del registro.
func ValidateMovementType(mt *entity.MovementType) error {
	if mt.Code == "" {
		return domain.InvalidArgument("movement type code is required")
	}
	if mt.Factor != entity.FactorIn && mt.Factor != entity.FactorOut {
		return domain.InvalidArgument("factor must be +1 or -1, got %d", mt.Factor)
	}
	if mt.UnitsPerPackage != nil && *mt.UnitsPerPackage < 1 {
		return domain.InvalidArgument("units per package must be at least 1, got %d", *mt.UnitsPerPackage)
	}
	if mt.Category != "" && !entity.ValidCategory(mt.Category) {
		return domain.InvalidArgument("unknown category %q", mt.Category)
	}
	if mt.ParentID != nil && *mt.ParentID == mt.ID {
		return domain.ErrCyclicReference
	}
	return nil
}

// ParentLookup devuelve el padre de un tipo de movimiento (nil si es raíz).
type ParentLookup func(id string) (parentID *string, err error)

// CheckAncestry recorre la cadena de ancestros desde parentID y falla con ErrCyclicReference
// si vuelve a encontrar id.
func CheckAncestry(id string, parentID *string, lookup ParentLookup) error {
	seen := map[string]bool{id: true}
	current := parentID
	for current != nil {
		if seen[*current] {
			return domain.ErrCyclicReference
		}
		seen[*current] = true
		next, err := lookup(*current)
		if err != nil {
			return err
		}
		current = next
	}
	return nil
}

// NextBalance saldo que resulta de aplicar delta sobre current. Las salidas sin stock
// fallan con InsufficientStockError y las sumas que desbordan con ErrInvalidArgument.
func NextBalance(current, delta int64) (int64, error) {
	if delta < 0 {
		if err := CanIssue(current, -delta); err != nil {
			return 0, err
		}
		return current + delta, nil
	}
	if current > math.MaxInt64-delta {
		return 0, domain.InvalidArgument("balance %d + %d is out of range", current, delta)
	}
	return current + delta, nil
}

// CanIssue indica si un saldo permite una salida de amount unidades (amount > 0).
func CanIssue(current, amount int64) error {
	if current-amount < 0 {
		return &domain.InsufficientStockError{Current: current, Requested: amount}
	}
	return nil
}
