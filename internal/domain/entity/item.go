package entity

import "github.com/shopspring/decimal"

// Estados de un ítem del catálogo.
const (
	ItemStatusActive       = "ACTIVE"
	ItemStatusDiscontinued = "DISCONTINUED"
	ItemStatusInactive     = "INACTIVE"
)

var itemStatusLabels = map[string]string{
	ItemStatusActive:       "Activo",
	ItemStatusDiscontinued: "Descontinuado",
	ItemStatusInactive:     "Inactivo",
}

// ItemStatusLabel nombre para mostrar de un estado; el propio código si no se conoce.
func ItemStatusLabel(status string) string {
	if label, ok := itemStatusLabels[status]; ok {
		return label
	}
	return status
}

// Item representa un artículo del catálogo, ligado a una sola filial.
// Los precios son opcionales en borrador; el libro de movimientos los exige al registrar.
type Item struct {
	ID               string
	BranchID         string
	SKU              string  // único
	EAN              *string // EAN-13 opcional, único
	Name             string
	Brand            string
	ShortDescription string
	Status           string
	CategoryID       *string
	SupplierID       *string
	PurchasePrice    *decimal.Decimal
	SalePrice        *decimal.Decimal
	MinimumStock     int64
	UnitOfMeasure    string
	AuditInfo
	Lifecycle
}

// ItemStock ítem con sus atributos derivados (no persistidos).
type ItemStock struct {
	Item
	TotalQuantity int64
}

// IsLowStock total por debajo del mínimo.
func (s ItemStock) IsLowStock() bool {
	return s.TotalQuantity < s.MinimumStock
}

// ItemFacets valores distintos presentes en un conjunto de ítems (opciones de filtro).
type ItemFacets struct {
	CategoryIDs []string
	SupplierIDs []string
	Statuses    []string
}
