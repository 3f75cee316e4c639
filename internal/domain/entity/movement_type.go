package entity

// Factores de movimiento.
const (
	FactorIn  = 1
	FactorOut = -1
)

// Categorías de tipo de movimiento.
const (
	CategoryInbound    = "inbound"
	CategoryOutbound   = "outbound"
	CategoryAdjustment = "adjustment"
	CategoryTransfer   = "transfer"
	CategoryProduction = "production"
	CategoryQuality    = "quality"
)

// Códigos de sistema usados por los traslados.
const (
	MovementCodeTransferOut = "TRANSFER_OUT"
	MovementCodeTransferIn  = "TRANSFER_IN"
)

// MovementType describe cómo una clase de movimiento afecta el saldo.
type MovementType struct {
	ID               string
	Code             string // único
	Name             string
	Description      string
	Factor           int  // +1 entrada, -1 salida
	UnitsPerPackage  *int // nil = 1
	Category         string
	ParentID         *string
	RequiresApproval bool
	AffectsFinance   bool
	IsActive         bool
	AuditInfo
}

// PackageMultiplier devuelve UnitsPerPackage o 1 si no está definido.
// La misma regla aplica a cualquier factor.
func (t *MovementType) PackageMultiplier() int64 {
	if t.UnitsPerPackage == nil {
		return 1
	}
	return int64(*t.UnitsPerPackage)
}

// IsInbound factor positivo.
func (t *MovementType) IsInbound() bool { return t.Factor > 0 }

// ValidCategory indica si c es una categoría conocida.
func ValidCategory(c string) bool {
	switch c {
	case CategoryInbound, CategoryOutbound, CategoryAdjustment, CategoryTransfer, CategoryProduction, CategoryQuality:
		return true
	}
	return false
}
