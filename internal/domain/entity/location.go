package entity

// Tipos de locación.
const (
	LocationTypeReceiving  = "RECEIVING"
	LocationTypeStorage    = "STORAGE"
	LocationTypePicking    = "PICKING"
	LocationTypeDispatch   = "DISPATCH"
	LocationTypeStorefront = "STOREFRONT"
)

// Location representa un lugar físico de una filial. Code es único dentro de la filial.
type Location struct {
	ID       string
	BranchID string
	Code     string // ej: A01-P03-B02
	Name     string
	Type     string
	IsActive bool
	AuditInfo
}

// ValidLocationType indica si t es uno de los tipos conocidos.
func ValidLocationType(t string) bool {
	switch t {
	case LocationTypeReceiving, LocationTypeStorage, LocationTypePicking, LocationTypeDispatch, LocationTypeStorefront:
		return true
	}
	return false
}
