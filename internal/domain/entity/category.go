package entity

// CategoryGroup agrupa categorías del catálogo. No pertenece a ninguna filial.
type CategoryGroup struct {
	ID          string
	Name        string // único sin distinguir mayúsculas
	Description string
	IsActive    bool
	AuditInfo
}

// Category clasificación de ítems, opcionalmente dentro de un grupo.
type Category struct {
	ID          string
	GroupID     *string
	Name        string // único sin distinguir mayúsculas
	Description string
	IsActive    bool
	AuditInfo
}
