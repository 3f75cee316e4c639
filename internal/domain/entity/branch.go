package entity

// Branch representa una filial: frontera de tenencia del sistema.
// Nunca se borra físicamente mientras esté referenciada; se desactiva.
type Branch struct {
	ID       string
	Name     string
	IsActive bool
	AuditInfo
}

// Sector agrupa usuarios dentro de una filial (no guarda stock).
type Sector struct {
	ID       string
	BranchID string
	Name     string
	IsActive bool
	AuditInfo
}
