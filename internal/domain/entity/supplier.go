package entity

// Supplier proveedor de ítems. Dato de referencia compartido por todas las filiales.
type Supplier struct {
	ID            string
	Name          string
	TaxID         string
	ContactPerson string
	PhoneNumber   string
	Email         string
	IsActive      bool
	AuditInfo
}
