package entity

import "time"

// AuditInfo datos de auditoría embebidos en los registros del catálogo.
type AuditInfo struct {
	CreatedBy string
	UpdatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Touch marca la modificación por userID en el instante now.
func (a *AuditInfo) Touch(userID string, now time.Time) {
	a.UpdatedBy = userID
	a.UpdatedAt = now
}

// NewAuditInfo inicializa la auditoría de un registro recién creado.
func NewAuditInfo(userID string, now time.Time) AuditInfo {
	return AuditInfo{CreatedBy: userID, UpdatedBy: userID, CreatedAt: now, UpdatedAt: now}
}

// Lifecycle baja lógica reversible. DeletedAt nil = activo.
type Lifecycle struct {
	DeletedAt *time.Time
}

// IsDeleted indica si el registro está desactivado.
func (l Lifecycle) IsDeleted() bool { return l.DeletedAt != nil }
