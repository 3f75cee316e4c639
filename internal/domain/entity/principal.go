package entity

// Principal identidad del llamador con sus concesiones de filial.
// Un administrador tiene acceso implícito a todas las filiales.
type Principal struct {
	UserID    string
	IsAdmin   bool
	BranchIDs []string
	SectorIDs []string
}

// Grants indica si el principal tiene acceso a branchID.
func (p Principal) Grants(branchID string) bool {
	if p.IsAdmin {
		return true
	}
	for _, id := range p.BranchIDs {
		if id == branchID {
			return true
		}
	}
	return false
}
