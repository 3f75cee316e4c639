package repository

// BranchScope restricción de filiales que los adaptadores aplican a cada consulta.
// Restricted=false significa sin restricción (administrador). Restricted=true con
// BranchIDs vacío significa que no hay nada visible: el resultado es vacío, no un error.
type BranchScope struct {
	Restricted bool
	BranchIDs  []string
}

// Unrestricted alcance sin restricción.
func Unrestricted() BranchScope { return BranchScope{} }

// Only alcance limitado a las filiales indicadas.
func Only(branchIDs ...string) BranchScope {
	return BranchScope{Restricted: true, BranchIDs: append([]string{}, branchIDs...)}
}

// IsEmpty indica que el alcance no deja ver ninguna filial.
func (s BranchScope) IsEmpty() bool {
	return s.Restricted && len(s.BranchIDs) == 0
}

// Contains indica si branchID queda dentro del alcance.
func (s BranchScope) Contains(branchID string) bool {
	if !s.Restricted {
		return true
	}
	for _, id := range s.BranchIDs {
		if id == branchID {
			return true
		}
	}
	return false
}

// Page paginación por límite y desplazamiento.
type Page struct {
	Limit  int
	Offset int
}

// Normalize aplica los valores por defecto (20) y el máximo (100).
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
