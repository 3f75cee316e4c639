// Package access restringe las consultas y escrituras a las filiales concedidas al principal.
//
// Reglas:
//   - Administrador: sin restricción, salvo que pida una filial concreta.
//   - Usuario sin concesiones: resultado vacío, nunca error.
//   - Búsqueda de detalle fuera de alcance: ErrNotFound, igual que un id inexistente.
//
// Uso:
//
//	scope := filter.Scope(principal, query.BranchID)
//	items, err := repo.List(ctx, repository.ItemFilter{Scope: scope})
package access

import (
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TenancyDefaults filial y sector por defecto de la instalación.
// Se inyectan en el filtro y en el alta de usuarios.
type TenancyDefaults struct {
	DefaultBranchID string
	DefaultSectorID string
}

// Filter aplica el alcance por filial.
type Filter struct {
	defaults TenancyDefaults
}

// NewFilter construye el filtro con los valores por defecto de la instalación.
func NewFilter(defaults TenancyDefaults) *Filter {
	return &Filter{defaults: defaults}
}

// Defaults devuelve la configuración de filial/sector por defecto.
func (f *Filter) Defaults() TenancyDefaults { return f.defaults }

// Scope estrecha una consulta de listado. requestedBranchID vacío = todas las visibles.
func (f *Filter) Scope(p entity.Principal, requestedBranchID string) repository.BranchScope {
	if p.IsAdmin {
		if requestedBranchID == "" {
			return repository.Unrestricted()
		}
		return repository.Only(requestedBranchID)
	}
	if requestedBranchID == "" {
		return repository.Only(p.BranchIDs...)
	}
	if p.Grants(requestedBranchID) {
		return repository.Only(requestedBranchID)
	}
	return repository.Only()
}

// CheckVisible devuelve ErrNotFound si el registro de branchID no es visible.
func (f *Filter) CheckVisible(p entity.Principal, branchID string) error {
	if !p.Grants(branchID) {
		return domain.ErrNotFound
	}
	return nil
}

// IncludeDeleted solo un administrador puede ver ítems desactivados.
func (f *Filter) IncludeDeleted(p entity.Principal, requested bool) bool {
	return requested && p.IsAdmin
}

// ResolveWriteBranch decide en qué filial se crea un registro.
// Con filial explícita se exige que sea visible; sin ella se usa la filial por defecto
// (si está concedida) o la única concedida.
func (f *Filter) ResolveWriteBranch(p entity.Principal, requestedBranchID string) (string, error) {
	if requestedBranchID != "" {
		if err := f.CheckVisible(p, requestedBranchID); err != nil {
			return "", err
		}
		return requestedBranchID, nil
	}
	if f.defaults.DefaultBranchID != "" && p.Grants(f.defaults.DefaultBranchID) {
		return f.defaults.DefaultBranchID, nil
	}
	if !p.IsAdmin && len(p.BranchIDs) == 1 {
		return p.BranchIDs[0], nil
	}
	return "", domain.InvalidArgument("branch_id is required")
}
