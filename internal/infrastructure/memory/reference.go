package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ── Categorías ───────────────────────────────────────────────────────────────

// CategoryRepo categorías y grupos en memoria.
type CategoryRepo struct{ s *Store }

// Categories devuelve el repositorio de categorías.
func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{s: s} }

func (r *CategoryRepo) groupNameTaken(g *entity.CategoryGroup) bool {
	for _, existing := range r.s.groups {
		if existing.ID != g.ID && strings.EqualFold(existing.Name, g.Name) {
			return true
		}
	}
	return false
}

func (r *CategoryRepo) CreateGroup(_ context.Context, g *entity.CategoryGroup) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.groups[g.ID]; ok || r.groupNameTaken(g) {
		return domain.ErrDuplicate
	}
	r.s.groups[g.ID] = *g
	return nil
}

func (r *CategoryRepo) GetGroup(_ context.Context, id string) (*entity.CategoryGroup, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	g, ok := r.s.groups[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &g, nil
}

func (r *CategoryRepo) UpdateGroup(_ context.Context, g *entity.CategoryGroup) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.groups[g.ID]; !ok {
		return domain.ErrNotFound
	}
	if r.groupNameTaken(g) {
		return domain.ErrDuplicate
	}
	r.s.groups[g.ID] = *g
	return nil
}

func (r *CategoryRepo) ListGroups(_ context.Context, includeInactive bool) ([]*entity.CategoryGroup, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.CategoryGroup{}
	for _, g := range r.s.groups {
		g := g
		if includeInactive || g.IsActive {
			out = append(out, &g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CategoryRepo) check(c *entity.Category) error {
	if c.GroupID != nil {
		if _, ok := r.s.groups[*c.GroupID]; !ok {
			return domain.InvalidArgument("grupo de categorías %s inexistente", *c.GroupID)
		}
	}
	for _, existing := range r.s.cats {
		if existing.ID != c.ID && strings.EqualFold(existing.Name, c.Name) {
			return domain.ErrDuplicate
		}
	}
	return nil
}

func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.cats[c.ID]; ok {
		return domain.ErrDuplicate
	}
	if err := r.check(c); err != nil {
		return err
	}
	r.s.cats[c.ID] = *c
	return nil
}

func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.cats[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r *CategoryRepo) Update(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.cats[c.ID]; !ok {
		return domain.ErrNotFound
	}
	if err := r.check(c); err != nil {
		return err
	}
	r.s.cats[c.ID] = *c
	return nil
}

func (r *CategoryRepo) List(_ context.Context, f repository.CategoryFilter) ([]*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.Category{}
	for _, c := range r.s.cats {
		c := c
		if !f.IncludeInactive && !c.IsActive {
			continue
		}
		if f.GroupID != "" && (c.GroupID == nil || *c.GroupID != f.GroupID) {
			continue
		}
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ── Proveedores ──────────────────────────────────────────────────────────────

// SupplierRepo proveedores en memoria.
type SupplierRepo struct{ s *Store }

// Suppliers devuelve el repositorio de proveedores.
func (s *Store) Suppliers() *SupplierRepo { return &SupplierRepo{s: s} }

func (r *SupplierRepo) nameTaken(sup *entity.Supplier) bool {
	for _, existing := range r.s.suppliers {
		if existing.ID != sup.ID && strings.EqualFold(existing.Name, sup.Name) {
			return true
		}
	}
	return false
}

func (r *SupplierRepo) Create(_ context.Context, sup *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.suppliers[sup.ID]; ok || r.nameTaken(sup) {
		return domain.ErrDuplicate
	}
	r.s.suppliers[sup.ID] = *sup
	return nil
}

func (r *SupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sup, ok := r.s.suppliers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &sup, nil
}

func (r *SupplierRepo) Update(_ context.Context, sup *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.suppliers[sup.ID]; !ok {
		return domain.ErrNotFound
	}
	if r.nameTaken(sup) {
		return domain.ErrDuplicate
	}
	r.s.suppliers[sup.ID] = *sup
	return nil
}

func (r *SupplierRepo) List(_ context.Context, f repository.SupplierFilter) ([]*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := []*entity.Supplier{}
	for _, sup := range r.s.suppliers {
		sup := sup
		if !f.IncludeInactive && !sup.IsActive {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(sup.Name), search) &&
			!strings.Contains(strings.ToLower(sup.TaxID), search) {
			continue
		}
		out = append(out, &sup)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	p := f.Page.Normalize()
	return paginate(out, p.Limit, p.Offset), nil
}
