package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.BranchRepository       = (*BranchRepo)(nil)
	_ repository.LocationRepository     = (*LocationRepo)(nil)
	_ repository.ItemRepository         = (*ItemRepo)(nil)
	_ repository.MovementTypeRepository = (*MovementTypeRepo)(nil)
	_ repository.UserRepository         = (*UserRepo)(nil)
	_ repository.CategoryRepository     = (*CategoryRepo)(nil)
	_ repository.SupplierRepository     = (*SupplierRepo)(nil)
)

// ── Filiales y sectores ──────────────────────────────────────────────────────

// BranchRepo filiales y sectores en memoria.
type BranchRepo struct{ s *Store }

// Branches devuelve el repositorio de filiales.
func (s *Store) Branches() *BranchRepo { return &BranchRepo{s: s} }

func (r *BranchRepo) Create(_ context.Context, b *entity.Branch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.branches[b.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.branches[b.ID] = *b
	return nil
}

func (r *BranchRepo) GetByID(_ context.Context, id string) (*entity.Branch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.branches[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (r *BranchRepo) Update(_ context.Context, b *entity.Branch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.branches[b.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.branches[b.ID] = *b
	return nil
}

func (r *BranchRepo) List(_ context.Context, f repository.BranchFilter) ([]*entity.Branch, error) {
	if f.Scope.IsEmpty() {
		return []*entity.Branch{}, nil
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Branch, 0, len(r.s.branches))
	for _, b := range r.s.branches {
		b := b
		if !f.Scope.Contains(b.ID) || (!f.IncludeInactive && !b.IsActive) {
			continue
		}
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	p := f.Page.Normalize()
	return paginate(out, p.Limit, p.Offset), nil
}

func (r *BranchRepo) CreateSector(_ context.Context, sec *entity.Sector) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.branches[sec.BranchID]; !ok {
		return domain.ErrNotFound
	}
	for _, existing := range r.s.sectors {
		if existing.BranchID == sec.BranchID && strings.EqualFold(existing.Name, sec.Name) {
			return domain.ErrDuplicate
		}
	}
	r.s.sectors[sec.ID] = *sec
	return nil
}

func (r *BranchRepo) GetSector(_ context.Context, id string) (*entity.Sector, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sec, ok := r.s.sectors[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &sec, nil
}

func (r *BranchRepo) ListSectors(_ context.Context, branchID string) ([]*entity.Sector, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.Sector{}
	for _, sec := range r.s.sectors {
		sec := sec
		if sec.BranchID == branchID {
			out = append(out, &sec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ── Locaciones ───────────────────────────────────────────────────────────────

// LocationRepo locaciones en memoria.
type LocationRepo struct{ s *Store }

// Locations devuelve el repositorio de locaciones.
func (s *Store) Locations() *LocationRepo { return &LocationRepo{s: s} }

func (r *LocationRepo) Create(_ context.Context, l *entity.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.locations {
		if existing.BranchID == l.BranchID && existing.Code == l.Code {
			return domain.ErrDuplicate
		}
	}
	r.s.locations[l.ID] = *l
	return nil
}

func (r *LocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.locations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &l, nil
}

func (r *LocationRepo) GetByBranchAndCode(_ context.Context, branchID, code string) (*entity.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, l := range r.s.locations {
		if l.BranchID == branchID && l.Code == code {
			return &l, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *LocationRepo) Update(_ context.Context, l *entity.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.locations[l.ID]; !ok {
		return domain.ErrNotFound
	}
	for _, existing := range r.s.locations {
		if existing.ID != l.ID && existing.BranchID == l.BranchID && existing.Code == l.Code {
			return domain.ErrDuplicate
		}
	}
	r.s.locations[l.ID] = *l
	return nil
}

func (r *LocationRepo) List(_ context.Context, f repository.LocationFilter) ([]*entity.Location, error) {
	if f.Scope.IsEmpty() {
		return []*entity.Location{}, nil
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.Location{}
	for _, l := range r.s.locations {
		l := l
		if !f.Scope.Contains(l.BranchID) || (!f.IncludeInactive && !l.IsActive) {
			continue
		}
		if f.Type != "" && l.Type != f.Type {
			continue
		}
		out = append(out, &l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	p := f.Page.Normalize()
	return paginate(out, p.Limit, p.Offset), nil
}

// ── Ítems ────────────────────────────────────────────────────────────────────

// ItemRepo catálogo en memoria.
type ItemRepo struct{ s *Store }

// Items devuelve el repositorio de ítems.
func (s *Store) Items() *ItemRepo { return &ItemRepo{s: s} }

func (r *ItemRepo) checkUnique(it *entity.Item) error {
	for _, existing := range r.s.items {
		if existing.ID == it.ID {
			continue
		}
		if existing.SKU == it.SKU {
			return domain.ErrDuplicate
		}
		if it.EAN != nil && existing.EAN != nil && *existing.EAN == *it.EAN {
			return domain.ErrDuplicate
		}
	}
	return nil
}

func (r *ItemRepo) Create(_ context.Context, it *entity.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[it.ID]; ok {
		return domain.ErrDuplicate
	}
	if err := r.checkUnique(it); err != nil {
		return err
	}
	r.s.items[it.ID] = *it
	return nil
}

func (r *ItemRepo) GetByID(_ context.Context, id string) (*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	it, ok := r.s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &it, nil
}

func (r *ItemRepo) GetBySKU(_ context.Context, sku string) (*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, it := range r.s.items {
		if it.SKU == sku {
			return &it, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *ItemRepo) GetByEAN(_ context.Context, ean string) (*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, it := range r.s.items {
		if it.EAN != nil && *it.EAN == ean {
			return &it, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *ItemRepo) Update(_ context.Context, it *entity.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[it.ID]; !ok {
		return domain.ErrNotFound
	}
	if err := r.checkUnique(it); err != nil {
		return err
	}
	r.s.items[it.ID] = *it
	return nil
}

func (r *ItemRepo) SetDeletedAt(_ context.Context, id string, deletedAt *time.Time, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	it.DeletedAt = deletedAt
	it.Touch(userID, r.s.now())
	r.s.items[id] = it
	return nil
}

func (r *ItemRepo) List(_ context.Context, f repository.ItemFilter) ([]*entity.ItemStock, error) {
	if f.Scope.IsEmpty() {
		return []*entity.ItemStock{}, nil
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	totals := map[string]int64{}
	atLocation := map[string]bool{}
	for k, b := range r.s.balances {
		totals[k.itemID] += b.Quantity
		if f.LocationID != "" && k.locationID == f.LocationID {
			atLocation[k.itemID] = true
		}
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := []*entity.ItemStock{}
	for _, it := range r.s.items {
		if !f.Scope.Contains(it.BranchID) || (!f.IncludeDeleted && it.IsDeleted()) {
			continue
		}
		if f.Status != "" && it.Status != f.Status {
			continue
		}
		if f.CategoryID != "" && (it.CategoryID == nil || *it.CategoryID != f.CategoryID) {
			continue
		}
		if f.SupplierID != "" && (it.SupplierID == nil || *it.SupplierID != f.SupplierID) {
			continue
		}
		if f.LocationID != "" && !atLocation[it.ID] {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(it.SKU), search) &&
			!strings.Contains(strings.ToLower(it.Name), search) &&
			!strings.Contains(strings.ToLower(it.Brand), search) {
			continue
		}
		row := &entity.ItemStock{Item: it, TotalQuantity: totals[it.ID]}
		if f.LowStockOnly && !row.IsLowStock() {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	p := f.Page.Normalize()
	return paginate(out, p.Limit, p.Offset), nil
}

func (r *ItemRepo) Facets(_ context.Context, scope repository.BranchScope, includeDeleted bool) (*entity.ItemFacets, error) {
	facets := &entity.ItemFacets{CategoryIDs: []string{}, SupplierIDs: []string{}, Statuses: []string{}}
	if scope.IsEmpty() {
		return facets, nil
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	cats, sups, statuses := map[string]bool{}, map[string]bool{}, map[string]bool{}
	for _, it := range r.s.items {
		if !scope.Contains(it.BranchID) || (!includeDeleted && it.IsDeleted()) {
			continue
		}
		if it.CategoryID != nil {
			cats[*it.CategoryID] = true
		}
		if it.SupplierID != nil {
			sups[*it.SupplierID] = true
		}
		statuses[it.Status] = true
	}
	facets.CategoryIDs = sortedKeys(cats)
	facets.SupplierIDs = sortedKeys(sups)
	facets.Statuses = sortedKeys(statuses)
	return facets, nil
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ── Tipos de movimiento ──────────────────────────────────────────────────────

// MovementTypeRepo registro de tipos en memoria.
type MovementTypeRepo struct{ s *Store }

// MovementTypes devuelve el repositorio de tipos de movimiento.
func (s *Store) MovementTypes() *MovementTypeRepo { return &MovementTypeRepo{s: s} }

func (r *MovementTypeRepo) Create(_ context.Context, mt *entity.MovementType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.types {
		if existing.ID == mt.ID || existing.Code == mt.Code {
			return domain.ErrDuplicate
		}
	}
	r.s.types[mt.ID] = *mt
	return nil
}

func (r *MovementTypeRepo) GetByID(_ context.Context, id string) (*entity.MovementType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	mt, ok := r.s.types[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &mt, nil
}

func (r *MovementTypeRepo) GetByCode(_ context.Context, code string) (*entity.MovementType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, mt := range r.s.types {
		if mt.Code == code {
			return &mt, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MovementTypeRepo) Update(_ context.Context, mt *entity.MovementType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.types[mt.ID]; !ok {
		return domain.ErrNotFound
	}
	for _, existing := range r.s.types {
		if existing.ID != mt.ID && existing.Code == mt.Code {
			return domain.ErrDuplicate
		}
	}
	r.s.types[mt.ID] = *mt
	return nil
}

func (r *MovementTypeRepo) List(_ context.Context, f repository.MovementTypeFilter) ([]*entity.MovementType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.MovementType{}
	for _, mt := range r.s.types {
		mt := mt
		if f.ActiveOnly && !mt.IsActive {
			continue
		}
		if f.Factor != 0 && mt.Factor != f.Factor {
			continue
		}
		if f.Category != "" && mt.Category != f.Category {
			continue
		}
		out = append(out, &mt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ── Usuarios ─────────────────────────────────────────────────────────────────

// UserRepo usuarios y perfiles en memoria.
type UserRepo struct{ s *Store }

// Users devuelve el repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Username == u.Username {
			return domain.ErrDuplicate
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepo) GetProfile(_ context.Context, userID string) (*entity.UserProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.BranchIDs = append([]string(nil), p.BranchIDs...)
	p.SectorIDs = append([]string(nil), p.SectorIDs...)
	return &p, nil
}

func (r *UserRepo) SaveProfile(_ context.Context, p *entity.UserProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[p.UserID]; !ok {
		return domain.ErrUserNotFound
	}
	cp := *p
	cp.BranchIDs = append([]string(nil), p.BranchIDs...)
	cp.SectorIDs = append([]string(nil), p.SectorIDs...)
	r.s.profiles[p.UserID] = cp
	return nil
}
