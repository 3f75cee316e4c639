package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	rules "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.StockBalanceReader      = (*BalanceReader)(nil)
	_ repository.StockMovementReader     = (*MovementReader)(nil)
	_ repository.StockBalanceRepository  = (*txBalances)(nil)
	_ repository.StockMovementRepository = (*txMovements)(nil)
	_ repository.ItemLocker              = (*txItems)(nil)
	_ inventory.TxRunner                 = (*TxRunner)(nil)
)

// ── Lecturas fuera de transacción ────────────────────────────────────────────

// BalanceReader lecturas de saldos confirmados.
type BalanceReader struct{ s *Store }

// Balances devuelve el lector de saldos.
func (s *Store) Balances() *BalanceReader { return &BalanceReader{s: s} }

func (r *BalanceReader) Get(_ context.Context, itemID, locationID string) (*entity.StockBalance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.balanceLocked(itemID, locationID), nil
}

func (r *BalanceReader) ListByItem(_ context.Context, itemID string) ([]*entity.LocationBalance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.listByItemLocked(itemID), nil
}

func (r *BalanceReader) SumByItem(_ context.Context, itemID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var total int64
	for k, b := range r.s.balances {
		if k.itemID == itemID {
			total += b.Quantity
		}
	}
	return total, nil
}

func (s *Store) balanceLocked(itemID, locationID string) *entity.StockBalance {
	b, ok := s.balances[balanceKey{itemID, locationID}]
	if !ok {
		return &entity.StockBalance{ItemID: itemID, LocationID: locationID}
	}
	return &b
}

func (s *Store) listByItemLocked(itemID string) []*entity.LocationBalance {
	out := []*entity.LocationBalance{}
	for k, b := range s.balances {
		if k.itemID != itemID {
			continue
		}
		lb := &entity.LocationBalance{LocationID: k.locationID, Quantity: b.Quantity, UpdatedAt: b.UpdatedAt}
		if loc, ok := s.locations[k.locationID]; ok {
			lb.LocationCode = loc.Code
			lb.LocationName = loc.Name
		}
		out = append(out, lb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LocationCode < out[j].LocationCode })
	return out
}

// MovementReader lecturas del libro confirmado.
type MovementReader struct{ s *Store }

// Movements devuelve el lector del libro.
func (s *Store) Movements() *MovementReader { return &MovementReader{s: s} }

func (r *MovementReader) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := range r.s.movements {
		if r.s.movements[i].ID == id {
			m := r.s.movements[i]
			return &m, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MovementReader) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	if f.Scope.IsEmpty() {
		return []*entity.StockMovement{}, nil
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.StockMovement{}
	// más recientes primero
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		m := r.s.movements[i]
		if f.ItemID != "" && m.ItemID != f.ItemID {
			continue
		}
		if f.LocationID != "" && m.LocationID != f.LocationID {
			continue
		}
		if f.MovementTypeID != "" && m.MovementTypeID != f.MovementTypeID {
			continue
		}
		if f.UserID != "" && m.UserID != f.UserID {
			continue
		}
		if f.From != nil && m.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !m.CreatedAt.Before(*f.To) {
			continue
		}
		if f.Scope.Restricted {
			it, ok := r.s.items[m.ItemID]
			if !ok || !f.Scope.Contains(it.BranchID) {
				continue
			}
		}
		out = append(out, &m)
	}
	p := f.Page.Normalize()
	return paginate(out, p.Limit, p.Offset), nil
}

func (r *MovementReader) SumEffective(_ context.Context, itemID, locationID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var sum int64
	for _, m := range r.s.movements {
		if m.ItemID == itemID && m.LocationID == locationID {
			sum += m.EffectiveQuantity
		}
	}
	return sum, nil
}

// ── Transacciones ────────────────────────────────────────────────────────────

// TxRunner ejecuta el callback con repositorios transaccionales. Las escrituras se
// acumulan y se aplican todas juntas al confirmar; cualquier error las descarta.
type TxRunner struct{ s *Store }

// NewTxRunner construye el runner sobre el almacén.
func NewTxRunner(s *Store) *TxRunner { return &TxRunner{s: s} }

type memTx struct {
	ctx       context.Context
	s         *Store
	held      map[balanceKey]bool
	order     []balanceKey
	balances  map[balanceKey]entity.StockBalance
	movements []entity.StockMovement

	items    map[string]bool // id -> bloqueo exclusivo
	deletion map[string]itemDeletion
}

type itemDeletion struct {
	at     *time.Time
	userID string
}

// Run inicia la transacción, ejecuta fn y confirma o descarta.
func (r *TxRunner) Run(ctx context.Context, fn func(
	items repository.ItemLocker,
	balances repository.StockBalanceRepository,
	movements repository.StockMovementRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return domain.Conflict(err)
	}
	tx := &memTx{
		ctx:      ctx,
		s:        r.s,
		held:     map[balanceKey]bool{},
		balances: map[balanceKey]entity.StockBalance{},
		items:    map[string]bool{},
		deletion: map[string]itemDeletion{},
	}
	defer tx.release()

	if err := fn(&txItems{tx: tx}, &txBalances{tx: tx}, &txMovements{tx: tx}); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (tx *memTx) release() {
	for i := len(tx.order) - 1; i >= 0; i-- {
		tx.s.unlockRow(tx.order[i])
	}
	tx.order = nil
	for id, exclusive := range tx.items {
		tx.s.itemLock(id).release(exclusive)
	}
	tx.items = nil
}

func (tx *memTx) commit() {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	now := tx.s.now()
	for k, b := range tx.balances {
		b.UpdatedAt = now
		tx.s.balances[k] = b
	}
	for _, m := range tx.movements {
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		tx.s.movements = append(tx.s.movements, m)
	}
	for id, d := range tx.deletion {
		it, ok := tx.s.items[id]
		if !ok {
			continue
		}
		it.DeletedAt = d.at
		it.Touch(d.userID, now)
		tx.s.items[id] = it
	}
}

func (tx *memTx) lock(k balanceKey) error {
	if tx.held[k] {
		return nil
	}
	if err := tx.s.lockRow(tx.ctx, k); err != nil {
		return err
	}
	tx.held[k] = true
	tx.order = append(tx.order, k)
	return nil
}

type txItems struct{ tx *memTx }

func (r *txItems) GetForShare(ctx context.Context, id string) (*entity.Item, error) {
	return r.lockItem(ctx, id, false)
}

func (r *txItems) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	return r.lockItem(ctx, id, true)
}

func (r *txItems) lockItem(ctx context.Context, id string, exclusive bool) (*entity.Item, error) {
	held, ok := r.tx.items[id]
	switch {
	case ok && exclusive && !held:
		return nil, fmt.Errorf("lock item %s: cannot upgrade a shared lock", id)
	case !ok:
		if err := r.tx.s.itemLock(id).acquire(r.tx.ctx, exclusive); err != nil {
			return nil, err
		}
		r.tx.items[id] = exclusive
	}
	it, err := r.tx.s.Items().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d, ok := r.tx.deletion[id]; ok {
		it.DeletedAt = d.at
	}
	return it, nil
}

func (r *txItems) SetDeletedAt(_ context.Context, id string, deletedAt *time.Time, userID string) error {
	if !r.tx.items[id] {
		return fmt.Errorf("set item deleted_at: item %s not locked for update in this transaction", id)
	}
	r.tx.deletion[id] = itemDeletion{at: deletedAt, userID: userID}
	return nil
}

type txBalances struct{ tx *memTx }

func (r *txBalances) Get(ctx context.Context, itemID, locationID string) (*entity.StockBalance, error) {
	if b, ok := r.tx.balances[balanceKey{itemID, locationID}]; ok {
		return &b, nil
	}
	return r.tx.s.Balances().Get(ctx, itemID, locationID)
}

func (r *txBalances) ListByItem(ctx context.Context, itemID string) ([]*entity.LocationBalance, error) {
	rows, err := r.tx.s.Balances().ListByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if b, ok := r.tx.balances[balanceKey{itemID, row.LocationID}]; ok {
			row.Quantity = b.Quantity
		}
	}
	return rows, nil
}

func (r *txBalances) SumByItem(ctx context.Context, itemID string) (int64, error) {
	rows, err := r.ListByItem(ctx, itemID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, row := range rows {
		total += row.Quantity
	}
	return total, nil
}

func (r *txBalances) GetForUpdate(_ context.Context, itemID, locationID string) (*entity.StockBalance, error) {
	k := balanceKey{itemID, locationID}
	if err := r.tx.lock(k); err != nil {
		return nil, err
	}
	if b, ok := r.tx.balances[k]; ok {
		return &b, nil
	}
	r.tx.s.mu.RLock()
	b := *r.tx.s.balanceLocked(itemID, locationID)
	r.tx.s.mu.RUnlock()
	r.tx.balances[k] = b
	return &b, nil
}

func (r *txBalances) ApplyDelta(_ context.Context, itemID, locationID string, delta int64) (int64, error) {
	k := balanceKey{itemID, locationID}
	b, ok := r.tx.balances[k]
	if !ok || !r.tx.held[k] {
		return 0, fmt.Errorf("apply delta: balance %s/%s not locked in this transaction", itemID, locationID)
	}
	next, err := rules.NextBalance(b.Quantity, delta)
	if err != nil {
		return 0, err
	}
	b.Quantity = next
	r.tx.balances[k] = b
	return b.Quantity, nil
}

type txMovements struct{ tx *memTx }

func (r *txMovements) Create(_ context.Context, m *entity.StockMovement) error {
	if !r.tx.held[balanceKey{m.ItemID, m.LocationID}] {
		return fmt.Errorf("create movement: balance %s/%s not locked in this transaction", m.ItemID, m.LocationID)
	}
	r.tx.movements = append(r.tx.movements, *m)
	return nil
}

func (r *txMovements) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	for i := range r.tx.movements {
		if r.tx.movements[i].ID == id {
			m := r.tx.movements[i]
			return &m, nil
		}
	}
	return r.tx.s.Movements().GetByID(ctx, id)
}

func (r *txMovements) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	return r.tx.s.Movements().List(ctx, f)
}

func (r *txMovements) SumEffective(ctx context.Context, itemID, locationID string) (int64, error) {
	sum, err := r.tx.s.Movements().SumEffective(ctx, itemID, locationID)
	if err != nil {
		return 0, err
	}
	for _, m := range r.tx.movements {
		if m.ItemID == itemID && m.LocationID == locationID {
			sum += m.EffectiveQuantity
		}
	}
	return sum, nil
}
