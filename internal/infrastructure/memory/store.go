// Package memory implementa los puertos de persistencia en memoria, con transacciones
// que bloquean por par (ítem, locación) igual que el adaptador PostgreSQL.
// Se usa en pruebas y con STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

type balanceKey struct {
	itemID     string
	locationID string
}

// Store estado compartido por todos los repositorios en memoria.
type Store struct {
	mu        sync.RWMutex
	branches  map[string]entity.Branch
	sectors   map[string]entity.Sector
	locations map[string]entity.Location
	items     map[string]entity.Item
	types     map[string]entity.MovementType
	users     map[string]entity.User
	profiles  map[string]entity.UserProfile
	groups    map[string]entity.CategoryGroup
	cats      map[string]entity.Category
	suppliers map[string]entity.Supplier
	balances  map[balanceKey]entity.StockBalance
	movements []entity.StockMovement // orden de commit

	locksMu   sync.Mutex
	rowLocks  map[balanceKey]chan struct{}
	itemLocks map[string]*itemLock

	now func() time.Time
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{
		branches:  map[string]entity.Branch{},
		sectors:   map[string]entity.Sector{},
		locations: map[string]entity.Location{},
		items:     map[string]entity.Item{},
		types:     map[string]entity.MovementType{},
		users:     map[string]entity.User{},
		profiles:  map[string]entity.UserProfile{},
		groups:    map[string]entity.CategoryGroup{},
		cats:      map[string]entity.Category{},
		suppliers: map[string]entity.Supplier{},
		balances:  map[balanceKey]entity.StockBalance{},
		rowLocks:  map[balanceKey]chan struct{}{},
		itemLocks: map[string]*itemLock{},
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) rowLock(k balanceKey) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.rowLocks[k]
	if !ok {
		l = make(chan struct{}, 1)
		s.rowLocks[k] = l
	}
	return l
}

// lockRow bloquea el par hasta que se libere; respeta la cancelación del contexto
// y la reporta como conflicto, como haría un lock_timeout del motor.
func (s *Store) lockRow(ctx context.Context, k balanceKey) error {
	l := s.rowLock(k)
	select {
	case l <- struct{}{}:
		return nil
	case <-ctx.Done():
		return domain.Conflict(ctx.Err())
	}
}

func (s *Store) unlockRow(k balanceKey) {
	<-s.rowLock(k)
}

// itemLock bloqueo compartido/exclusivo de un ítem (FOR SHARE / FOR UPDATE).
type itemLock struct {
	mu      sync.Mutex
	readers int
	writer  bool
	changed chan struct{}
}

func (s *Store) itemLock(itemID string) *itemLock {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.itemLocks[itemID]
	if !ok {
		l = &itemLock{changed: make(chan struct{})}
		s.itemLocks[itemID] = l
	}
	return l
}

func (l *itemLock) acquire(ctx context.Context, exclusive bool) error {
	for {
		l.mu.Lock()
		if !l.writer && (!exclusive || l.readers == 0) {
			if exclusive {
				l.writer = true
			} else {
				l.readers++
			}
			l.mu.Unlock()
			return nil
		}
		wait := l.changed
		l.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return domain.Conflict(ctx.Err())
		}
	}
}

func (l *itemLock) release(exclusive bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if exclusive {
		l.writer = false
	} else {
		l.readers--
	}
	close(l.changed)
	l.changed = make(chan struct{})
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
