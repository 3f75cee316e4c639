package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/ports"
)

// InMemoryIdempotencyStore implementa IdempotencyStore con un mapa; sirve para una sola
// instancia y para pruebas. Una goroutine purga las claves vencidas.
type InMemoryIdempotencyStore struct {
	mu        sync.Mutex
	entries   map[string]time.Time // clave -> vencimiento
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	now       func() time.Time
}

// NewInMemoryIdempotencyStore crea el almacén y arranca la purga periódica.
func NewInMemoryIdempotencyStore(cleanupEvery time.Duration) *InMemoryIdempotencyStore {
	if cleanupEvery <= 0 {
		cleanupEvery = 5 * time.Minute
	}
	s := &InMemoryIdempotencyStore{
		entries:  make(map[string]time.Time),
		stopChan: make(chan struct{}),
		now:      time.Now,
	}
	s.wg.Add(1)
	go s.cleanupLoop(cleanupEvery)
	return s
}

func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if expiresAt, ok := s.entries[key]; ok && now.Before(expiresAt) {
		return false, nil
	}
	s.entries[key] = now.Add(ttl)
	return true, nil
}

func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Close detiene la purga. Se puede llamar varias veces.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// Size cantidad de claves registradas (vigentes o no purgadas).
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *InMemoryIdempotencyStore) cleanupLoop(every time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryIdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for key, expiresAt := range s.entries {
		if !now.Before(expiresAt) {
			delete(s.entries, key)
		}
	}
}

var _ ports.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
