package cache

import (
	"context"
	"sync"
	"time"

	"github.com/codops/backend/internal/domain/shared"
)

const defaultCleanupInterval = 5 * time.Minute

// InMemoryIdempotencyStore implements shared.IdempotencyStore with a map.
// It only de-duplicates deliveries reaching this process.
type InMemoryIdempotencyStore struct {
	mu        sync.RWMutex
	expiresAt map[string]time.Time
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore creates the store and starts its expiry sweeper
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return newInMemoryIdempotencyStore(time.Now, defaultCleanupInterval)
}

func newInMemoryIdempotencyStore(now func() time.Time, cleanupEvery time.Duration) *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		expiresAt: make(map[string]time.Time),
		now:       now,
		stopChan:  make(chan struct{}),
	}
	s.wg.Add(1)
	go s.cleanupLoop(cleanupEvery)
	return s
}

// MarkProcessed records key for ttl. Returns false if it is already recorded.
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if exp, ok := s.expiresAt[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.expiresAt[key] = now.Add(ttl)
	return true, nil
}

// IsProcessed reports whether key is recorded and not expired
func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exp, ok := s.expiresAt[key]
	return ok && s.now().Before(exp), nil
}

// Close stops the sweeper. Safe to call multiple times.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
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
	for key, exp := range s.expiresAt {
		if !now.Before(exp) {
			delete(s.expiresAt, key)
		}
	}
}

// Size returns the number of retained keys
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.expiresAt)
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
