package serial

import (
	"context"
	"sync"
)

// InMemoryStore holds branch high-water marks. Callers serialize commits per
// branch; the mutex only protects the map.
type InMemoryStore struct {
	mu   sync.RWMutex
	last map[string]int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{last: make(map[string]int64)}
}

func (s *InMemoryStore) LastSerial(_ context.Context, branchID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last[branchID], nil
}

// LockLastSerial reads the mark. Exclusion comes from the caller's branch lock.
func (s *InMemoryStore) LockLastSerial(ctx context.Context, branchID string) (int64, error) {
	return s.LastSerial(ctx, branchID)
}

func (s *InMemoryStore) Advance(_ context.Context, branchID string, lastSerial int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[branchID] = lastSerial
	return nil
}
