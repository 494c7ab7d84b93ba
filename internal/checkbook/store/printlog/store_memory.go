package printlog

import (
	"context"
	"slices"
	"sync"

	"chequeprint/internal/checkbook/models"
)

// InMemoryStore keeps print logs per account in append order.
type InMemoryStore struct {
	mu   sync.RWMutex
	logs map[string][]*models.PrintLogEntry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{logs: make(map[string][]*models.PrintLogEntry)}
}

func (s *InMemoryStore) Append(_ context.Context, entry *models.PrintLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *entry
	cp.LeafNumbers = slices.Clone(entry.LeafNumbers)
	s.logs[entry.AccountNumber] = append(s.logs[entry.AccountNumber], &cp)
	return nil
}

// FindByAccount returns the account's entries, newest first.
func (s *InMemoryStore) FindByAccount(_ context.Context, accountNumber string) ([]*models.PrintLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.logs[accountNumber]
	out := make([]*models.PrintLogEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		cp := *entries[i]
		out = append(out, &cp)
	}
	return out, nil
}
