package layout

import (
	"context"
	"sync"

	"chequeprint/internal/checkbook/models"
)

// InMemoryStore holds layout overrides for development and tests.
type InMemoryStore struct {
	mu        sync.RWMutex
	overrides map[models.DocumentType]models.LayoutOverrides
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{overrides: make(map[models.DocumentType]models.LayoutOverrides)}
}

// Set replaces the overrides for one field.
func (s *InMemoryStore) Set(docType models.DocumentType, field models.Field, o models.PositionOverride) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overrides[docType] == nil {
		s.overrides[docType] = make(models.LayoutOverrides)
	}
	s.overrides[docType][field] = o
}

func (s *InMemoryStore) Overrides(_ context.Context, docType models.DocumentType) (models.LayoutOverrides, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(models.LayoutOverrides, len(s.overrides[docType]))
	for f, o := range s.overrides[docType] {
		out[f] = o
	}
	return out, nil
}
