package checklog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"chequeprint/internal/certified/models"
	cbmodels "chequeprint/internal/checkbook/models"
	"chequeprint/pkg/platform/sentinel"
)

type firstPrint struct {
	branchID string
	first    int64
}

// InMemoryStore mirrors the postgres unique index on first prints.
type InMemoryStore struct {
	mu     sync.RWMutex
	logs   []*models.CheckLog
	starts map[firstPrint]uuid.UUID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{starts: make(map[firstPrint]uuid.UUID)}
}

func (s *InMemoryStore) Append(_ context.Context, log *models.CheckLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if log.OperationType == cbmodels.OperationPrint {
		key := firstPrint{branchID: log.BranchID, first: log.FirstSerial}
		if _, taken := s.starts[key]; taken {
			return sentinel.ErrConflict
		}
		s.starts[key] = log.ID
	}
	cp := *log
	s.logs = append(s.logs, &cp)
	return nil
}

// Remove deletes a log appended by a unit of work that later failed.
func (s *InMemoryStore) Remove(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.logs {
		if l.ID != id {
			continue
		}
		key := firstPrint{branchID: l.BranchID, first: l.FirstSerial}
		if s.starts[key] == id {
			delete(s.starts, key)
		}
		s.logs = append(s.logs[:i], s.logs[i+1:]...)
		return nil
	}
	return sentinel.ErrNotFound
}

// MarkServed stamps the log as handed out. It returns sentinel.ErrConflict
// when the log was already served.
func (s *InMemoryStore) MarkServed(_ context.Context, id uuid.UUID, by string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.logs {
		if l.ID != id {
			continue
		}
		if l.ServedAt != nil {
			return sentinel.ErrConflict
		}
		l.ServedAt = &at
		l.ServedBy = by
		return nil
	}
	return sentinel.ErrNotFound
}

// UnmarkServed clears the stamp left by a unit of work that later failed.
func (s *InMemoryStore) UnmarkServed(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.logs {
		if l.ID == id {
			l.ServedAt = nil
			l.ServedBy = ""
			return nil
		}
	}
	return sentinel.ErrNotFound
}

func (s *InMemoryStore) Get(_ context.Context, id uuid.UUID) (*models.CheckLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.logs {
		if l.ID == id {
			cp := *l
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// LastCommitted returns the branch's most recent first print.
func (s *InMemoryStore) LastCommitted(_ context.Context, branchID string) (*models.CheckLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.logs) - 1; i >= 0; i-- {
		l := s.logs[i]
		if l.BranchID == branchID && l.OperationType == cbmodels.OperationPrint {
			cp := *l
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// ListByBranch returns up to limit logs, newest first. limit <= 0 means all.
func (s *InMemoryStore) ListByBranch(_ context.Context, branchID string, limit int) ([]*models.CheckLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.CheckLog
	for i := len(s.logs) - 1; i >= 0; i-- {
		if s.logs[i].BranchID != branchID {
			continue
		}
		cp := *s.logs[i]
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
