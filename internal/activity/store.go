package activity

import (
	"context"
	"sync"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
)

// InMemory keeps the activity log in memory for tests and the demo environment.
type InMemory struct {
	mu      sync.RWMutex
	entries []*Entry
}

// NewInMemory creates an in-memory activity store.
func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Append(_ context.Context, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.entries = append(s.entries, &cp)
	return nil
}

func (s *InMemory) ListByCompany(_ context.Context, scope id.Scope, limit int) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Entry
	// Newest first.
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := s.entries[i]
		if !scope.Allows(e.CompanyID) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}
