package deal

import (
	"context"
	"sort"
	"sync"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

// Store is the persistence contract for deals.
type Store interface {
	Create(ctx context.Context, d *Deal) error
	FindByID(ctx context.Context, scope id.Scope, dealID id.DealID) (*Deal, error)
	List(ctx context.Context, scope id.Scope) ([]*Deal, error)
	Update(ctx context.Context, scope id.Scope, d *Deal) error
}

// InMemory stores deals in memory for tests and the demo environment.
type InMemory struct {
	mu    sync.RWMutex
	deals map[string]*Deal
}

func NewInMemory() *InMemory {
	return &InMemory{deals: make(map[string]*Deal)}
}

func (s *InMemory) Create(_ context.Context, d *Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	s.deals[d.ID.String()] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, scope id.Scope, dealID id.DealID) (*Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.deals[dealID.String()]
	if !ok || !scope.Allows(d.CompanyID) {
		return nil, sentinel.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *InMemory) List(_ context.Context, scope id.Scope) ([]*Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Deal
	for _, d := range s.deals {
		if scope.Allows(d.CompanyID) {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) Update(_ context.Context, scope id.Scope, d *Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.deals[d.ID.String()]
	if !ok || !scope.Allows(cur.CompanyID) {
		return sentinel.ErrNotFound
	}
	cp := *d
	s.deals[d.ID.String()] = &cp
	return nil
}
