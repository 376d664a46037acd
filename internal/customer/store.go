package customer

import (
	"context"
	"sort"
	"sync"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

// Store is the persistence contract for customers. Every read is filtered by
// the caller's scope; a row outside the scope behaves as if it did not exist.
type Store interface {
	Create(ctx context.Context, c *Customer) error
	FindByID(ctx context.Context, scope id.Scope, customerID id.CustomerID) (*Customer, error)
	List(ctx context.Context, scope id.Scope) ([]*Customer, error)
	Update(ctx context.Context, scope id.Scope, c *Customer) error
	Delete(ctx context.Context, scope id.Scope, customerID id.CustomerID) error
}

// InMemory stores customers in memory for tests and the demo environment.
type InMemory struct {
	mu        sync.RWMutex
	customers map[string]*Customer
}

func NewInMemory() *InMemory {
	return &InMemory{customers: make(map[string]*Customer)}
}

func (s *InMemory) Create(_ context.Context, c *Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.customers[c.ID.String()] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, scope id.Scope, customerID id.CustomerID) (*Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[customerID.String()]
	if !ok || !scope.Allows(c.CompanyID) {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *InMemory) List(_ context.Context, scope id.Scope) ([]*Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Customer
	for _, c := range s.customers {
		if scope.Allows(c.CompanyID) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemory) Update(_ context.Context, scope id.Scope, c *Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.customers[c.ID.String()]
	if !ok || !scope.Allows(cur.CompanyID) {
		return sentinel.ErrNotFound
	}
	cp := *c
	s.customers[c.ID.String()] = &cp
	return nil
}

func (s *InMemory) Delete(_ context.Context, scope id.Scope, customerID id.CustomerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[customerID.String()]
	if !ok || !scope.Allows(c.CompanyID) {
		return sentinel.ErrNotFound
	}
	delete(s.customers, customerID.String())
	return nil
}
