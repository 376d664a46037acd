package invoice

import (
	"context"
	"sort"
	"sync"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

// Store is the persistence contract for invoices.
type Store interface {
	Create(ctx context.Context, i *Invoice) error
	FindByID(ctx context.Context, scope id.Scope, invoiceID id.InvoiceID) (*Invoice, error)
	List(ctx context.Context, scope id.Scope) ([]*Invoice, error)
	Update(ctx context.Context, scope id.Scope, i *Invoice) error
}

// InMemory stores invoices in memory for tests and the demo environment.
type InMemory struct {
	mu       sync.RWMutex
	invoices map[string]*Invoice
}

func NewInMemory() *InMemory {
	return &InMemory{invoices: make(map[string]*Invoice)}
}

func (s *InMemory) Create(_ context.Context, i *Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *i
	s.invoices[i.ID.String()] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, scope id.Scope, invoiceID id.InvoiceID) (*Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.invoices[invoiceID.String()]
	if !ok || !scope.Allows(i.CompanyID) {
		return nil, sentinel.ErrNotFound
	}
	cp := *i
	return &cp, nil
}

func (s *InMemory) List(_ context.Context, scope id.Scope) ([]*Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Invoice
	for _, i := range s.invoices {
		if scope.Allows(i.CompanyID) {
			cp := *i
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

func (s *InMemory) Update(_ context.Context, scope id.Scope, i *Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.invoices[i.ID.String()]
	if !ok || !scope.Allows(cur.CompanyID) {
		return sentinel.ErrNotFound
	}
	cp := *i
	s.invoices[i.ID.String()] = &cp
	return nil
}
