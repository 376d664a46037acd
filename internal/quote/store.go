package quote

import (
	"context"
	"sort"
	"sync"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

// Store is the persistence contract for quotes. Lines are stored with the
// quote and replaced wholesale on update.
type Store interface {
	Create(ctx context.Context, q *Quote) error
	FindByID(ctx context.Context, scope id.Scope, quoteID id.QuoteID) (*Quote, error)
	List(ctx context.Context, scope id.Scope) ([]*Quote, error)
	Update(ctx context.Context, scope id.Scope, q *Quote) error
	Delete(ctx context.Context, scope id.Scope, quoteID id.QuoteID) error
}

// InMemory stores quotes in memory for tests and the demo environment.
type InMemory struct {
	mu     sync.RWMutex
	quotes map[string]*Quote
}

func NewInMemory() *InMemory {
	return &InMemory{quotes: make(map[string]*Quote)}
}

func cloneQuote(q *Quote) *Quote {
	cp := *q
	cp.Lines = append([]Line(nil), q.Lines...)
	return &cp
}

func (s *InMemory) Create(_ context.Context, q *Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[q.ID.String()] = cloneQuote(q)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, scope id.Scope, quoteID id.QuoteID) (*Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotes[quoteID.String()]
	if !ok || !scope.Allows(q.CompanyID) {
		return nil, sentinel.ErrNotFound
	}
	return cloneQuote(q), nil
}

func (s *InMemory) List(_ context.Context, scope id.Scope) ([]*Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Quote
	for _, q := range s.quotes {
		if scope.Allows(q.CompanyID) {
			out = append(out, cloneQuote(q))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) Update(_ context.Context, scope id.Scope, q *Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.quotes[q.ID.String()]
	if !ok || !scope.Allows(cur.CompanyID) {
		return sentinel.ErrNotFound
	}
	s.quotes[q.ID.String()] = cloneQuote(q)
	return nil
}

func (s *InMemory) Delete(_ context.Context, scope id.Scope, quoteID id.QuoteID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quotes[quoteID.String()]
	if !ok || !scope.Allows(q.CompanyID) {
		return sentinel.ErrNotFound
	}
	delete(s.quotes, quoteID.String())
	return nil
}
