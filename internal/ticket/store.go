package ticket

import (
	"context"
	"sort"
	"sync"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

// Store is the persistence contract for tickets.
type Store interface {
	Create(ctx context.Context, t *Ticket) error
	FindByID(ctx context.Context, scope id.Scope, ticketID id.TicketID) (*Ticket, error)
	List(ctx context.Context, scope id.Scope) ([]*Ticket, error)
	Update(ctx context.Context, scope id.Scope, t *Ticket) error
}

// InMemory stores tickets in memory for tests and the demo environment.
type InMemory struct {
	mu      sync.RWMutex
	tickets map[string]*Ticket
}

func NewInMemory() *InMemory {
	return &InMemory{tickets: make(map[string]*Ticket)}
}

func (s *InMemory) Create(_ context.Context, t *Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.tickets[t.ID.String()] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, scope id.Scope, ticketID id.TicketID) (*Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[ticketID.String()]
	if !ok || !scope.Allows(t.CompanyID) {
		return nil, sentinel.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *InMemory) List(_ context.Context, scope id.Scope) ([]*Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Ticket
	for _, t := range s.tickets {
		if scope.Allows(t.CompanyID) {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) Update(_ context.Context, scope id.Scope, t *Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.tickets[t.ID.String()]
	if !ok || !scope.Allows(cur.CompanyID) {
		return sentinel.ErrNotFound
	}
	cp := *t
	s.tickets[t.ID.String()] = &cp
	return nil
}
