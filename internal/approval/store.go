package approval

import (
	"context"
	"sort"
	"sync"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

// Store is the persistence contract for approvals.
type Store interface {
	Create(ctx context.Context, a *Approval) error
	FindByID(ctx context.Context, scope id.Scope, approvalID id.ApprovalID) (*Approval, error)
	List(ctx context.Context, scope id.Scope) ([]*Approval, error)
	Update(ctx context.Context, scope id.Scope, a *Approval) error
}

// InMemory stores approvals in memory for tests and the demo environment.
type InMemory struct {
	mu        sync.RWMutex
	approvals map[string]*Approval
}

func NewInMemory() *InMemory {
	return &InMemory{approvals: make(map[string]*Approval)}
}

func (s *InMemory) Create(_ context.Context, a *Approval) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.approvals[a.ID.String()] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, scope id.Scope, approvalID id.ApprovalID) (*Approval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.approvals[approvalID.String()]
	if !ok || !scope.Allows(a.CompanyID) {
		return nil, sentinel.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *InMemory) List(_ context.Context, scope id.Scope) ([]*Approval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Approval
	for _, a := range s.approvals {
		if scope.Allows(a.CompanyID) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) Update(_ context.Context, scope id.Scope, a *Approval) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.approvals[a.ID.String()]
	if !ok || !scope.Allows(cur.CompanyID) {
		return sentinel.ErrNotFound
	}
	cp := *a
	s.approvals[a.ID.String()] = &cp
	return nil
}
