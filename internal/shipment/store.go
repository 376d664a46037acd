package shipment

import (
	"context"
	"sort"
	"sync"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

// Store is the persistence contract for shipments.
type Store interface {
	Create(ctx context.Context, sh *Shipment) error
	FindByID(ctx context.Context, scope id.Scope, shipmentID id.ShipmentID) (*Shipment, error)
	List(ctx context.Context, scope id.Scope) ([]*Shipment, error)
	Update(ctx context.Context, scope id.Scope, sh *Shipment) error
}

// InMemory stores shipments in memory for tests and the demo environment.
type InMemory struct {
	mu        sync.RWMutex
	shipments map[string]*Shipment
}

func NewInMemory() *InMemory {
	return &InMemory{shipments: make(map[string]*Shipment)}
}

func (s *InMemory) Create(_ context.Context, sh *Shipment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sh
	s.shipments[sh.ID.String()] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, scope id.Scope, shipmentID id.ShipmentID) (*Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shipments[shipmentID.String()]
	if !ok || !scope.Allows(sh.CompanyID) {
		return nil, sentinel.ErrNotFound
	}
	cp := *sh
	return &cp, nil
}

func (s *InMemory) List(_ context.Context, scope id.Scope) ([]*Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Shipment
	for _, sh := range s.shipments {
		if scope.Allows(sh.CompanyID) {
			cp := *sh
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) Update(_ context.Context, scope id.Scope, sh *Shipment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.shipments[sh.ID.String()]
	if !ok || !scope.Allows(cur.CompanyID) {
		return sentinel.ErrNotFound
	}
	cp := *sh
	s.shipments[sh.ID.String()] = &cp
	return nil
}
