package company

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

// Store is the persistence contract for companies.
type Store interface {
	// CreateIfNameAvailable atomically creates the company if the name is not
	// already taken (case-insensitive).
	CreateIfNameAvailable(ctx context.Context, c *Company) error
	FindByID(ctx context.Context, companyID id.CompanyID) (*Company, error)
	List(ctx context.Context) ([]*Company, error)
	Update(ctx context.Context, c *Company) error
}

// InMemory stores companies in memory for tests and the demo environment.
type InMemory struct {
	mu        sync.RWMutex
	companies map[string]*Company
	nameIdx   map[string]string
}

// NewInMemory creates an in-memory company store.
func NewInMemory() *InMemory {
	return &InMemory{
		companies: make(map[string]*Company),
		nameIdx:   make(map[string]string),
	}
}

func (s *InMemory) CreateIfNameAvailable(_ context.Context, c *Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lower := strings.ToLower(c.Name)
	if _, exists := s.nameIdx[lower]; exists {
		return fmt.Errorf("company name must be unique: %w", sentinel.ErrAlreadyUsed)
	}
	cp := *c
	s.companies[c.ID.String()] = &cp
	s.nameIdx[lower] = c.ID.String()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, companyID id.CompanyID) (*Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.companies[companyID.String()]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) List(_ context.Context) ([]*Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Company, 0, len(s.companies))
	for _, c := range s.companies {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemory) Update(_ context.Context, c *Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[c.ID.String()]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *c
	s.companies[c.ID.String()] = &cp
	return nil
}
