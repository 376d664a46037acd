package user

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/icnevudila/crm-sub011/internal/auth/models"
	id "github.com/icnevudila/crm-sub011/pkg/domain"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

// InMemory stores users in memory for tests and the demo environment.
type InMemory struct {
	mu       sync.RWMutex
	users    map[string]*models.User
	emailIdx map[string]string
}

// NewInMemory creates an in-memory user store.
func NewInMemory() *InMemory {
	return &InMemory{
		users:    make(map[string]*models.User),
		emailIdx: make(map[string]string),
	}
}

func (s *InMemory) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lower := strings.ToLower(u.Email)
	if _, exists := s.emailIdx[lower]; exists {
		return fmt.Errorf("email must be unique: %w", sentinel.ErrAlreadyUsed)
	}
	cp := *u
	s.users[u.ID.String()] = &cp
	s.emailIdx[lower] = u.ID.String()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[userID.String()]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if key, ok := s.emailIdx[strings.ToLower(email)]; ok {
		cp := *s.users[key]
		return &cp, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListByCompany(_ context.Context, companyID id.CompanyID) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.User
	for _, u := range s.users {
		if u.CompanyID == companyID {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s *InMemory) Update(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID.String()]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *u
	s.users[u.ID.String()] = &cp
	return nil
}
