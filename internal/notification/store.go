package notification

import (
	"context"
	"sort"
	"sync"
	"time"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

// InMemory stores notifications in memory for tests and the demo environment.
type InMemory struct {
	mu            sync.RWMutex
	notifications map[string]*Notification
}

// NewInMemory creates an in-memory notification store.
func NewInMemory() *InMemory {
	return &InMemory{notifications: make(map[string]*Notification)}
}

func (s *InMemory) Create(_ context.Context, n *Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *n
	s.notifications[n.ID.String()] = &cp
	return nil
}

func (s *InMemory) ListByUser(_ context.Context, userID id.UserID, unreadOnly bool) ([]*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Notification
	for _, n := range s.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.ReadAt != nil {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) FindByID(_ context.Context, notificationID id.NotificationID) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n, ok := s.notifications[notificationID.String()]; ok {
		cp := *n
		return &cp, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) MarkRead(_ context.Context, notificationID id.NotificationID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[notificationID.String()]
	if !ok {
		return sentinel.ErrNotFound
	}
	n.ReadAt = &at
	return nil
}

func (s *InMemory) MarkAllRead(_ context.Context, userID id.UserID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.UserID == userID && n.ReadAt == nil {
			n.ReadAt = &at
		}
	}
	return nil
}
