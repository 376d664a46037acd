package task

import (
	"context"
	"sort"
	"sync"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

// Store is the persistence contract for tasks.
type Store interface {
	Create(ctx context.Context, t *Task) error
	FindByID(ctx context.Context, scope id.Scope, taskID id.TaskID) (*Task, error)
	List(ctx context.Context, scope id.Scope) ([]*Task, error)
	Update(ctx context.Context, scope id.Scope, t *Task) error
	Delete(ctx context.Context, scope id.Scope, taskID id.TaskID) error
}

// InMemory stores tasks in memory for tests and the demo environment.
type InMemory struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

func NewInMemory() *InMemory {
	return &InMemory{tasks: make(map[string]*Task)}
}

func (s *InMemory) Create(_ context.Context, t *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.tasks[t.ID.String()] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, scope id.Scope, taskID id.TaskID) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[taskID.String()]
	if !ok || !scope.Allows(t.CompanyID) {
		return nil, sentinel.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *InMemory) List(_ context.Context, scope id.Scope) ([]*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Task
	for _, t := range s.tasks {
		if scope.Allows(t.CompanyID) {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) Update(_ context.Context, scope id.Scope, t *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.tasks[t.ID.String()]
	if !ok || !scope.Allows(cur.CompanyID) {
		return sentinel.ErrNotFound
	}
	cp := *t
	s.tasks[t.ID.String()] = &cp
	return nil
}

func (s *InMemory) Delete(_ context.Context, scope id.Scope, taskID id.TaskID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID.String()]
	if !ok || !scope.Allows(t.CompanyID) {
		return sentinel.ErrNotFound
	}
	delete(s.tasks, taskID.String())
	return nil
}
