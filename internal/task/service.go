package task

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/icnevudila/crm-sub011/internal/activity"
	"github.com/icnevudila/crm-sub011/internal/notification"
	"github.com/icnevudila/crm-sub011/internal/platform/middleware"
	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

// Service orchestrates task CRUD within the caller's tenant scope.
type Service struct {
	store    Store
	recorder activity.Recorder
	notifier notification.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(store Store, recorder activity.Recorder, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{store: store, recorder: recorder, notifier: notifier, logger: logger, now: time.Now}
}

func (s *Service) Create(ctx context.Context, ident middleware.Identity, req UpsertRequest) (*Task, error) {
	if ident.CompanyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "a company context is required to create tasks")
	}
	assigneeID, err := parseAssignee(req.AssigneeID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	t := &Task{
		ID:          id.NewTaskID(),
		CompanyID:   ident.CompanyID,
		AssigneeID:  assigneeID,
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
		Status:      StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create task")
	}
	s.record(ctx, ident, t, "task.created", t.Title)
	if !t.AssigneeID.IsNil() && t.AssigneeID != ident.UserID {
		s.notifier.Notify(ctx, t.CompanyID, t.AssigneeID, notification.KindTaskAssigned,
			"Task assigned to you", t.Title)
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, ident middleware.Identity, taskID id.TaskID) (*Task, error) {
	t, err := s.store.FindByID(ctx, ident.Scope(), taskID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, ident middleware.Identity) ([]*Task, error) {
	tasks, err := s.store.List(ctx, ident.Scope())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tasks")
	}
	return tasks, nil
}

// Update edits an open task. A reassignment notifies the new assignee.
func (s *Service) Update(ctx context.Context, ident middleware.Identity, taskID id.TaskID, req UpsertRequest) (*Task, error) {
	scope := ident.Scope()
	t, err := s.store.FindByID(ctx, scope, taskID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if t.Status != StatusOpen {
		return nil, dErrors.New(dErrors.CodeConflict, "a closed task cannot be edited")
	}
	assigneeID, err := parseAssignee(req.AssigneeID)
	if err != nil {
		return nil, err
	}
	reassigned := !assigneeID.IsNil() && assigneeID != t.AssigneeID
	t.AssigneeID = assigneeID
	t.Title = req.Title
	t.Description = req.Description
	t.DueAt = req.DueAt
	t.UpdatedAt = s.now()
	if err := s.store.Update(ctx, scope, t); err != nil {
		return nil, wrapStoreErr(err)
	}
	s.record(ctx, ident, t, "task.updated", t.Title)
	if reassigned && t.AssigneeID != ident.UserID {
		s.notifier.Notify(ctx, t.CompanyID, t.AssigneeID, notification.KindTaskAssigned,
			"Task assigned to you", t.Title)
	}
	return t, nil
}

func (s *Service) Complete(ctx context.Context, ident middleware.Identity, taskID id.TaskID) (*Task, error) {
	return s.transition(ctx, ident, taskID, "task.completed", (*Task).Complete)
}

func (s *Service) Cancel(ctx context.Context, ident middleware.Identity, taskID id.TaskID) (*Task, error) {
	return s.transition(ctx, ident, taskID, "task.cancelled", (*Task).Cancel)
}

func (s *Service) Delete(ctx context.Context, ident middleware.Identity, taskID id.TaskID) error {
	scope := ident.Scope()
	t, err := s.store.FindByID(ctx, scope, taskID)
	if err != nil {
		return wrapStoreErr(err)
	}
	if err := s.store.Delete(ctx, scope, taskID); err != nil {
		return wrapStoreErr(err)
	}
	s.record(ctx, ident, t, "task.deleted", t.Title)
	return nil
}

func (s *Service) transition(ctx context.Context, ident middleware.Identity, taskID id.TaskID,
	action string, apply func(*Task, time.Time) error) (*Task, error) {
	scope := ident.Scope()
	t, err := s.store.FindByID(ctx, scope, taskID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if err := apply(t, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, scope, t); err != nil {
		return nil, wrapStoreErr(err)
	}
	s.record(ctx, ident, t, action, string(t.Status))
	return t, nil
}

func (s *Service) record(ctx context.Context, ident middleware.Identity, t *Task, action, detail string) {
	s.recorder.Record(ctx, activity.Entry{
		CompanyID:  t.CompanyID,
		UserID:     ident.UserID,
		Action:     action,
		EntityType: "task",
		EntityID:   t.ID.String(),
		Detail:     detail,
		At:         s.now(),
	})
}

func parseAssignee(raw string) (id.UserID, error) {
	if raw == "" {
		return id.UserID{}, nil
	}
	assigneeID, err := id.ParseUserID(raw)
	if err != nil {
		return id.UserID{}, dErrors.NewValidation(map[string]string{"assigneeId": "assignee id is invalid"})
	}
	return assigneeID, nil
}

func wrapStoreErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "task not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "task store failure")
}
