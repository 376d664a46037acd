package approval

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

// Service orchestrates approval requests and decisions within the caller's
// tenant scope. The decide permission is enforced by the router's policy gate.
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

func (s *Service) Create(ctx context.Context, ident middleware.Identity, req CreateRequest) (*Approval, error) {
	if ident.CompanyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "a company context is required to request approvals")
	}
	var approverID id.UserID
	if req.ApproverID != "" {
		var err error
		approverID, err = id.ParseUserID(req.ApproverID)
		if err != nil {
			return nil, dErrors.NewValidation(map[string]string{"approverId": "approver id is invalid"})
		}
	}

	now := s.now()
	a := &Approval{
		ID:          id.NewApprovalID(),
		CompanyID:   ident.CompanyID,
		RequesterID: ident.UserID,
		ApproverID:  approverID,
		Subject:     req.Subject,
		Description: req.Description,
		EntityType:  req.EntityType,
		EntityID:    req.EntityID,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create approval")
	}
	s.record(ctx, ident, a, "approval.requested", a.Subject)
	if !a.ApproverID.IsNil() {
		s.notifier.Notify(ctx, a.CompanyID, a.ApproverID, notification.KindApprovalRequested,
			"Approval requested", a.Subject)
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, ident middleware.Identity, approvalID id.ApprovalID) (*Approval, error) {
	a, err := s.store.FindByID(ctx, ident.Scope(), approvalID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, ident middleware.Identity) ([]*Approval, error) {
	approvals, err := s.store.List(ctx, ident.Scope())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list approvals")
	}
	return approvals, nil
}

// Decide settles a pending approval and notifies the requester.
func (s *Service) Decide(ctx context.Context, ident middleware.Identity, approvalID id.ApprovalID, req DecideRequest) (*Approval, error) {
	scope := ident.Scope()
	a, err := s.store.FindByID(ctx, scope, approvalID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if err := a.Decide(Status(req.Decision), ident.UserID, req.Reason, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, scope, a); err != nil {
		return nil, wrapStoreErr(err)
	}
	s.record(ctx, ident, a, "approval.decided", string(a.Status))
	s.notifier.Notify(ctx, a.CompanyID, a.RequesterID, notification.KindApprovalDecided,
		"Approval "+string(a.Status), a.Subject)
	return a, nil
}

func (s *Service) record(ctx context.Context, ident middleware.Identity, a *Approval, action, detail string) {
	s.recorder.Record(ctx, activity.Entry{
		CompanyID:  a.CompanyID,
		UserID:     ident.UserID,
		Action:     action,
		EntityType: "approval",
		EntityID:   a.ID.String(),
		Detail:     detail,
		At:         s.now(),
	})
}

func wrapStoreErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "approval not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "approval store failure")
}
