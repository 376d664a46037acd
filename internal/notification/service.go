package notification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

// Service creates and reads notifications.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

// Notify implements Notifier. Failures are logged and swallowed so a
// notification write never fails the mutation that triggered it.
func (s *Service) Notify(ctx context.Context, companyID id.CompanyID, userID id.UserID, kind Kind, title, body string) {
	if userID.IsNil() {
		return
	}
	n := &Notification{
		ID:        id.NewNotificationID(),
		CompanyID: companyID,
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Body:      body,
		CreatedAt: s.now(),
	}
	if err := s.store.Create(ctx, n); err != nil {
		s.logger.ErrorContext(ctx, "failed to create notification",
			"error", err,
			"kind", kind,
			"user_id", userID,
		)
	}
}

// List returns the caller's notifications, newest first.
func (s *Service) List(ctx context.Context, userID id.UserID, unreadOnly bool) ([]*Notification, error) {
	notifications, err := s.store.ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notifications")
	}
	return notifications, nil
}

// MarkRead marks one of the caller's notifications as read. Notifications of
// other users are reported as not found.
func (s *Service) MarkRead(ctx context.Context, userID id.UserID, notificationID id.NotificationID) error {
	n, err := s.store.FindByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "notification not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load notification")
	}
	if n.UserID != userID {
		return dErrors.New(dErrors.CodeNotFound, "notification not found")
	}
	if err := s.store.MarkRead(ctx, notificationID, s.now()); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notification read")
	}
	return nil
}

// MarkAllRead marks every unread notification of the caller as read.
func (s *Service) MarkAllRead(ctx context.Context, userID id.UserID) error {
	if err := s.store.MarkAllRead(ctx, userID, s.now()); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notifications read")
	}
	return nil
}
