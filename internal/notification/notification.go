// Package notification delivers in-app notifications created by domain events
// (approval decisions, won deals, assignments).
package notification

import (
	"context"
	"time"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
)

// Kind labels the event that produced a notification.
type Kind string

const (
	KindApprovalRequested Kind = "approval.requested"
	KindApprovalDecided   Kind = "approval.decided"
	KindDealWon           Kind = "deal.won"
	KindTaskAssigned      Kind = "task.assigned"
	KindTicketAssigned    Kind = "ticket.assigned"
)

// Notification is one message addressed to a user.
type Notification struct {
	ID        id.NotificationID
	CompanyID id.CompanyID
	UserID    id.UserID
	Kind      Kind
	Title     string
	Body      string
	ReadAt    *time.Time
	CreatedAt time.Time
}

// Notifier is the write side consumed by domain services. Delivery is
// best-effort: failures are logged, never propagated into the mutation path.
type Notifier interface {
	Notify(ctx context.Context, companyID id.CompanyID, userID id.UserID, kind Kind, title, body string)
}

// Store is the persistence contract for notifications.
type Store interface {
	Create(ctx context.Context, n *Notification) error
	// ListByUser returns newest-first notifications for a user.
	ListByUser(ctx context.Context, userID id.UserID, unreadOnly bool) ([]*Notification, error)
	FindByID(ctx context.Context, notificationID id.NotificationID) (*Notification, error)
	MarkRead(ctx context.Context, notificationID id.NotificationID, at time.Time) error
	MarkAllRead(ctx context.Context, userID id.UserID, at time.Time) error
}
