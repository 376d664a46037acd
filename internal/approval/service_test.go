package approval

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/icnevudila/crm-sub011/internal/activity"
	"github.com/icnevudila/crm-sub011/internal/notification"
	"github.com/icnevudila/crm-sub011/internal/platform/authz"
	"github.com/icnevudila/crm-sub011/internal/platform/middleware"
	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
)

type fixture struct {
	svc           *Service
	notifications notification.Store
	requester     middleware.Identity
	approver      middleware.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	notifications := notification.NewInMemory()

	svc := NewService(NewInMemory(),
		activity.NewService(activity.NewInMemory(), logger),
		notification.NewService(notifications, logger), logger)

	companyID := id.NewCompanyID()
	return &fixture{
		svc:           svc,
		notifications: notifications,
		requester: middleware.Identity{
			UserID:    id.NewUserID(),
			CompanyID: companyID,
			Role:      authz.RoleSales,
		},
		approver: middleware.Identity{
			UserID:    id.NewUserID(),
			CompanyID: companyID,
			Role:      authz.RoleAdmin,
		},
	}
}

func TestCreateNotifiesApprover(t *testing.T) {
	f := newFixture(t)

	a, err := f.svc.Create(context.Background(), f.requester, CreateRequest{
		Subject:    "Discount above 20%",
		ApproverID: f.approver.UserID.String(),
		EntityType: "deal",
		EntityID:   id.NewDealID().String(),
	})
	if err != nil {
		t.Fatalf("create approval: %v", err)
	}
	if a.Status != StatusPending {
		t.Fatalf("new approval status = %s, want PENDING", a.Status)
	}

	got, err := f.notifications.ListByUser(context.Background(), f.approver.UserID, false)
	if err != nil || len(got) != 1 {
		t.Fatalf("expected one notification for the approver, got %d (%v)", len(got), err)
	}
	if got[0].Kind != notification.KindApprovalRequested {
		t.Fatalf("notification kind = %s, want %s", got[0].Kind, notification.KindApprovalRequested)
	}
}

func TestDecideSettlesOnce(t *testing.T) {
	f := newFixture(t)

	a, err := f.svc.Create(context.Background(), f.requester, CreateRequest{Subject: "Refund request"})
	if err != nil {
		t.Fatalf("create approval: %v", err)
	}

	decided, err := f.svc.Decide(context.Background(), f.approver, a.ID, DecideRequest{
		Decision: string(StatusApproved),
		Reason:   "within policy",
	})
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if decided.Status != StatusApproved || decided.DecidedBy != f.approver.UserID {
		t.Fatalf("unexpected decision record: %+v", decided)
	}
	if decided.DecidedAt == nil {
		t.Fatalf("expected a decision timestamp")
	}

	// The requester hears about the outcome.
	got, err := f.notifications.ListByUser(context.Background(), f.requester.UserID, false)
	if err != nil || len(got) != 1 {
		t.Fatalf("expected one notification for the requester, got %d (%v)", len(got), err)
	}
	if got[0].Kind != notification.KindApprovalDecided {
		t.Fatalf("notification kind = %s, want %s", got[0].Kind, notification.KindApprovalDecided)
	}

	// A settled approval cannot be decided again.
	_, err = f.svc.Decide(context.Background(), f.approver, a.ID, DecideRequest{Decision: string(StatusRejected)})
	if !dErrors.HasCode(err, dErrors.CodeConflict) {
		t.Fatalf("expected conflict deciding twice, got %v", err)
	}
}

func TestDecideIsTenantScoped(t *testing.T) {
	f := newFixture(t)

	a, err := f.svc.Create(context.Background(), f.requester, CreateRequest{Subject: "Contract change"})
	if err != nil {
		t.Fatalf("create approval: %v", err)
	}

	outsider := middleware.Identity{
		UserID:    id.NewUserID(),
		CompanyID: id.NewCompanyID(),
		Role:      authz.RoleAdmin,
	}
	_, err = f.svc.Decide(context.Background(), outsider, a.ID, DecideRequest{Decision: string(StatusApproved)})
	if !dErrors.HasCode(err, dErrors.CodeNotFound) {
		t.Fatalf("expected not found for another tenant's approval, got %v", err)
	}
}
