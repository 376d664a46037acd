package deal

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/icnevudila/crm-sub011/internal/activity"
	"github.com/icnevudila/crm-sub011/internal/customer"
	"github.com/icnevudila/crm-sub011/internal/notification"
	"github.com/icnevudila/crm-sub011/internal/platform/authz"
	"github.com/icnevudila/crm-sub011/internal/platform/middleware"
	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

type fixture struct {
	svc           *Service
	notifications notification.Store
	companyID     id.CompanyID
	ident         middleware.Identity
	customerID    id.CustomerID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := testLogger()
	customers := customer.NewInMemory()
	notifications := notification.NewInMemory()

	companyID := id.NewCompanyID()
	cust := &customer.Customer{
		ID:        id.NewCustomerID(),
		CompanyID: companyID,
		Name:      "Northwind",
	}
	if err := customers.Create(context.Background(), cust); err != nil {
		t.Fatalf("seed customer: %v", err)
	}

	svc := NewService(NewInMemory(), customers,
		activity.NewService(activity.NewInMemory(), logger),
		notification.NewService(notifications, logger), logger)

	return &fixture{
		svc:           svc,
		notifications: notifications,
		companyID:     companyID,
		ident: middleware.Identity{
			UserID:    id.NewUserID(),
			CompanyID: companyID,
			Role:      authz.RoleSales,
		},
		customerID: cust.ID,
	}
}

func TestCreateDealRequiresCompany(t *testing.T) {
	f := newFixture(t)
	superAdmin := middleware.Identity{UserID: id.NewUserID(), Role: authz.RoleSuperAdmin}

	_, err := f.svc.Create(context.Background(), superAdmin, CreateRequest{
		Title:      "Big deal",
		CustomerID: f.customerID.String(),
	})
	if !dErrors.HasCode(err, dErrors.CodeBadRequest) {
		t.Fatalf("expected bad request without a company context, got %v", err)
	}
}

func TestCreateDealValidatesCustomer(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.ident, CreateRequest{
		Title:      "Orphan",
		CustomerID: id.NewCustomerID().String(),
	})
	if !dErrors.HasCode(err, dErrors.CodeNotFound) {
		t.Fatalf("expected not found for unknown customer, got %v", err)
	}
}

func TestDealsAreTenantScoped(t *testing.T) {
	f := newFixture(t)

	d, err := f.svc.Create(context.Background(), f.ident, CreateRequest{
		Title:       "Annual contract",
		CustomerID:  f.customerID.String(),
		AmountCents: 125_000,
	})
	if err != nil {
		t.Fatalf("create deal: %v", err)
	}

	outsider := middleware.Identity{
		UserID:    id.NewUserID(),
		CompanyID: id.NewCompanyID(),
		Role:      authz.RoleAdmin,
	}
	if _, err := f.svc.Get(context.Background(), outsider, d.ID); !dErrors.HasCode(err, dErrors.CodeNotFound) {
		t.Fatalf("expected cross-tenant read to surface not found, got %v", err)
	}

	superAdmin := middleware.Identity{UserID: id.NewUserID(), Role: authz.RoleSuperAdmin}
	if _, err := f.svc.Get(context.Background(), superAdmin, d.ID); err != nil {
		t.Fatalf("expected super-admin to cross tenants: %v", err)
	}

	deals, err := f.svc.List(context.Background(), outsider)
	if err != nil {
		t.Fatalf("list deals: %v", err)
	}
	if len(deals) != 0 {
		t.Fatalf("expected empty list for another tenant, got %d rows", len(deals))
	}
}

func TestMoveStageNotifiesOwnerOnWin(t *testing.T) {
	f := newFixture(t)
	ownerID := id.NewUserID()

	d, err := f.svc.Create(context.Background(), f.ident, CreateRequest{
		Title:       "Pilot rollout",
		CustomerID:  f.customerID.String(),
		OwnerID:     ownerID.String(),
		AmountCents: 300_000,
	})
	if err != nil {
		t.Fatalf("create deal: %v", err)
	}

	for _, next := range []Stage{StageQualified, StageProposal, StageNegotiation, StageWon} {
		if d, err = f.svc.MoveStage(context.Background(), f.ident, d.ID, next); err != nil {
			t.Fatalf("move to %s: %v", next, err)
		}
	}
	if d.ClosedAt == nil {
		t.Fatalf("expected won deal to carry a close timestamp")
	}

	got, err := f.notifications.ListByUser(context.Background(), ownerID, false)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(got) != 1 || got[0].Kind != notification.KindDealWon {
		t.Fatalf("expected one deal.won notification for the owner, got %+v", got)
	}
}

func TestMoveStageRejectsSkips(t *testing.T) {
	f := newFixture(t)

	d, err := f.svc.Create(context.Background(), f.ident, CreateRequest{
		Title:      "Skipper",
		CustomerID: f.customerID.String(),
	})
	if err != nil {
		t.Fatalf("create deal: %v", err)
	}

	if _, err := f.svc.MoveStage(context.Background(), f.ident, d.ID, StageWon); !dErrors.HasCode(err, dErrors.CodeConflict) {
		t.Fatalf("expected conflict skipping stages, got %v", err)
	}
}
