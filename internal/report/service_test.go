package report

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/icnevudila/crm-sub011/internal/customer"
	"github.com/icnevudila/crm-sub011/internal/deal"
	"github.com/icnevudila/crm-sub011/internal/invoice"
	"github.com/icnevudila/crm-sub011/internal/platform/authz"
	"github.com/icnevudila/crm-sub011/internal/platform/middleware"
	"github.com/icnevudila/crm-sub011/internal/ticket"
	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
)

type env struct {
	svc       *Service
	customers customer.Store
	deals     deal.Store
	clock     *fakeClock
	identA    middleware.Identity
	identB    middleware.Identity
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	clock := &fakeClock{now: time.Now()}
	customers := customer.NewInMemory()
	deals := deal.NewInMemory()

	svc := NewService(NewInMemoryCache(), customers, deals,
		invoice.NewInMemory(), ticket.NewInMemory(), time.Hour, logger,
		WithClock(clock.Now))

	return &env{
		svc:       svc,
		customers: customers,
		deals:     deals,
		clock:     clock,
		identA: middleware.Identity{
			UserID:    id.NewUserID(),
			CompanyID: id.NewCompanyID(),
			Role:      authz.RoleManager,
		},
		identB: middleware.Identity{
			UserID:    id.NewUserID(),
			CompanyID: id.NewCompanyID(),
			Role:      authz.RoleManager,
		},
	}
}

func (e *env) seedCustomer(t *testing.T, companyID id.CompanyID, name string) {
	t.Helper()
	err := e.customers.Create(context.Background(), &customer.Customer{
		ID:        id.NewCustomerID(),
		CompanyID: companyID,
		Name:      name,
		CreatedAt: e.clock.now,
		UpdatedAt: e.clock.now,
	})
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}
}

func TestUnknownReportType(t *testing.T) {
	e := newEnv(t)
	if _, err := e.svc.Get(context.Background(), e.identA, "profit_margins", false); !dErrors.HasCode(err, dErrors.CodeNotFound) {
		t.Fatalf("expected not found for unknown report type, got %v", err)
	}
}

func TestFreshCacheIsServedWithoutRecompute(t *testing.T) {
	e := newEnv(t)
	e.seedCustomer(t, e.identA.CompanyID, "Northwind")

	first, err := e.svc.Get(context.Background(), e.identA, TypeCustomerSummary, false)
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	if first.Cached {
		t.Fatalf("first request must compute")
	}

	// Data written after the snapshot must not appear within the TTL window.
	e.seedCustomer(t, e.identA.CompanyID, "Initech")

	second, err := e.svc.Get(context.Background(), e.identA, TypeCustomerSummary, false)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if !second.Cached {
		t.Fatalf("second request within the TTL must come from cache")
	}
	if !bytes.Equal(first.Data, second.Data) {
		t.Fatalf("cached payload differs from the computed one")
	}
}

func TestForceRefreshRecomputes(t *testing.T) {
	e := newEnv(t)
	e.seedCustomer(t, e.identA.CompanyID, "Northwind")

	if _, err := e.svc.Get(context.Background(), e.identA, TypeCustomerSummary, false); err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	e.seedCustomer(t, e.identA.CompanyID, "Initech")

	res, err := e.svc.Get(context.Background(), e.identA, TypeCustomerSummary, true)
	if err != nil {
		t.Fatalf("forced get: %v", err)
	}
	if res.Cached {
		t.Fatalf("forced refresh must recompute")
	}

	var summary struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(res.Data, &summary); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if summary.Total != 2 {
		t.Fatalf("recomputed total = %d, want 2", summary.Total)
	}
}

func TestTTLExpiryRecomputes(t *testing.T) {
	e := newEnv(t)
	e.seedCustomer(t, e.identA.CompanyID, "Northwind")

	if _, err := e.svc.Get(context.Background(), e.identA, TypeCustomerSummary, false); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	e.clock.now = e.clock.now.Add(2 * time.Hour)

	res, err := e.svc.Get(context.Background(), e.identA, TypeCustomerSummary, false)
	if err != nil {
		t.Fatalf("get after expiry: %v", err)
	}
	if res.Cached {
		t.Fatalf("a stale entry must never be served")
	}
}

func TestCacheIsScopedPerTenant(t *testing.T) {
	e := newEnv(t)
	e.seedCustomer(t, e.identA.CompanyID, "Northwind")
	e.seedCustomer(t, e.identA.CompanyID, "Initech")
	e.seedCustomer(t, e.identB.CompanyID, "Stark")

	resA, err := e.svc.Get(context.Background(), e.identA, TypeCustomerSummary, false)
	if err != nil {
		t.Fatalf("tenant A get: %v", err)
	}
	resB, err := e.svc.Get(context.Background(), e.identB, TypeCustomerSummary, false)
	if err != nil {
		t.Fatalf("tenant B get: %v", err)
	}
	if resB.Cached {
		t.Fatalf("tenant B must not hit tenant A's cache entry")
	}

	var a, b struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(resA.Data, &a); err != nil {
		t.Fatalf("decode A: %v", err)
	}
	if err := json.Unmarshal(resB.Data, &b); err != nil {
		t.Fatalf("decode B: %v", err)
	}
	if a.Total != 2 || b.Total != 1 {
		t.Fatalf("totals = %d/%d, want 2/1", a.Total, b.Total)
	}

	superAdmin := middleware.Identity{UserID: id.NewUserID(), Role: authz.RoleSuperAdmin}
	resAll, err := e.svc.Get(context.Background(), superAdmin, TypeCustomerSummary, false)
	if err != nil {
		t.Fatalf("super-admin get: %v", err)
	}
	if resAll.Cached {
		t.Fatalf("the global scope has its own cache entry")
	}
	var all struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(resAll.Data, &all); err != nil {
		t.Fatalf("decode global: %v", err)
	}
	if all.Total != 3 {
		t.Fatalf("global total = %d, want 3", all.Total)
	}
}

func TestOverviewAssemblesAllReports(t *testing.T) {
	e := newEnv(t)
	e.seedCustomer(t, e.identA.CompanyID, "Northwind")

	out, err := e.svc.Overview(context.Background(), e.identA, false)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	for _, reportType := range []string{TypeCustomerSummary, TypeSalesPipeline, TypeInvoiceAging, TypeTicketLoad} {
		res, ok := out[reportType]
		if !ok || res == nil {
			t.Fatalf("missing report %s in overview", reportType)
		}
		if res.ReportType != reportType {
			t.Fatalf("report %s labeled %s", reportType, res.ReportType)
		}
	}
}
