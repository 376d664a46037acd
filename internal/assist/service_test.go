package assist

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/icnevudila/crm-sub011/internal/customer"
	"github.com/icnevudila/crm-sub011/internal/deal"
	"github.com/icnevudila/crm-sub011/internal/platform/authz"
	"github.com/icnevudila/crm-sub011/internal/platform/middleware"
	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
)

type fakeCompleter struct {
	reply    string
	err      error
	lastUser string
}

func (f *fakeCompleter) Complete(_ context.Context, _, user string) (string, error) {
	f.lastUser = user
	return f.reply, f.err
}

type fixture struct {
	completer  *fakeCompleter
	svc        *Service
	ident      middleware.Identity
	customerID id.CustomerID
	dealID     id.DealID
}

func newFixture(t *testing.T, completer Completer) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	customers := customer.NewInMemory()
	deals := deal.NewInMemory()

	companyID := id.NewCompanyID()
	cust := &customer.Customer{
		ID:        id.NewCustomerID(),
		CompanyID: companyID,
		Name:      "Northwind Traders",
		Email:     "purchasing@northwind.example",
		Notes:     "Prefers quarterly billing.",
	}
	if err := customers.Create(context.Background(), cust); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	d := &deal.Deal{
		ID:          id.NewDealID(),
		CompanyID:   companyID,
		CustomerID:  cust.ID,
		Title:       "Annual supply contract",
		AmountCents: 1_250_000,
		Stage:       deal.StageNegotiation,
	}
	if err := deals.Create(context.Background(), d); err != nil {
		t.Fatalf("seed deal: %v", err)
	}

	fake, _ := completer.(*fakeCompleter)
	return &fixture{
		completer: fake,
		svc:       NewService(completer, customers, deals, logger),
		ident: middleware.Identity{
			UserID:      id.NewUserID(),
			CompanyID:   companyID,
			CompanyName: "Acme Manufacturing",
			Role:        authz.RoleSales,
		},
		customerID: cust.ID,
		dealID:     d.ID,
	}
}

func TestDisabledServiceAnswersUnavailable(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.FollowUpEmail(context.Background(), f.ident, FollowUpEmailRequest{CustomerID: f.customerID.String()})
	if !dErrors.HasCode(err, dErrors.CodeUnavailable) {
		t.Fatalf("expected unavailable without a provider, got %v", err)
	}
	_, err = f.svc.DealSummary(context.Background(), f.ident, DealSummaryRequest{DealID: f.dealID.String()})
	if !dErrors.HasCode(err, dErrors.CodeUnavailable) {
		t.Fatalf("expected unavailable without a provider, got %v", err)
	}
}

func TestFollowUpEmailGroundsPromptInRecord(t *testing.T) {
	f := newFixture(t, &fakeCompleter{reply: "  Hi there,\nthanks for the call.  "})

	res, err := f.svc.FollowUpEmail(context.Background(), f.ident, FollowUpEmailRequest{
		CustomerID:   f.customerID.String(),
		Instructions: "mention the new pricing",
	})
	if err != nil {
		t.Fatalf("follow-up email: %v", err)
	}
	if res.Text != "Hi there,\nthanks for the call." {
		t.Fatalf("expected trimmed provider reply, got %q", res.Text)
	}
	for _, want := range []string{"Northwind Traders", "Acme Manufacturing", "mention the new pricing"} {
		if !strings.Contains(f.completer.lastUser, want) {
			t.Fatalf("prompt is missing %q:\n%s", want, f.completer.lastUser)
		}
	}
}

func TestDealSummaryIsTenantScoped(t *testing.T) {
	f := newFixture(t, &fakeCompleter{reply: "summary"})

	outsider := middleware.Identity{
		UserID:    id.NewUserID(),
		CompanyID: id.NewCompanyID(),
		Role:      authz.RoleSales,
	}
	_, err := f.svc.DealSummary(context.Background(), outsider, DealSummaryRequest{DealID: f.dealID.String()})
	if !dErrors.HasCode(err, dErrors.CodeNotFound) {
		t.Fatalf("expected not found for another tenant's deal, got %v", err)
	}
}

func TestProviderFailureSurfacesAsUpstream(t *testing.T) {
	f := newFixture(t, &fakeCompleter{err: errors.New("rate limited")})

	_, err := f.svc.DealSummary(context.Background(), f.ident, DealSummaryRequest{DealID: f.dealID.String()})
	if !dErrors.HasCode(err, dErrors.CodeUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
