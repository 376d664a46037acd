package quote_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/icnevudila/crm-sub011/internal/activity"
	"github.com/icnevudila/crm-sub011/internal/customer"
	"github.com/icnevudila/crm-sub011/internal/invoice"
	"github.com/icnevudila/crm-sub011/internal/platform/authz"
	"github.com/icnevudila/crm-sub011/internal/platform/middleware"
	"github.com/icnevudila/crm-sub011/internal/quote"
	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
)

type fixture struct {
	svc        *quote.Service
	invoices   invoice.Store
	ident      middleware.Identity
	customerID id.CustomerID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	customers := customer.NewInMemory()
	invoices := invoice.NewInMemory()
	recorder := activity.NewService(activity.NewInMemory(), logger)

	companyID := id.NewCompanyID()
	cust := &customer.Customer{
		ID:        id.NewCustomerID(),
		CompanyID: companyID,
		Name:      "Initech",
	}
	if err := customers.Create(context.Background(), cust); err != nil {
		t.Fatalf("seed customer: %v", err)
	}

	invoiceSvc := invoice.NewService(invoices, customers, recorder, logger)
	svc := quote.NewService(quote.NewInMemory(), customers, invoiceSvc, recorder, logger)

	return &fixture{
		svc:      svc,
		invoices: invoices,
		ident: middleware.Identity{
			UserID:    id.NewUserID(),
			CompanyID: companyID,
			Role:      authz.RoleSales,
		},
		customerID: cust.ID,
	}
}

func (f *fixture) create(t *testing.T, lines []quote.LineRequest) *quote.Quote {
	t.Helper()
	q, err := f.svc.Create(context.Background(), f.ident, quote.UpsertRequest{
		Title:      "Annual supply",
		CustomerID: f.customerID.String(),
		Lines:      lines,
	})
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}
	return q
}

var testLines = []quote.LineRequest{
	{Description: "Widgets", Quantity: 10, UnitPriceCents: 2_500},
	{Description: "Install", Quantity: 1, UnitPriceCents: 50_000},
}

func TestQuoteTotals(t *testing.T) {
	f := newFixture(t)
	q := f.create(t, testLines)
	if got := q.TotalCents(); got != 75_000 {
		t.Fatalf("TotalCents() = %d, want 75000", got)
	}
}

func TestSendRequiresLines(t *testing.T) {
	f := newFixture(t)
	q := f.create(t, nil)

	if _, err := f.svc.Send(context.Background(), f.ident, q.ID); !dErrors.HasCode(err, dErrors.CodeValidation) {
		t.Fatalf("expected validation error sending an empty quote, got %v", err)
	}
}

func TestOnlyDraftIsEditable(t *testing.T) {
	f := newFixture(t)
	q := f.create(t, testLines)

	if _, err := f.svc.Send(context.Background(), f.ident, q.ID); err != nil {
		t.Fatalf("send quote: %v", err)
	}

	_, err := f.svc.Update(context.Background(), f.ident, q.ID, quote.UpsertRequest{
		Title:      "Revised",
		CustomerID: f.customerID.String(),
		Lines:      testLines,
	})
	if !dErrors.HasCode(err, dErrors.CodeConflict) {
		t.Fatalf("expected conflict editing a sent quote, got %v", err)
	}

	if err := f.svc.Delete(context.Background(), f.ident, q.ID); !dErrors.HasCode(err, dErrors.CodeConflict) {
		t.Fatalf("expected conflict deleting a sent quote, got %v", err)
	}
}

func TestLifecycleGuards(t *testing.T) {
	f := newFixture(t)
	q := f.create(t, testLines)

	// Accepting a draft skips the sent step.
	if _, err := f.svc.Accept(context.Background(), f.ident, q.ID); !dErrors.HasCode(err, dErrors.CodeConflict) {
		t.Fatalf("expected conflict accepting a draft, got %v", err)
	}

	if _, err := f.svc.Send(context.Background(), f.ident, q.ID); err != nil {
		t.Fatalf("send quote: %v", err)
	}
	if _, err := f.svc.Decline(context.Background(), f.ident, q.ID); err != nil {
		t.Fatalf("decline quote: %v", err)
	}
	if _, err := f.svc.Accept(context.Background(), f.ident, q.ID); !dErrors.HasCode(err, dErrors.CodeConflict) {
		t.Fatalf("expected conflict accepting a declined quote, got %v", err)
	}
}

func TestConvertAcceptedQuote(t *testing.T) {
	f := newFixture(t)
	q := f.create(t, testLines)

	// Conversion needs acceptance first.
	if _, err := f.svc.Convert(context.Background(), f.ident, q.ID); !dErrors.HasCode(err, dErrors.CodeConflict) {
		t.Fatalf("expected conflict converting a draft, got %v", err)
	}

	if _, err := f.svc.Send(context.Background(), f.ident, q.ID); err != nil {
		t.Fatalf("send quote: %v", err)
	}
	if _, err := f.svc.Accept(context.Background(), f.ident, q.ID); err != nil {
		t.Fatalf("accept quote: %v", err)
	}

	invoiceID, err := f.svc.Convert(context.Background(), f.ident, q.ID)
	if err != nil {
		t.Fatalf("convert quote: %v", err)
	}

	inv, err := f.invoices.FindByID(context.Background(), f.ident.Scope(), invoiceID)
	if err != nil {
		t.Fatalf("load invoice: %v", err)
	}
	if inv.AmountCents != 75_000 {
		t.Fatalf("invoice amount = %d, want the quote total 75000", inv.AmountCents)
	}
	if inv.QuoteID != q.ID {
		t.Fatalf("expected invoice to reference the source quote")
	}
	if inv.Status != invoice.StatusDraft {
		t.Fatalf("expected converted invoice to start as a draft, got %s", inv.Status)
	}
}
