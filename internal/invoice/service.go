package invoice

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/icnevudila/crm-sub011/internal/activity"
	"github.com/icnevudila/crm-sub011/internal/customer"
	"github.com/icnevudila/crm-sub011/internal/platform/middleware"
	"github.com/icnevudila/crm-sub011/internal/quote"
	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

// defaultConvertTerms is the payment window stamped on invoices created from
// accepted quotes.
const defaultConvertTerms = 30 * 24 * time.Hour

// Service orchestrates the invoice lifecycle within the caller's tenant scope.
type Service struct {
	store     Store
	customers customer.Store
	recorder  activity.Recorder
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(store Store, customers customer.Store, recorder activity.Recorder, logger *slog.Logger) *Service {
	return &Service{store: store, customers: customers, recorder: recorder, logger: logger, now: time.Now}
}

func (s *Service) Create(ctx context.Context, ident middleware.Identity, req UpsertRequest) (*Invoice, error) {
	if ident.CompanyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "a company context is required to create invoices")
	}
	customerID, err := s.resolveCustomer(ctx, ident, req.CustomerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	i := &Invoice{
		ID:          id.NewInvoiceID(),
		CompanyID:   ident.CompanyID,
		CustomerID:  customerID,
		Title:       req.Title,
		AmountCents: req.AmountCents,
		Status:      StatusDraft,
		DueAt:       req.DueAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, i); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create invoice")
	}
	s.record(ctx, ident, i, "invoice.created", i.Title)
	return i, nil
}

// CreateFromQuote implements quote.InvoiceCreator. The invoice carries the
// quote's title, customer, and total, due in thirty days.
func (s *Service) CreateFromQuote(ctx context.Context, ident middleware.Identity, q *quote.Quote) (id.InvoiceID, error) {
	now := s.now()
	i := &Invoice{
		ID:          id.NewInvoiceID(),
		CompanyID:   q.CompanyID,
		CustomerID:  q.CustomerID,
		QuoteID:     q.ID,
		Title:       q.Title,
		AmountCents: q.TotalCents(),
		Status:      StatusDraft,
		DueAt:       now.Add(defaultConvertTerms),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, i); err != nil {
		return id.InvoiceID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create invoice from quote")
	}
	s.record(ctx, ident, i, "invoice.created", "converted from quote "+q.ID.String())
	return i.ID, nil
}

func (s *Service) Get(ctx context.Context, ident middleware.Identity, invoiceID id.InvoiceID) (*Invoice, error) {
	i, err := s.store.FindByID(ctx, ident.Scope(), invoiceID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return i, nil
}

func (s *Service) List(ctx context.Context, ident middleware.Identity) ([]*Invoice, error) {
	invoices, err := s.store.List(ctx, ident.Scope())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list invoices")
	}
	return invoices, nil
}

// Update edits a draft invoice. Sent and settled invoices are immutable.
func (s *Service) Update(ctx context.Context, ident middleware.Identity, invoiceID id.InvoiceID, req UpsertRequest) (*Invoice, error) {
	scope := ident.Scope()
	i, err := s.store.FindByID(ctx, scope, invoiceID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if i.Status != StatusDraft {
		return nil, dErrors.New(dErrors.CodeConflict, "only a draft invoice can be edited")
	}
	customerID, err := s.resolveCustomer(ctx, ident, req.CustomerID)
	if err != nil {
		return nil, err
	}
	i.CustomerID = customerID
	i.Title = req.Title
	i.AmountCents = req.AmountCents
	i.DueAt = req.DueAt
	i.UpdatedAt = s.now()
	if err := s.store.Update(ctx, scope, i); err != nil {
		return nil, wrapStoreErr(err)
	}
	s.record(ctx, ident, i, "invoice.updated", i.Title)
	return i, nil
}

func (s *Service) Send(ctx context.Context, ident middleware.Identity, invoiceID id.InvoiceID) (*Invoice, error) {
	return s.transition(ctx, ident, invoiceID, "invoice.sent", (*Invoice).Send)
}

func (s *Service) MarkPaid(ctx context.Context, ident middleware.Identity, invoiceID id.InvoiceID) (*Invoice, error) {
	return s.transition(ctx, ident, invoiceID, "invoice.paid", (*Invoice).MarkPaid)
}

func (s *Service) Void(ctx context.Context, ident middleware.Identity, invoiceID id.InvoiceID) (*Invoice, error) {
	return s.transition(ctx, ident, invoiceID, "invoice.voided", (*Invoice).Void)
}

func (s *Service) transition(ctx context.Context, ident middleware.Identity, invoiceID id.InvoiceID,
	action string, apply func(*Invoice, time.Time) error) (*Invoice, error) {
	scope := ident.Scope()
	i, err := s.store.FindByID(ctx, scope, invoiceID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if err := apply(i, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, scope, i); err != nil {
		return nil, wrapStoreErr(err)
	}
	s.record(ctx, ident, i, action, string(i.Status))
	return i, nil
}

func (s *Service) resolveCustomer(ctx context.Context, ident middleware.Identity, raw string) (id.CustomerID, error) {
	customerID, err := id.ParseCustomerID(raw)
	if err != nil {
		return id.CustomerID{}, dErrors.NewValidation(map[string]string{"customerId": "customer id is invalid"})
	}
	if _, err := s.customers.FindByID(ctx, ident.Scope(), customerID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return id.CustomerID{}, dErrors.NewValidation(map[string]string{"customerId": "customer does not exist"})
		}
		return id.CustomerID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up customer")
	}
	return customerID, nil
}

func (s *Service) record(ctx context.Context, ident middleware.Identity, i *Invoice, action, detail string) {
	s.recorder.Record(ctx, activity.Entry{
		CompanyID:  i.CompanyID,
		UserID:     ident.UserID,
		Action:     action,
		EntityType: "invoice",
		EntityID:   i.ID.String(),
		Detail:     detail,
		At:         s.now(),
	})
}

func wrapStoreErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "invoice not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "invoice store failure")
}
