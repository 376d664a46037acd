package quote

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/icnevudila/crm-sub011/internal/activity"
	"github.com/icnevudila/crm-sub011/internal/customer"
	"github.com/icnevudila/crm-sub011/internal/platform/middleware"
	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

// InvoiceCreator turns an accepted quote into an invoice. Implemented by the
// invoice service; declared here so this package stays upstream of it.
type InvoiceCreator interface {
	CreateFromQuote(ctx context.Context, ident middleware.Identity, q *Quote) (id.InvoiceID, error)
}

// Service orchestrates the quote lifecycle within the caller's tenant scope.
type Service struct {
	store     Store
	customers customer.Store
	invoices  InvoiceCreator
	recorder  activity.Recorder
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(store Store, customers customer.Store, invoices InvoiceCreator,
	recorder activity.Recorder, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		customers: customers,
		invoices:  invoices,
		recorder:  recorder,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) Create(ctx context.Context, ident middleware.Identity, req UpsertRequest) (*Quote, error) {
	if ident.CompanyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "a company context is required to create quotes")
	}
	customerID, dealID, err := s.resolveRefs(ctx, ident, req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	q := &Quote{
		ID:         id.NewQuoteID(),
		CompanyID:  ident.CompanyID,
		CustomerID: customerID,
		DealID:     dealID,
		Title:      req.Title,
		Status:     StatusDraft,
		Lines:      toLines(req.Lines),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Create(ctx, q); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create quote")
	}
	s.record(ctx, ident, q, "quote.created", q.Title)
	return q, nil
}

func (s *Service) Get(ctx context.Context, ident middleware.Identity, quoteID id.QuoteID) (*Quote, error) {
	q, err := s.store.FindByID(ctx, ident.Scope(), quoteID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return q, nil
}

func (s *Service) List(ctx context.Context, ident middleware.Identity) ([]*Quote, error) {
	quotes, err := s.store.List(ctx, ident.Scope())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list quotes")
	}
	return quotes, nil
}

// Update replaces the fields and lines of a draft quote.
func (s *Service) Update(ctx context.Context, ident middleware.Identity, quoteID id.QuoteID, req UpsertRequest) (*Quote, error) {
	scope := ident.Scope()
	q, err := s.store.FindByID(ctx, scope, quoteID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if !q.Editable() {
		return nil, dErrors.New(dErrors.CodeConflict, "only a draft quote can be edited")
	}
	customerID, dealID, err := s.resolveRefs(ctx, ident, req)
	if err != nil {
		return nil, err
	}
	q.CustomerID = customerID
	q.DealID = dealID
	q.Title = req.Title
	q.Lines = toLines(req.Lines)
	q.UpdatedAt = s.now()
	if err := s.store.Update(ctx, scope, q); err != nil {
		return nil, wrapStoreErr(err)
	}
	s.record(ctx, ident, q, "quote.updated", q.Title)
	return q, nil
}

// Delete removes a draft quote. Sent and decided quotes are kept for the
// record.
func (s *Service) Delete(ctx context.Context, ident middleware.Identity, quoteID id.QuoteID) error {
	scope := ident.Scope()
	q, err := s.store.FindByID(ctx, scope, quoteID)
	if err != nil {
		return wrapStoreErr(err)
	}
	if !q.Editable() {
		return dErrors.New(dErrors.CodeConflict, "only a draft quote can be deleted")
	}
	if err := s.store.Delete(ctx, scope, quoteID); err != nil {
		return wrapStoreErr(err)
	}
	s.record(ctx, ident, q, "quote.deleted", q.Title)
	return nil
}

func (s *Service) Send(ctx context.Context, ident middleware.Identity, quoteID id.QuoteID) (*Quote, error) {
	return s.transition(ctx, ident, quoteID, "quote.sent", (*Quote).Send)
}

func (s *Service) Accept(ctx context.Context, ident middleware.Identity, quoteID id.QuoteID) (*Quote, error) {
	return s.transition(ctx, ident, quoteID, "quote.accepted", (*Quote).Accept)
}

func (s *Service) Decline(ctx context.Context, ident middleware.Identity, quoteID id.QuoteID) (*Quote, error) {
	return s.transition(ctx, ident, quoteID, "quote.declined", (*Quote).Decline)
}

// Convert creates an invoice from an accepted quote.
func (s *Service) Convert(ctx context.Context, ident middleware.Identity, quoteID id.QuoteID) (id.InvoiceID, error) {
	q, err := s.store.FindByID(ctx, ident.Scope(), quoteID)
	if err != nil {
		return id.InvoiceID{}, wrapStoreErr(err)
	}
	if q.Status != StatusAccepted {
		return id.InvoiceID{}, dErrors.New(dErrors.CodeConflict, "only an accepted quote can be converted to an invoice")
	}
	invoiceID, err := s.invoices.CreateFromQuote(ctx, ident, q)
	if err != nil {
		return id.InvoiceID{}, err
	}
	s.record(ctx, ident, q, "quote.converted", invoiceID.String())
	return invoiceID, nil
}

func (s *Service) transition(ctx context.Context, ident middleware.Identity, quoteID id.QuoteID,
	action string, apply func(*Quote, time.Time) error) (*Quote, error) {
	scope := ident.Scope()
	q, err := s.store.FindByID(ctx, scope, quoteID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if err := apply(q, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, scope, q); err != nil {
		return nil, wrapStoreErr(err)
	}
	s.record(ctx, ident, q, action, string(q.Status))
	return q, nil
}

func (s *Service) resolveRefs(ctx context.Context, ident middleware.Identity, req UpsertRequest) (id.CustomerID, id.DealID, error) {
	customerID, err := id.ParseCustomerID(req.CustomerID)
	if err != nil {
		return id.CustomerID{}, id.DealID{}, dErrors.NewValidation(map[string]string{"customerId": "customer id is invalid"})
	}
	if _, err := s.customers.FindByID(ctx, ident.Scope(), customerID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return id.CustomerID{}, id.DealID{}, dErrors.NewValidation(map[string]string{"customerId": "customer does not exist"})
		}
		return id.CustomerID{}, id.DealID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up customer")
	}
	var dealID id.DealID
	if req.DealID != "" {
		dealID, err = id.ParseDealID(req.DealID)
		if err != nil {
			return id.CustomerID{}, id.DealID{}, dErrors.NewValidation(map[string]string{"dealId": "deal id is invalid"})
		}
	}
	return customerID, dealID, nil
}

func (s *Service) record(ctx context.Context, ident middleware.Identity, q *Quote, action, detail string) {
	s.recorder.Record(ctx, activity.Entry{
		CompanyID:  q.CompanyID,
		UserID:     ident.UserID,
		Action:     action,
		EntityType: "quote",
		EntityID:   q.ID.String(),
		Detail:     detail,
		At:         s.now(),
	})
}

func toLines(reqs []LineRequest) []Line {
	lines := make([]Line, 0, len(reqs))
	for _, l := range reqs {
		lines = append(lines, Line{
			Description:    l.Description,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
		})
	}
	return lines
}

func wrapStoreErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "quote not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "quote store failure")
}
