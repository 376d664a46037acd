package assist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/icnevudila/crm-sub011/internal/customer"
	"github.com/icnevudila/crm-sub011/internal/deal"
	"github.com/icnevudila/crm-sub011/internal/platform/middleware"
	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

const (
	emailSystemPrompt = "You are a CRM assistant drafting concise, professional " +
		"follow-up emails on behalf of a sales representative. Reply with the email " +
		"body only, no subject line and no commentary."

	summarySystemPrompt = "You are a CRM assistant summarizing sales deals for an " +
		"account manager. Reply with a short plain-text summary, at most three " +
		"sentences, no commentary."
)

// Service generates text drafts grounded in CRM records. A nil completer
// means the feature is not configured and every call answers unavailable.
type Service struct {
	completer Completer
	customers customer.Store
	deals     deal.Store
	logger    *slog.Logger
}

func NewService(completer Completer, customers customer.Store, deals deal.Store, logger *slog.Logger) *Service {
	return &Service{completer: completer, customers: customers, deals: deals, logger: logger}
}

// Enabled reports whether a completion provider is configured.
func (s *Service) Enabled() bool { return s.completer != nil }

// FollowUpEmail drafts a follow-up email for a customer in the caller's scope.
func (s *Service) FollowUpEmail(ctx context.Context, ident middleware.Identity, req FollowUpEmailRequest) (*Response, error) {
	if !s.Enabled() {
		return nil, dErrors.New(dErrors.CodeUnavailable, "AI assistance is not configured")
	}
	customerID, err := id.ParseCustomerID(req.CustomerID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid customer id")
	}
	c, err := s.customers.FindByID(ctx, ident.Scope(), customerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "customer not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "customer lookup failed")
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Draft a follow-up email from %s to the customer below.\n\n", ident.CompanyName)
	fmt.Fprintf(&prompt, "Customer: %s\n", c.Name)
	if c.Email != "" {
		fmt.Fprintf(&prompt, "Email: %s\n", c.Email)
	}
	if c.Notes != "" {
		fmt.Fprintf(&prompt, "Notes on file: %s\n", c.Notes)
	}
	if req.Instructions != "" {
		fmt.Fprintf(&prompt, "\nAdditional instructions: %s\n", req.Instructions)
	}
	return s.complete(ctx, emailSystemPrompt, prompt.String())
}

// DealSummary produces a short summary of a deal in the caller's scope.
func (s *Service) DealSummary(ctx context.Context, ident middleware.Identity, req DealSummaryRequest) (*Response, error) {
	if !s.Enabled() {
		return nil, dErrors.New(dErrors.CodeUnavailable, "AI assistance is not configured")
	}
	dealID, err := id.ParseDealID(req.DealID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid deal id")
	}
	d, err := s.deals.FindByID(ctx, ident.Scope(), dealID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "deal not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "deal lookup failed")
	}

	var prompt strings.Builder
	prompt.WriteString("Summarize the following deal.\n\n")
	fmt.Fprintf(&prompt, "Title: %s\n", d.Title)
	fmt.Fprintf(&prompt, "Stage: %s\n", d.Stage)
	fmt.Fprintf(&prompt, "Value: $%.2f\n", float64(d.AmountCents)/100)
	if c, err := s.customers.FindByID(ctx, ident.Scope(), d.CustomerID); err == nil {
		fmt.Fprintf(&prompt, "Customer: %s\n", c.Name)
	}
	if d.ClosedAt != nil {
		fmt.Fprintf(&prompt, "Closed: %s\n", d.ClosedAt.Format("2006-01-02"))
	}
	return s.complete(ctx, summarySystemPrompt, prompt.String())
}

func (s *Service) complete(ctx context.Context, system, user string) (*Response, error) {
	text, err := s.completer.Complete(ctx, system, user)
	if err != nil {
		s.logger.ErrorContext(ctx, "completion provider failed", "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "text generation failed")
	}
	return &Response{Text: strings.TrimSpace(text)}, nil
}
