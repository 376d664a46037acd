// Package invoice manages billing documents. An invoice is drafted, sent, and
// then either paid or voided; paid invoices record when the money arrived.
package invoice

import (
	"strings"
	"time"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
)

// Status is the invoice lifecycle state.
type Status string

const (
	StatusDraft Status = "DRAFT"
	StatusSent  Status = "SENT"
	StatusPaid  Status = "PAID"
	StatusVoid  Status = "VOID"
)

// Invoice is one billing document.
type Invoice struct {
	ID          id.InvoiceID
	CompanyID   id.CompanyID
	CustomerID  id.CustomerID
	QuoteID     id.QuoteID // set when converted from a quote
	Title       string
	AmountCents int64
	Status      Status
	DueAt       time.Time
	PaidAt      *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Send marks the draft as delivered to the customer.
func (i *Invoice) Send(now time.Time) error {
	if i.Status != StatusDraft {
		return dErrors.New(dErrors.CodeConflict, "only a draft invoice can be sent")
	}
	i.Status = StatusSent
	i.UpdatedAt = now
	return nil
}

// MarkPaid records payment of a sent invoice.
func (i *Invoice) MarkPaid(now time.Time) error {
	if i.Status != StatusSent {
		return dErrors.New(dErrors.CodeConflict, "only a sent invoice can be marked paid")
	}
	i.Status = StatusPaid
	paid := now
	i.PaidAt = &paid
	i.UpdatedAt = now
	return nil
}

// Void cancels a sent invoice.
func (i *Invoice) Void(now time.Time) error {
	if i.Status != StatusSent {
		return dErrors.New(dErrors.CodeConflict, "only a sent invoice can be voided")
	}
	i.Status = StatusVoid
	i.UpdatedAt = now
	return nil
}

// Overdue reports whether a sent invoice is past its due date.
func (i *Invoice) Overdue(now time.Time) bool {
	return i.Status == StatusSent && now.After(i.DueAt)
}

const maxTitleLength = 200

// UpsertRequest is the body for create and draft update.
type UpsertRequest struct {
	Title       string    `json:"title"`
	CustomerID  string    `json:"customerId"`
	AmountCents int64     `json:"amountCents"`
	DueAt       time.Time `json:"dueAt"`
}

func (r *UpsertRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.CustomerID = strings.TrimSpace(r.CustomerID)
}

func (r *UpsertRequest) Validate() error {
	fields := map[string]string{}
	if r.Title == "" {
		fields["title"] = "title is required"
	}
	if len(r.Title) > maxTitleLength {
		fields["title"] = "title is too long"
	}
	if r.CustomerID == "" {
		fields["customerId"] = "customer is required"
	}
	if r.AmountCents <= 0 {
		fields["amountCents"] = "amount must be positive"
	}
	if r.DueAt.IsZero() {
		fields["dueAt"] = "due date is required"
	}
	if len(fields) > 0 {
		return dErrors.NewValidation(fields)
	}
	return nil
}

// Response is the JSON shape of an invoice.
type Response struct {
	ID          string     `json:"id"`
	CompanyID   string     `json:"companyId"`
	CustomerID  string     `json:"customerId"`
	QuoteID     string     `json:"quoteId,omitempty"`
	Title       string     `json:"title"`
	AmountCents int64      `json:"amountCents"`
	Status      string     `json:"status"`
	DueAt       time.Time  `json:"dueAt"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func toResponse(i *Invoice) Response {
	resp := Response{
		ID:          i.ID.String(),
		CompanyID:   i.CompanyID.String(),
		CustomerID:  i.CustomerID.String(),
		Title:       i.Title,
		AmountCents: i.AmountCents,
		Status:      string(i.Status),
		DueAt:       i.DueAt,
		PaidAt:      i.PaidAt,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
	if !i.QuoteID.IsNil() {
		resp.QuoteID = i.QuoteID.String()
	}
	return resp
}
