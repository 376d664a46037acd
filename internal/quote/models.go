// Package quote manages priced offers sent to customers. A quote is editable
// while in draft, then moves through a short lifecycle; an accepted quote can
// be converted into an invoice.
package quote

import (
	"strings"
	"time"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
)

// Status is the quote lifecycle state.
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusSent     Status = "SENT"
	StatusAccepted Status = "ACCEPTED"
	StatusDeclined Status = "DECLINED"
)

// Line is one priced row of a quote.
type Line struct {
	Description    string
	Quantity       int64
	UnitPriceCents int64
}

// Total returns the line amount.
func (l Line) Total() int64 {
	return l.Quantity * l.UnitPriceCents
}

// Quote is one offer to a customer.
type Quote struct {
	ID         id.QuoteID
	CompanyID  id.CompanyID
	CustomerID id.CustomerID
	DealID     id.DealID // optional link to a pipeline deal
	Title      string
	Status     Status
	Lines      []Line
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TotalCents sums every line.
func (q *Quote) TotalCents() int64 {
	var total int64
	for _, l := range q.Lines {
		total += l.Total()
	}
	return total
}

// Editable reports whether fields and lines may still change.
func (q *Quote) Editable() bool {
	return q.Status == StatusDraft
}

// Send marks the draft as delivered to the customer.
func (q *Quote) Send(now time.Time) error {
	if q.Status != StatusDraft {
		return dErrors.New(dErrors.CodeConflict, "only a draft quote can be sent")
	}
	if len(q.Lines) == 0 {
		return dErrors.NewValidation(map[string]string{"lines": "a quote needs at least one line before sending"})
	}
	q.Status = StatusSent
	q.UpdatedAt = now
	return nil
}

// Accept records the customer's acceptance.
func (q *Quote) Accept(now time.Time) error {
	if q.Status != StatusSent {
		return dErrors.New(dErrors.CodeConflict, "only a sent quote can be accepted")
	}
	q.Status = StatusAccepted
	q.UpdatedAt = now
	return nil
}

// Decline records the customer's rejection.
func (q *Quote) Decline(now time.Time) error {
	if q.Status != StatusSent {
		return dErrors.New(dErrors.CodeConflict, "only a sent quote can be declined")
	}
	q.Status = StatusDeclined
	q.UpdatedAt = now
	return nil
}

const (
	maxTitleLength = 200
	maxLines       = 100
)

// LineRequest is one line in an upsert body.
type LineRequest struct {
	Description    string `json:"description"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

// UpsertRequest is the body for create and update.
type UpsertRequest struct {
	Title      string        `json:"title"`
	CustomerID string        `json:"customerId"`
	DealID     string        `json:"dealId"`
	Lines      []LineRequest `json:"lines"`
}

func (r *UpsertRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.CustomerID = strings.TrimSpace(r.CustomerID)
	r.DealID = strings.TrimSpace(r.DealID)
	for i := range r.Lines {
		r.Lines[i].Description = strings.TrimSpace(r.Lines[i].Description)
	}
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
	if len(r.Lines) > maxLines {
		fields["lines"] = "too many lines"
	}
	for _, l := range r.Lines {
		if l.Description == "" {
			fields["lines"] = "every line needs a description"
			break
		}
		if l.Quantity <= 0 {
			fields["lines"] = "line quantity must be positive"
			break
		}
		if l.UnitPriceCents < 0 {
			fields["lines"] = "line price must not be negative"
			break
		}
	}
	if len(fields) > 0 {
		return dErrors.NewValidation(fields)
	}
	return nil
}

// LineResponse is the JSON shape of a quote line.
type LineResponse struct {
	Description    string `json:"description"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	TotalCents     int64  `json:"totalCents"`
}

// Response is the JSON shape of a quote.
type Response struct {
	ID         string         `json:"id"`
	CompanyID  string         `json:"companyId"`
	CustomerID string         `json:"customerId"`
	DealID     string         `json:"dealId,omitempty"`
	Title      string         `json:"title"`
	Status     string         `json:"status"`
	Lines      []LineResponse `json:"lines"`
	TotalCents int64          `json:"totalCents"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

func toResponse(q *Quote) Response {
	lines := make([]LineResponse, 0, len(q.Lines))
	for _, l := range q.Lines {
		lines = append(lines, LineResponse{
			Description:    l.Description,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
			TotalCents:     l.Total(),
		})
	}
	resp := Response{
		ID:         q.ID.String(),
		CompanyID:  q.CompanyID.String(),
		CustomerID: q.CustomerID.String(),
		Title:      q.Title,
		Status:     string(q.Status),
		Lines:      lines,
		TotalCents: q.TotalCents(),
		CreatedAt:  q.CreatedAt,
		UpdatedAt:  q.UpdatedAt,
	}
	if !q.DealID.IsNil() {
		resp.DealID = q.DealID.String()
	}
	return resp
}
