// Package ticket manages customer support requests.
package ticket

import (
	"strings"
	"time"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
)

// Status is the ticket lifecycle state.
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusClosed     Status = "CLOSED"
)

// Priority orders the support queue.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Ticket is one support request.
type Ticket struct {
	ID         id.TicketID
	CompanyID  id.CompanyID
	CustomerID id.CustomerID // optional
	AssigneeID id.UserID     // optional
	Subject    string
	Body       string
	Priority   Priority
	Status     Status
	ResolvedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Start moves an open ticket into progress.
func (t *Ticket) Start(now time.Time) error {
	if t.Status != StatusOpen {
		return dErrors.New(dErrors.CodeConflict, "only an open ticket can be started")
	}
	t.Status = StatusInProgress
	t.UpdatedAt = now
	return nil
}

// Resolve marks a ticket in progress as fixed.
func (t *Ticket) Resolve(now time.Time) error {
	if t.Status != StatusInProgress {
		return dErrors.New(dErrors.CodeConflict, "only a ticket in progress can be resolved")
	}
	t.Status = StatusResolved
	at := now
	t.ResolvedAt = &at
	t.UpdatedAt = now
	return nil
}

// Close ends a ticket in progress without a fix.
func (t *Ticket) Close(now time.Time) error {
	if t.Status != StatusInProgress {
		return dErrors.New(dErrors.CodeConflict, "only a ticket in progress can be closed")
	}
	t.Status = StatusClosed
	t.UpdatedAt = now
	return nil
}

const (
	maxSubjectLength = 200
	maxBodyLength    = 5000
)

// UpsertRequest is the body for create and update.
type UpsertRequest struct {
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	CustomerID string `json:"customerId"`
	AssigneeID string `json:"assigneeId"`
	Priority   string `json:"priority"`
}

func (r *UpsertRequest) Normalize() {
	r.Subject = strings.TrimSpace(r.Subject)
	r.Body = strings.TrimSpace(r.Body)
	r.CustomerID = strings.TrimSpace(r.CustomerID)
	r.AssigneeID = strings.TrimSpace(r.AssigneeID)
	r.Priority = strings.ToUpper(strings.TrimSpace(r.Priority))
	if r.Priority == "" {
		r.Priority = string(PriorityMedium)
	}
}

func (r *UpsertRequest) Validate() error {
	fields := map[string]string{}
	if r.Subject == "" {
		fields["subject"] = "subject is required"
	}
	if len(r.Subject) > maxSubjectLength {
		fields["subject"] = "subject is too long"
	}
	if len(r.Body) > maxBodyLength {
		fields["body"] = "body is too long"
	}
	if !Priority(r.Priority).Valid() {
		fields["priority"] = "priority must be LOW, MEDIUM, or HIGH"
	}
	if len(fields) > 0 {
		return dErrors.NewValidation(fields)
	}
	return nil
}

// Response is the JSON shape of a ticket.
type Response struct {
	ID         string     `json:"id"`
	CompanyID  string     `json:"companyId"`
	CustomerID string     `json:"customerId,omitempty"`
	AssigneeID string     `json:"assigneeId,omitempty"`
	Subject    string     `json:"subject"`
	Body       string     `json:"body,omitempty"`
	Priority   string     `json:"priority"`
	Status     string     `json:"status"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func toResponse(t *Ticket) Response {
	resp := Response{
		ID:         t.ID.String(),
		CompanyID:  t.CompanyID.String(),
		Subject:    t.Subject,
		Body:       t.Body,
		Priority:   string(t.Priority),
		Status:     string(t.Status),
		ResolvedAt: t.ResolvedAt,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
	if !t.CustomerID.IsNil() {
		resp.CustomerID = t.CustomerID.String()
	}
	if !t.AssigneeID.IsNil() {
		resp.AssigneeID = t.AssigneeID.String()
	}
	return resp
}
