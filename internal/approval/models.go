// Package approval manages sign-off requests. Anyone in a company may request
// one; only admins decide.
package approval

import (
	"strings"
	"time"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
)

// Status is the approval lifecycle state.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Approval is one sign-off request.
type Approval struct {
	ID          id.ApprovalID
	CompanyID   id.CompanyID
	RequesterID id.UserID
	ApproverID  id.UserID // optional preferred approver
	Subject     string
	Description string
	EntityType  string // optional link to the record under review
	EntityID    string
	Status      Status
	DecidedBy   id.UserID
	Reason      string
	DecidedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Decide settles a pending approval.
func (a *Approval) Decide(to Status, deciderID id.UserID, reason string, now time.Time) error {
	if a.Status != StatusPending {
		return dErrors.New(dErrors.CodeConflict, "approval is already decided")
	}
	if to != StatusApproved && to != StatusRejected {
		return dErrors.NewValidation(map[string]string{"decision": "decision must be APPROVED or REJECTED"})
	}
	a.Status = to
	a.DecidedBy = deciderID
	a.Reason = reason
	at := now
	a.DecidedAt = &at
	a.UpdatedAt = now
	return nil
}

const maxSubjectLength = 200

// CreateRequest is the POST /approvals body.
type CreateRequest struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
	ApproverID  string `json:"approverId"`
	EntityType  string `json:"entityType"`
	EntityID    string `json:"entityId"`
}

func (r *CreateRequest) Normalize() {
	r.Subject = strings.TrimSpace(r.Subject)
	r.Description = strings.TrimSpace(r.Description)
	r.ApproverID = strings.TrimSpace(r.ApproverID)
	r.EntityType = strings.TrimSpace(r.EntityType)
	r.EntityID = strings.TrimSpace(r.EntityID)
}

func (r *CreateRequest) Validate() error {
	fields := map[string]string{}
	if r.Subject == "" {
		fields["subject"] = "subject is required"
	}
	if len(r.Subject) > maxSubjectLength {
		fields["subject"] = "subject is too long"
	}
	if len(fields) > 0 {
		return dErrors.NewValidation(fields)
	}
	return nil
}

// DecideRequest is the POST /approvals/{id}/decide body.
type DecideRequest struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

func (r *DecideRequest) Normalize() {
	r.Decision = strings.ToUpper(strings.TrimSpace(r.Decision))
	r.Reason = strings.TrimSpace(r.Reason)
}

func (r *DecideRequest) Validate() error {
	if r.Decision != string(StatusApproved) && r.Decision != string(StatusRejected) {
		return dErrors.NewValidation(map[string]string{"decision": "decision must be APPROVED or REJECTED"})
	}
	return nil
}

// Response is the JSON shape of an approval.
type Response struct {
	ID          string     `json:"id"`
	CompanyID   string     `json:"companyId"`
	RequesterID string     `json:"requesterId"`
	ApproverID  string     `json:"approverId,omitempty"`
	Subject     string     `json:"subject"`
	Description string     `json:"description,omitempty"`
	EntityType  string     `json:"entityType,omitempty"`
	EntityID    string     `json:"entityId,omitempty"`
	Status      string     `json:"status"`
	DecidedBy   string     `json:"decidedBy,omitempty"`
	Reason      string     `json:"reason,omitempty"`
	DecidedAt   *time.Time `json:"decidedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func toResponse(a *Approval) Response {
	resp := Response{
		ID:          a.ID.String(),
		CompanyID:   a.CompanyID.String(),
		RequesterID: a.RequesterID.String(),
		Subject:     a.Subject,
		Description: a.Description,
		EntityType:  a.EntityType,
		EntityID:    a.EntityID,
		Status:      string(a.Status),
		Reason:      a.Reason,
		DecidedAt:   a.DecidedAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	if !a.ApproverID.IsNil() {
		resp.ApproverID = a.ApproverID.String()
	}
	if !a.DecidedBy.IsNil() {
		resp.DecidedBy = a.DecidedBy.String()
	}
	return resp
}
