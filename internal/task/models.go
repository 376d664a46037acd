// Package task manages a company's to-do items.
package task

import (
	"strings"
	"time"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
)

// Status is the task lifecycle state.
type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusDone      Status = "DONE"
	StatusCancelled Status = "CANCELLED"
)

// Task is one to-do item, optionally assigned to a user.
type Task struct {
	ID          id.TaskID
	CompanyID   id.CompanyID
	AssigneeID  id.UserID
	Title       string
	Description string
	DueAt       *time.Time
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Complete closes the task as done.
func (t *Task) Complete(now time.Time) error {
	if t.Status != StatusOpen {
		return dErrors.New(dErrors.CodeConflict, "only an open task can be completed")
	}
	t.Status = StatusDone
	t.UpdatedAt = now
	return nil
}

// Cancel closes the task without doing it.
func (t *Task) Cancel(now time.Time) error {
	if t.Status != StatusOpen {
		return dErrors.New(dErrors.CodeConflict, "only an open task can be cancelled")
	}
	t.Status = StatusCancelled
	t.UpdatedAt = now
	return nil
}

const maxTitleLength = 200

// UpsertRequest is the body for create and update.
type UpsertRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssigneeID  string     `json:"assigneeId"`
	DueAt       *time.Time `json:"dueAt"`
}

func (r *UpsertRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.AssigneeID = strings.TrimSpace(r.AssigneeID)
}

func (r *UpsertRequest) Validate() error {
	fields := map[string]string{}
	if r.Title == "" {
		fields["title"] = "title is required"
	}
	if len(r.Title) > maxTitleLength {
		fields["title"] = "title is too long"
	}
	if len(fields) > 0 {
		return dErrors.NewValidation(fields)
	}
	return nil
}

// Response is the JSON shape of a task.
type Response struct {
	ID          string     `json:"id"`
	CompanyID   string     `json:"companyId"`
	AssigneeID  string     `json:"assigneeId,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueAt       *time.Time `json:"dueAt,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func toResponse(t *Task) Response {
	resp := Response{
		ID:          t.ID.String(),
		CompanyID:   t.CompanyID.String(),
		Title:       t.Title,
		Description: t.Description,
		DueAt:       t.DueAt,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if !t.AssigneeID.IsNil() {
		resp.AssigneeID = t.AssigneeID.String()
	}
	return resp
}
