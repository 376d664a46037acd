// Package company manages tenants. Every other aggregate is row-scoped by a
// company; deactivating one blocks logins for its users.
package company

import (
	"strings"
	"time"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
)

// Status is the company lifecycle state.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Company is a tenant.
type Company struct {
	ID        id.CompanyID
	Name      string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reports whether users of the company may log in.
func (c *Company) Active() bool {
	return c.Status == StatusActive
}

// Deactivate transitions the company to inactive.
func (c *Company) Deactivate(now time.Time) error {
	if c.Status == StatusInactive {
		return dErrors.New(dErrors.CodeConflict, "company is already inactive")
	}
	c.Status = StatusInactive
	c.UpdatedAt = now
	return nil
}

// Reactivate transitions the company back to active.
func (c *Company) Reactivate(now time.Time) error {
	if c.Status == StatusActive {
		return dErrors.New(dErrors.CodeConflict, "company is already active")
	}
	c.Status = StatusActive
	c.UpdatedAt = now
	return nil
}

const maxNameLength = 128

// NewCompany validates and constructs a company.
func NewCompany(companyID id.CompanyID, name string, now time.Time) (*Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.NewValidation(map[string]string{"name": "name is required"})
	}
	if len(name) > maxNameLength {
		return nil, dErrors.NewValidation(map[string]string{"name": "name is too long"})
	}
	return &Company{
		ID:        companyID,
		Name:      name,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CreateRequest is the POST /companies body.
type CreateRequest struct {
	Name string `json:"name"`
}

func (r *CreateRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r *CreateRequest) Validate() error {
	if r.Name == "" {
		return dErrors.NewValidation(map[string]string{"name": "name is required"})
	}
	if len(r.Name) > maxNameLength {
		return dErrors.NewValidation(map[string]string{"name": "name is too long"})
	}
	return nil
}

// Response is the JSON shape of a company.
type Response struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toResponse(c *Company) Response {
	return Response{
		ID:        c.ID.String(),
		Name:      c.Name,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
