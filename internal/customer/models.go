// Package customer manages the customer book of a company.
package customer

import (
	"strings"
	"time"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
)

// Customer is one account in a company's book.
type Customer struct {
	ID        id.CustomerID
	CompanyID id.CompanyID
	Name      string
	Email     string
	Phone     string
	Address   string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	maxNameLength  = 128
	maxEmailLength = 254
	maxNotesLength = 2000
)

// UpsertRequest is the body for create and update.
type UpsertRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

func (r *UpsertRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Address = strings.TrimSpace(r.Address)
	r.Notes = strings.TrimSpace(r.Notes)
}

func (r *UpsertRequest) Validate() error {
	fields := map[string]string{}
	if r.Name == "" {
		fields["name"] = "name is required"
	}
	if len(r.Name) > maxNameLength {
		fields["name"] = "name is too long"
	}
	if r.Email != "" && !strings.Contains(r.Email, "@") {
		fields["email"] = "email is invalid"
	}
	if len(r.Email) > maxEmailLength {
		fields["email"] = "email is too long"
	}
	if len(r.Notes) > maxNotesLength {
		fields["notes"] = "notes are too long"
	}
	if len(fields) > 0 {
		return dErrors.NewValidation(fields)
	}
	return nil
}

// Response is the JSON shape of a customer.
type Response struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"companyId"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toResponse(c *Customer) Response {
	return Response{
		ID:        c.ID.String(),
		CompanyID: c.CompanyID.String(),
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
