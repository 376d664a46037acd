// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing a CustomerID where a DealID is expected.
type (
	UserID         uuid.UUID
	CompanyID      uuid.UUID
	CustomerID     uuid.UUID
	DealID         uuid.UUID
	QuoteID        uuid.UUID
	InvoiceID      uuid.UUID
	ShipmentID     uuid.UUID
	TaskID         uuid.UUID
	TicketID       uuid.UUID
	VendorID       uuid.UUID
	ApprovalID     uuid.UUID
	NotificationID uuid.UUID
)

// New functions - generate fresh identifiers.

func NewUserID() UserID                 { return UserID(uuid.New()) }
func NewCompanyID() CompanyID           { return CompanyID(uuid.New()) }
func NewCustomerID() CustomerID         { return CustomerID(uuid.New()) }
func NewDealID() DealID                 { return DealID(uuid.New()) }
func NewQuoteID() QuoteID               { return QuoteID(uuid.New()) }
func NewInvoiceID() InvoiceID           { return InvoiceID(uuid.New()) }
func NewShipmentID() ShipmentID         { return ShipmentID(uuid.New()) }
func NewTaskID() TaskID                 { return TaskID(uuid.New()) }
func NewTicketID() TicketID             { return TicketID(uuid.New()) }
func NewVendorID() VendorID             { return VendorID(uuid.New()) }
func NewApprovalID() ApprovalID         { return ApprovalID(uuid.New()) }
func NewNotificationID() NotificationID { return NotificationID(uuid.New()) }

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseUserID(s string) (UserID, error) {
	id, err := parseUUID(s, "user ID")
	return UserID(id), err
}

func ParseCompanyID(s string) (CompanyID, error) {
	id, err := parseUUID(s, "company ID")
	return CompanyID(id), err
}

func ParseCustomerID(s string) (CustomerID, error) {
	id, err := parseUUID(s, "customer ID")
	return CustomerID(id), err
}

func ParseDealID(s string) (DealID, error) {
	id, err := parseUUID(s, "deal ID")
	return DealID(id), err
}

func ParseQuoteID(s string) (QuoteID, error) {
	id, err := parseUUID(s, "quote ID")
	return QuoteID(id), err
}

func ParseInvoiceID(s string) (InvoiceID, error) {
	id, err := parseUUID(s, "invoice ID")
	return InvoiceID(id), err
}

func ParseShipmentID(s string) (ShipmentID, error) {
	id, err := parseUUID(s, "shipment ID")
	return ShipmentID(id), err
}

func ParseTaskID(s string) (TaskID, error) {
	id, err := parseUUID(s, "task ID")
	return TaskID(id), err
}

func ParseTicketID(s string) (TicketID, error) {
	id, err := parseUUID(s, "ticket ID")
	return TicketID(id), err
}

func ParseVendorID(s string) (VendorID, error) {
	id, err := parseUUID(s, "vendor ID")
	return VendorID(id), err
}

func ParseApprovalID(s string) (ApprovalID, error) {
	id, err := parseUUID(s, "approval ID")
	return ApprovalID(id), err
}

func ParseNotificationID(s string) (NotificationID, error) {
	id, err := parseUUID(s, "notification ID")
	return NotificationID(id), err
}

// String methods - for logging and persistence.

func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id CompanyID) String() string      { return uuid.UUID(id).String() }
func (id CustomerID) String() string     { return uuid.UUID(id).String() }
func (id DealID) String() string         { return uuid.UUID(id).String() }
func (id QuoteID) String() string        { return uuid.UUID(id).String() }
func (id InvoiceID) String() string      { return uuid.UUID(id).String() }
func (id ShipmentID) String() string     { return uuid.UUID(id).String() }
func (id TaskID) String() string         { return uuid.UUID(id).String() }
func (id TicketID) String() string       { return uuid.UUID(id).String() }
func (id VendorID) String() string       { return uuid.UUID(id).String() }
func (id ApprovalID) String() string     { return uuid.UUID(id).String() }
func (id NotificationID) String() string { return uuid.UUID(id).String() }

// IsNil checks - used for service-layer validation.

func (id UserID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id CompanyID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id CustomerID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id DealID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id QuoteID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id InvoiceID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ShipmentID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id TaskID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id TicketID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id VendorID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id ApprovalID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id NotificationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// parseUUID is the shared validation logic. Nil UUIDs are allowed here; use
// IsNil() at the service layer so store lookups can return proper "not found"
// errors for consistency.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" must be a valid UUID")
	}
	return id, nil
}
