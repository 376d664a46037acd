// Package shipment tracks physical deliveries tied to customers and invoices.
package shipment

import (
	"strings"
	"time"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
)

// Status is the shipment lifecycle state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusInTransit Status = "IN_TRANSIT"
	StatusDelivered Status = "DELIVERED"
	StatusReturned  Status = "RETURNED"
)

// Shipment is one delivery.
type Shipment struct {
	ID           id.ShipmentID
	CompanyID    id.CompanyID
	CustomerID   id.CustomerID
	InvoiceID    id.InvoiceID // optional link to the billed invoice
	Carrier      string
	TrackingNo   string
	Address      string
	Status       Status
	DispatchedAt *time.Time
	DeliveredAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Dispatch hands the shipment to the carrier.
func (sh *Shipment) Dispatch(now time.Time) error {
	if sh.Status != StatusPending {
		return dErrors.New(dErrors.CodeConflict, "only a pending shipment can be dispatched")
	}
	sh.Status = StatusInTransit
	at := now
	sh.DispatchedAt = &at
	sh.UpdatedAt = now
	return nil
}

// Deliver records a successful delivery.
func (sh *Shipment) Deliver(now time.Time) error {
	if sh.Status != StatusInTransit {
		return dErrors.New(dErrors.CodeConflict, "only a shipment in transit can be delivered")
	}
	sh.Status = StatusDelivered
	at := now
	sh.DeliveredAt = &at
	sh.UpdatedAt = now
	return nil
}

// Return records the shipment coming back undelivered.
func (sh *Shipment) Return(now time.Time) error {
	if sh.Status != StatusInTransit {
		return dErrors.New(dErrors.CodeConflict, "only a shipment in transit can be returned")
	}
	sh.Status = StatusReturned
	sh.UpdatedAt = now
	return nil
}

// CreateRequest is the POST /shipments body.
type CreateRequest struct {
	CustomerID string `json:"customerId"`
	InvoiceID  string `json:"invoiceId"`
	Carrier    string `json:"carrier"`
	TrackingNo string `json:"trackingNumber"`
	Address    string `json:"address"`
}

func (r *CreateRequest) Normalize() {
	r.CustomerID = strings.TrimSpace(r.CustomerID)
	r.InvoiceID = strings.TrimSpace(r.InvoiceID)
	r.Carrier = strings.TrimSpace(r.Carrier)
	r.TrackingNo = strings.TrimSpace(r.TrackingNo)
	r.Address = strings.TrimSpace(r.Address)
}

func (r *CreateRequest) Validate() error {
	fields := map[string]string{}
	if r.CustomerID == "" {
		fields["customerId"] = "customer is required"
	}
	if r.Carrier == "" {
		fields["carrier"] = "carrier is required"
	}
	if r.Address == "" {
		fields["address"] = "address is required"
	}
	if len(fields) > 0 {
		return dErrors.NewValidation(fields)
	}
	return nil
}

// Response is the JSON shape of a shipment.
type Response struct {
	ID           string     `json:"id"`
	CompanyID    string     `json:"companyId"`
	CustomerID   string     `json:"customerId"`
	InvoiceID    string     `json:"invoiceId,omitempty"`
	Carrier      string     `json:"carrier"`
	TrackingNo   string     `json:"trackingNumber,omitempty"`
	Address      string     `json:"address"`
	Status       string     `json:"status"`
	DispatchedAt *time.Time `json:"dispatchedAt,omitempty"`
	DeliveredAt  *time.Time `json:"deliveredAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func toResponse(sh *Shipment) Response {
	resp := Response{
		ID:           sh.ID.String(),
		CompanyID:    sh.CompanyID.String(),
		CustomerID:   sh.CustomerID.String(),
		Carrier:      sh.Carrier,
		TrackingNo:   sh.TrackingNo,
		Address:      sh.Address,
		Status:       string(sh.Status),
		DispatchedAt: sh.DispatchedAt,
		DeliveredAt:  sh.DeliveredAt,
		CreatedAt:    sh.CreatedAt,
		UpdatedAt:    sh.UpdatedAt,
	}
	if !sh.InvoiceID.IsNil() {
		resp.InvoiceID = sh.InvoiceID.String()
	}
	return resp
}
