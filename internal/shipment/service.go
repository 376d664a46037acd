package shipment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/icnevudila/crm-sub011/internal/activity"
	"github.com/icnevudila/crm-sub011/internal/customer"
	"github.com/icnevudila/crm-sub011/internal/platform/middleware"
	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

// Service orchestrates the shipment lifecycle within the caller's tenant scope.
type Service struct {
	store     Store
	customers customer.Store
	recorder  activity.Recorder
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(store Store, customers customer.Store, recorder activity.Recorder, logger *slog.Logger) *Service {
	return &Service{store: store, customers: customers, recorder: recorder, logger: logger, now: time.Now}
}

func (s *Service) Create(ctx context.Context, ident middleware.Identity, req CreateRequest) (*Shipment, error) {
	if ident.CompanyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "a company context is required to create shipments")
	}
	customerID, err := id.ParseCustomerID(req.CustomerID)
	if err != nil {
		return nil, dErrors.NewValidation(map[string]string{"customerId": "customer id is invalid"})
	}
	if _, err := s.customers.FindByID(ctx, ident.Scope(), customerID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.NewValidation(map[string]string{"customerId": "customer does not exist"})
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up customer")
	}
	var invoiceID id.InvoiceID
	if req.InvoiceID != "" {
		invoiceID, err = id.ParseInvoiceID(req.InvoiceID)
		if err != nil {
			return nil, dErrors.NewValidation(map[string]string{"invoiceId": "invoice id is invalid"})
		}
	}

	now := s.now()
	sh := &Shipment{
		ID:         id.NewShipmentID(),
		CompanyID:  ident.CompanyID,
		CustomerID: customerID,
		InvoiceID:  invoiceID,
		Carrier:    req.Carrier,
		TrackingNo: req.TrackingNo,
		Address:    req.Address,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Create(ctx, sh); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create shipment")
	}
	s.record(ctx, ident, sh, "shipment.created", sh.Carrier)
	return sh, nil
}

func (s *Service) Get(ctx context.Context, ident middleware.Identity, shipmentID id.ShipmentID) (*Shipment, error) {
	sh, err := s.store.FindByID(ctx, ident.Scope(), shipmentID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return sh, nil
}

func (s *Service) List(ctx context.Context, ident middleware.Identity) ([]*Shipment, error) {
	shipments, err := s.store.List(ctx, ident.Scope())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list shipments")
	}
	return shipments, nil
}

func (s *Service) Dispatch(ctx context.Context, ident middleware.Identity, shipmentID id.ShipmentID) (*Shipment, error) {
	return s.transition(ctx, ident, shipmentID, "shipment.dispatched", (*Shipment).Dispatch)
}

func (s *Service) Deliver(ctx context.Context, ident middleware.Identity, shipmentID id.ShipmentID) (*Shipment, error) {
	return s.transition(ctx, ident, shipmentID, "shipment.delivered", (*Shipment).Deliver)
}

func (s *Service) Return(ctx context.Context, ident middleware.Identity, shipmentID id.ShipmentID) (*Shipment, error) {
	return s.transition(ctx, ident, shipmentID, "shipment.returned", (*Shipment).Return)
}

func (s *Service) transition(ctx context.Context, ident middleware.Identity, shipmentID id.ShipmentID,
	action string, apply func(*Shipment, time.Time) error) (*Shipment, error) {
	scope := ident.Scope()
	sh, err := s.store.FindByID(ctx, scope, shipmentID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if err := apply(sh, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, scope, sh); err != nil {
		return nil, wrapStoreErr(err)
	}
	s.record(ctx, ident, sh, action, string(sh.Status))
	return sh, nil
}

func (s *Service) record(ctx context.Context, ident middleware.Identity, sh *Shipment, action, detail string) {
	s.recorder.Record(ctx, activity.Entry{
		CompanyID:  sh.CompanyID,
		UserID:     ident.UserID,
		Action:     action,
		EntityType: "shipment",
		EntityID:   sh.ID.String(),
		Detail:     detail,
		At:         s.now(),
	})
}

func wrapStoreErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "shipment not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "shipment store failure")
}
