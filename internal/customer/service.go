package customer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/icnevudila/crm-sub011/internal/activity"
	"github.com/icnevudila/crm-sub011/internal/platform/middleware"
	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

// Service orchestrates customer CRUD within the caller's tenant scope.
type Service struct {
	store    Store
	recorder activity.Recorder
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(store Store, recorder activity.Recorder, logger *slog.Logger) *Service {
	return &Service{store: store, recorder: recorder, logger: logger, now: time.Now}
}

func (s *Service) Create(ctx context.Context, ident middleware.Identity, req UpsertRequest) (*Customer, error) {
	if ident.CompanyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "a company context is required to create customers")
	}
	now := s.now()
	c := &Customer{
		ID:        id.NewCustomerID(),
		CompanyID: ident.CompanyID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create customer")
	}
	s.recorder.Record(ctx, activity.Entry{
		CompanyID:  c.CompanyID,
		UserID:     ident.UserID,
		Action:     "customer.created",
		EntityType: "customer",
		EntityID:   c.ID.String(),
		Detail:     c.Name,
		At:         now,
	})
	return c, nil
}

func (s *Service) Get(ctx context.Context, ident middleware.Identity, customerID id.CustomerID) (*Customer, error) {
	c, err := s.store.FindByID(ctx, ident.Scope(), customerID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, ident middleware.Identity) ([]*Customer, error) {
	customers, err := s.store.List(ctx, ident.Scope())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list customers")
	}
	return customers, nil
}

func (s *Service) Update(ctx context.Context, ident middleware.Identity, customerID id.CustomerID, req UpsertRequest) (*Customer, error) {
	scope := ident.Scope()
	c, err := s.store.FindByID(ctx, scope, customerID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	c.Name = req.Name
	c.Email = req.Email
	c.Phone = req.Phone
	c.Address = req.Address
	c.Notes = req.Notes
	c.UpdatedAt = s.now()
	if err := s.store.Update(ctx, scope, c); err != nil {
		return nil, wrapStoreErr(err)
	}
	s.recorder.Record(ctx, activity.Entry{
		CompanyID:  c.CompanyID,
		UserID:     ident.UserID,
		Action:     "customer.updated",
		EntityType: "customer",
		EntityID:   c.ID.String(),
		Detail:     c.Name,
		At:         c.UpdatedAt,
	})
	return c, nil
}

func (s *Service) Delete(ctx context.Context, ident middleware.Identity, customerID id.CustomerID) error {
	scope := ident.Scope()
	c, err := s.store.FindByID(ctx, scope, customerID)
	if err != nil {
		return wrapStoreErr(err)
	}
	if err := s.store.Delete(ctx, scope, customerID); err != nil {
		return wrapStoreErr(err)
	}
	s.recorder.Record(ctx, activity.Entry{
		CompanyID:  c.CompanyID,
		UserID:     ident.UserID,
		Action:     "customer.deleted",
		EntityType: "customer",
		EntityID:   c.ID.String(),
		Detail:     c.Name,
		At:         s.now(),
	})
	return nil
}

func wrapStoreErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "customer not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "customer store failure")
}
