package deal

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/icnevudila/crm-sub011/internal/activity"
	"github.com/icnevudila/crm-sub011/internal/customer"
	"github.com/icnevudila/crm-sub011/internal/notification"
	"github.com/icnevudila/crm-sub011/internal/platform/middleware"
	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

// Service orchestrates the sales pipeline within the caller's tenant scope.
type Service struct {
	store     Store
	customers customer.Store
	recorder  activity.Recorder
	notifier  notification.Notifier
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(store Store, customers customer.Store, recorder activity.Recorder,
	notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		customers: customers,
		recorder:  recorder,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) Create(ctx context.Context, ident middleware.Identity, req CreateRequest) (*Deal, error) {
	if ident.CompanyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "a company context is required to create deals")
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
	ownerID, err := parseOwner(req.OwnerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	d := &Deal{
		ID:          id.NewDealID(),
		CompanyID:   ident.CompanyID,
		CustomerID:  customerID,
		OwnerID:     ownerID,
		Title:       req.Title,
		AmountCents: req.AmountCents,
		Stage:       StageLead,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, d); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create deal")
	}
	s.recorder.Record(ctx, activity.Entry{
		CompanyID:  d.CompanyID,
		UserID:     ident.UserID,
		Action:     "deal.created",
		EntityType: "deal",
		EntityID:   d.ID.String(),
		Detail:     d.Title,
		At:         now,
	})
	return d, nil
}

func (s *Service) Get(ctx context.Context, ident middleware.Identity, dealID id.DealID) (*Deal, error) {
	d, err := s.store.FindByID(ctx, ident.Scope(), dealID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return d, nil
}

func (s *Service) List(ctx context.Context, ident middleware.Identity) ([]*Deal, error) {
	deals, err := s.store.List(ctx, ident.Scope())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list deals")
	}
	return deals, nil
}

// Update edits deal fields. The stage is out of scope here; closed deals are
// frozen entirely.
func (s *Service) Update(ctx context.Context, ident middleware.Identity, dealID id.DealID, req UpdateRequest) (*Deal, error) {
	scope := ident.Scope()
	d, err := s.store.FindByID(ctx, scope, dealID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if d.Stage.Terminal() {
		return nil, dErrors.New(dErrors.CodeConflict, "a closed deal cannot be edited")
	}
	ownerID, err := parseOwner(req.OwnerID)
	if err != nil {
		return nil, err
	}
	d.Title = req.Title
	d.OwnerID = ownerID
	d.AmountCents = req.AmountCents
	d.UpdatedAt = s.now()
	if err := s.store.Update(ctx, scope, d); err != nil {
		return nil, wrapStoreErr(err)
	}
	s.recorder.Record(ctx, activity.Entry{
		CompanyID:  d.CompanyID,
		UserID:     ident.UserID,
		Action:     "deal.updated",
		EntityType: "deal",
		EntityID:   d.ID.String(),
		Detail:     d.Title,
		At:         d.UpdatedAt,
	})
	return d, nil
}

// MoveStage applies one kanban transition. Winning a deal notifies its owner.
func (s *Service) MoveStage(ctx context.Context, ident middleware.Identity, dealID id.DealID, next Stage) (*Deal, error) {
	scope := ident.Scope()
	d, err := s.store.FindByID(ctx, scope, dealID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	from := d.Stage
	if err := d.MoveTo(next, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, scope, d); err != nil {
		return nil, wrapStoreErr(err)
	}
	s.recorder.Record(ctx, activity.Entry{
		CompanyID:  d.CompanyID,
		UserID:     ident.UserID,
		Action:     "deal.stage_changed",
		EntityType: "deal",
		EntityID:   d.ID.String(),
		Detail:     string(from) + " -> " + string(next),
		At:         d.UpdatedAt,
	})
	if next == StageWon {
		s.notifier.Notify(ctx, d.CompanyID, d.OwnerID, notification.KindDealWon,
			"Deal won", d.Title)
	}
	return d, nil
}

func parseOwner(raw string) (id.UserID, error) {
	if raw == "" {
		return id.UserID{}, nil
	}
	ownerID, err := id.ParseUserID(raw)
	if err != nil {
		return id.UserID{}, dErrors.NewValidation(map[string]string{"ownerId": "owner id is invalid"})
	}
	return ownerID, nil
}

func wrapStoreErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "deal not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "deal store failure")
}
