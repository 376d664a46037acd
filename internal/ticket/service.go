package ticket

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/icnevudila/crm-sub011/internal/activity"
	"github.com/icnevudila/crm-sub011/internal/notification"
	"github.com/icnevudila/crm-sub011/internal/platform/middleware"
	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

// Service orchestrates the support queue within the caller's tenant scope.
type Service struct {
	store    Store
	recorder activity.Recorder
	notifier notification.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(store Store, recorder activity.Recorder, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{store: store, recorder: recorder, notifier: notifier, logger: logger, now: time.Now}
}

func (s *Service) Create(ctx context.Context, ident middleware.Identity, req UpsertRequest) (*Ticket, error) {
	if ident.CompanyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "a company context is required to create tickets")
	}
	customerID, assigneeID, err := parseRefs(req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	t := &Ticket{
		ID:         id.NewTicketID(),
		CompanyID:  ident.CompanyID,
		CustomerID: customerID,
		AssigneeID: assigneeID,
		Subject:    req.Subject,
		Body:       req.Body,
		Priority:   Priority(req.Priority),
		Status:     StatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create ticket")
	}
	s.record(ctx, ident, t, "ticket.created", t.Subject)
	if !t.AssigneeID.IsNil() && t.AssigneeID != ident.UserID {
		s.notifier.Notify(ctx, t.CompanyID, t.AssigneeID, notification.KindTicketAssigned,
			"Ticket assigned to you", t.Subject)
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, ident middleware.Identity, ticketID id.TicketID) (*Ticket, error) {
	t, err := s.store.FindByID(ctx, ident.Scope(), ticketID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, ident middleware.Identity) ([]*Ticket, error) {
	tickets, err := s.store.List(ctx, ident.Scope())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tickets")
	}
	return tickets, nil
}

// Update edits a ticket that is not yet resolved or closed. A reassignment
// notifies the new assignee.
func (s *Service) Update(ctx context.Context, ident middleware.Identity, ticketID id.TicketID, req UpsertRequest) (*Ticket, error) {
	scope := ident.Scope()
	t, err := s.store.FindByID(ctx, scope, ticketID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if t.Status == StatusResolved || t.Status == StatusClosed {
		return nil, dErrors.New(dErrors.CodeConflict, "a settled ticket cannot be edited")
	}
	customerID, assigneeID, err := parseRefs(req)
	if err != nil {
		return nil, err
	}
	reassigned := !assigneeID.IsNil() && assigneeID != t.AssigneeID
	t.CustomerID = customerID
	t.AssigneeID = assigneeID
	t.Subject = req.Subject
	t.Body = req.Body
	t.Priority = Priority(req.Priority)
	t.UpdatedAt = s.now()
	if err := s.store.Update(ctx, scope, t); err != nil {
		return nil, wrapStoreErr(err)
	}
	s.record(ctx, ident, t, "ticket.updated", t.Subject)
	if reassigned && t.AssigneeID != ident.UserID {
		s.notifier.Notify(ctx, t.CompanyID, t.AssigneeID, notification.KindTicketAssigned,
			"Ticket assigned to you", t.Subject)
	}
	return t, nil
}

func (s *Service) Start(ctx context.Context, ident middleware.Identity, ticketID id.TicketID) (*Ticket, error) {
	return s.transition(ctx, ident, ticketID, "ticket.started", (*Ticket).Start)
}

func (s *Service) Resolve(ctx context.Context, ident middleware.Identity, ticketID id.TicketID) (*Ticket, error) {
	return s.transition(ctx, ident, ticketID, "ticket.resolved", (*Ticket).Resolve)
}

func (s *Service) Close(ctx context.Context, ident middleware.Identity, ticketID id.TicketID) (*Ticket, error) {
	return s.transition(ctx, ident, ticketID, "ticket.closed", (*Ticket).Close)
}

func (s *Service) transition(ctx context.Context, ident middleware.Identity, ticketID id.TicketID,
	action string, apply func(*Ticket, time.Time) error) (*Ticket, error) {
	scope := ident.Scope()
	t, err := s.store.FindByID(ctx, scope, ticketID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if err := apply(t, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, scope, t); err != nil {
		return nil, wrapStoreErr(err)
	}
	s.record(ctx, ident, t, action, string(t.Status))
	return t, nil
}

func (s *Service) record(ctx context.Context, ident middleware.Identity, t *Ticket, action, detail string) {
	s.recorder.Record(ctx, activity.Entry{
		CompanyID:  t.CompanyID,
		UserID:     ident.UserID,
		Action:     action,
		EntityType: "ticket",
		EntityID:   t.ID.String(),
		Detail:     detail,
		At:         s.now(),
	})
}

func parseRefs(req UpsertRequest) (id.CustomerID, id.UserID, error) {
	var (
		customerID id.CustomerID
		assigneeID id.UserID
		err        error
	)
	if req.CustomerID != "" {
		customerID, err = id.ParseCustomerID(req.CustomerID)
		if err != nil {
			return id.CustomerID{}, id.UserID{}, dErrors.NewValidation(map[string]string{"customerId": "customer id is invalid"})
		}
	}
	if req.AssigneeID != "" {
		assigneeID, err = id.ParseUserID(req.AssigneeID)
		if err != nil {
			return id.CustomerID{}, id.UserID{}, dErrors.NewValidation(map[string]string{"assigneeId": "assignee id is invalid"})
		}
	}
	return customerID, assigneeID, nil
}

func wrapStoreErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "ticket not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "ticket store failure")
}
