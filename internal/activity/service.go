package activity

import (
	"context"
	"log/slog"
	"time"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
)

const defaultListLimit = 100

// Service records and lists activity entries.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

// Record appends an entry. Failures are logged and swallowed: an audit write
// must never fail the mutation it describes.
func (s *Service) Record(ctx context.Context, e Entry) {
	if e.At.IsZero() {
		e.At = s.now()
	}
	if err := s.store.Append(ctx, &e); err != nil {
		s.logger.ErrorContext(ctx, "failed to record activity",
			"error", err,
			"action", e.Action,
			"entity_type", e.EntityType,
		)
	}
}

// List returns recent entries visible under the scope, newest first.
func (s *Service) List(ctx context.Context, scope id.Scope, limit int) ([]*Entry, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	entries, err := s.store.ListByCompany(ctx, scope, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list activity")
	}
	return entries, nil
}
