// Package activity keeps an append-only log of mutations so tenants can see
// who changed what.
package activity

import (
	"context"
	"time"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
)

// Entry is one recorded mutation.
type Entry struct {
	CompanyID  id.CompanyID
	UserID     id.UserID
	Action     string // e.g. "customer.created", "deal.stage_changed"
	EntityType string
	EntityID   string
	Detail     string
	At         time.Time
}

// Recorder is the write side consumed by domain services. Recording is
// best-effort: failures are logged, never propagated into the mutation path.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

// Store is the persistence contract for the activity log.
type Store interface {
	Append(ctx context.Context, e *Entry) error
	// ListByCompany returns newest-first entries, capped at limit.
	ListByCompany(ctx context.Context, scope id.Scope, limit int) ([]*Entry, error)
}
