// Package session persists session artifacts keyed by their opaque token.
package session

import (
	"context"

	"github.com/icnevudila/crm-sub011/internal/auth/models"
	id "github.com/icnevudila/crm-sub011/pkg/domain"
)

// Store is the persistence contract for sessions.
type Store interface {
	Create(ctx context.Context, s *models.Session) error
	FindByToken(ctx context.Context, token string) (*models.Session, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]*models.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID id.UserID) error
	// DeleteExpired prunes sessions past their expiry; used by periodic cleanup.
	DeleteExpired(ctx context.Context) (int, error)
}
