// Package user persists accounts. Implementations return sentinel errors;
// the auth service translates them into domain errors.
package user

import (
	"context"

	"github.com/icnevudila/crm-sub011/internal/auth/models"
	id "github.com/icnevudila/crm-sub011/pkg/domain"
)

// Store is the persistence contract for users.
type Store interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ListByCompany(ctx context.Context, companyID id.CompanyID) ([]*models.User, error)
	Update(ctx context.Context, u *models.User) error
}
