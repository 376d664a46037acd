package company

import (
	"context"
	"errors"
	"log/slog"
	"time"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

// Service orchestrates company lifecycle management. All operations are
// super-admin only; the policy gate lives in the router.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

func (s *Service) Create(ctx context.Context, name string) (*Company, error) {
	c, err := NewCompany(id.NewCompanyID(), name, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateIfNameAvailable(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "company name must be unique")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create company")
	}
	s.logger.InfoContext(ctx, "company created", "company_id", c.ID, "name", c.Name)
	return c, nil
}

func (s *Service) Get(ctx context.Context, companyID id.CompanyID) (*Company, error) {
	if companyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "company ID is required")
	}
	c, err := s.store.FindByID(ctx, companyID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return c, nil
}

func (s *Service) List(ctx context.Context) ([]*Company, error) {
	companies, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list companies")
	}
	return companies, nil
}

// Deactivate blocks logins for every user of the company.
func (s *Service) Deactivate(ctx context.Context, companyID id.CompanyID) (*Company, error) {
	return s.transition(ctx, companyID, (*Company).Deactivate)
}

// Reactivate restores logins for the company's users.
func (s *Service) Reactivate(ctx context.Context, companyID id.CompanyID) (*Company, error) {
	return s.transition(ctx, companyID, (*Company).Reactivate)
}

func (s *Service) transition(ctx context.Context, companyID id.CompanyID, apply func(*Company, time.Time) error) (*Company, error) {
	if companyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "company ID is required")
	}
	c, err := s.store.FindByID(ctx, companyID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if err := apply(c, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, c); err != nil {
		return nil, wrapStoreErr(err)
	}
	s.logger.InfoContext(ctx, "company status changed", "company_id", c.ID, "status", c.Status)
	return c, nil
}

// CompanyStatus implements the auth service's company directory.
func (s *Service) CompanyStatus(ctx context.Context, companyID id.CompanyID) (string, bool, error) {
	c, err := s.store.FindByID(ctx, companyID)
	if err != nil {
		return "", false, wrapStoreErr(err)
	}
	return c.Name, c.Active(), nil
}

func wrapStoreErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "company not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "company store failure")
}
