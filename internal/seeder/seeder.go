// Package seeder populates demo data so a fresh install has something to
// click through. Seeding is idempotent: it keys off the super-admin account
// and does nothing when one already exists.
package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/icnevudila/crm-sub011/internal/auth/models"
	"github.com/icnevudila/crm-sub011/internal/auth/store/user"
	"github.com/icnevudila/crm-sub011/internal/company"
	"github.com/icnevudila/crm-sub011/internal/customer"
	"github.com/icnevudila/crm-sub011/internal/deal"
	"github.com/icnevudila/crm-sub011/internal/platform/authz"
	"github.com/icnevudila/crm-sub011/internal/task"
	"github.com/icnevudila/crm-sub011/internal/ticket"
	"github.com/icnevudila/crm-sub011/internal/vendor"
	id "github.com/icnevudila/crm-sub011/pkg/domain"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

const (
	superAdminEmail = "admin@crm.local"
	demoPassword    = "changeme"
)

// Seeder writes demo records through the store layer so the same code works
// against memory and Postgres.
type Seeder struct {
	companies company.Store
	users     user.Store
	customers customer.Store
	vendors   vendor.Store
	deals     deal.Store
	tasks     task.Store
	tickets   ticket.Store
	logger    *slog.Logger
	now       func() time.Time
}

func New(companies company.Store, users user.Store, customers customer.Store, vendors vendor.Store, deals deal.Store, tasks task.Store, tickets ticket.Store, logger *slog.Logger) *Seeder {
	return &Seeder{
		companies: companies,
		users:     users,
		customers: customers,
		vendors:   vendors,
		deals:     deals,
		tasks:     tasks,
		tickets:   tickets,
		logger:    logger,
		now:       time.Now,
	}
}

// Run seeds two demo tenants plus a super-admin. Every account uses the same
// demo password.
func (s *Seeder) Run(ctx context.Context) error {
	if _, err := s.users.FindByEmail(ctx, superAdminEmail); err == nil {
		s.logger.InfoContext(ctx, "demo data already present, skipping seed")
		return nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return fmt.Errorf("probe super-admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}
	now := s.now()

	if err := s.users.Create(ctx, &models.User{
		ID:           id.NewUserID(),
		Email:        superAdminEmail,
		Name:         "Platform Admin",
		Role:         authz.RoleSuperAdmin,
		PasswordHash: string(hash),
		Status:       models.UserActive,
		CreatedAt:    now,
	}); err != nil {
		return fmt.Errorf("create super-admin: %w", err)
	}

	for _, tenant := range []string{"Acme Manufacturing", "Globex Retail"} {
		if err := s.seedTenant(ctx, tenant, string(hash), now); err != nil {
			return fmt.Errorf("seed %s: %w", tenant, err)
		}
	}

	s.logger.InfoContext(ctx, "demo data seeded",
		"super_admin", superAdminEmail,
		"password", demoPassword,
	)
	return nil
}

func (s *Seeder) seedTenant(ctx context.Context, name, passwordHash string, now time.Time) error {
	c := &company.Company{
		ID:        id.NewCompanyID(),
		Name:      name,
		Status:    company.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.companies.CreateIfNameAvailable(ctx, c); err != nil {
		return fmt.Errorf("create company: %w", err)
	}

	admin := &models.User{
		ID:           id.NewUserID(),
		CompanyID:    c.ID,
		Email:        fmt.Sprintf("admin@%s", emailDomain(name)),
		Name:         name + " Admin",
		Role:         authz.RoleAdmin,
		PasswordHash: passwordHash,
		Status:       models.UserActive,
		CreatedAt:    now,
	}
	sales := &models.User{
		ID:           id.NewUserID(),
		CompanyID:    c.ID,
		Email:        fmt.Sprintf("sales@%s", emailDomain(name)),
		Name:         name + " Sales",
		Role:         authz.RoleSales,
		PasswordHash: passwordHash,
		Status:       models.UserActive,
		CreatedAt:    now,
	}
	for _, u := range []*models.User{admin, sales} {
		if err := s.users.Create(ctx, u); err != nil {
			return fmt.Errorf("create user %s: %w", u.Email, err)
		}
	}

	customers := make([]*customer.Customer, 0, 3)
	for i, cust := range []struct {
		name, email string
	}{
		{"Northwind Traders", "purchasing@northwind.example"},
		{"Initech LLC", "office@initech.example"},
		{"Stark Industries", "procurement@stark.example"},
	} {
		rec := &customer.Customer{
			ID:        id.NewCustomerID(),
			CompanyID: c.ID,
			Name:      cust.name,
			Email:     cust.email,
			Phone:     fmt.Sprintf("+1-555-010%d", i),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.customers.Create(ctx, rec); err != nil {
			return fmt.Errorf("create customer: %w", err)
		}
		customers = append(customers, rec)
	}

	if err := s.vendors.Create(ctx, &vendor.Vendor{
		ID:        id.NewVendorID(),
		CompanyID: c.ID,
		Name:      "Continental Shipping Co",
		Email:     "ops@continental.example",
		Category:  "logistics",
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return fmt.Errorf("create vendor: %w", err)
	}

	for i, d := range []struct {
		title string
		cents int64
		stage deal.Stage
	}{
		{"Annual supply contract", 1_250_000, deal.StageQualified},
		{"Pilot rollout", 300_000, deal.StageLead},
		{"Renewal upsell", 780_000, deal.StageWon},
	} {
		rec := &deal.Deal{
			ID:          id.NewDealID(),
			CompanyID:   c.ID,
			CustomerID:  customers[i].ID,
			OwnerID:     sales.ID,
			Title:       d.title,
			AmountCents: d.cents,
			Stage:       d.stage,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if d.stage == deal.StageWon {
			closed := now
			rec.ClosedAt = &closed
		}
		if err := s.deals.Create(ctx, rec); err != nil {
			return fmt.Errorf("create deal: %w", err)
		}
	}

	due := now.Add(72 * time.Hour)
	if err := s.tasks.Create(ctx, &task.Task{
		ID:          id.NewTaskID(),
		CompanyID:   c.ID,
		AssigneeID:  sales.ID,
		Title:       "Follow up on pilot rollout",
		Description: "Customer asked for revised pricing before the next call.",
		DueAt:       &due,
		Status:      task.StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}); err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	if err := s.tickets.Create(ctx, &ticket.Ticket{
		ID:         id.NewTicketID(),
		CompanyID:  c.ID,
		CustomerID: customers[0].ID,
		Subject:    "Invoice copy request",
		Body:       "Customer needs a duplicate of last month's invoice for their records.",
		Priority:   ticket.PriorityLow,
		Status:     ticket.StatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}); err != nil {
		return fmt.Errorf("create ticket: %w", err)
	}

	return nil
}

// emailDomain derives a plausible demo domain from the company name.
func emailDomain(name string) string {
	domain := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			domain = append(domain, r)
		case r >= 'A' && r <= 'Z':
			domain = append(domain, r+('a'-'A'))
		}
	}
	return string(domain) + ".example"
}
