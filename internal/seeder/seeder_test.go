package seeder

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	userstore "github.com/icnevudila/crm-sub011/internal/auth/store/user"
	"github.com/icnevudila/crm-sub011/internal/company"
	"github.com/icnevudila/crm-sub011/internal/customer"
	"github.com/icnevudila/crm-sub011/internal/deal"
	"github.com/icnevudila/crm-sub011/internal/task"
	"github.com/icnevudila/crm-sub011/internal/ticket"
	"github.com/icnevudila/crm-sub011/internal/vendor"
	id "github.com/icnevudila/crm-sub011/pkg/domain"
)

func newSeeder() (*Seeder, company.Store, userstore.Store, customer.Store) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	companies := company.NewInMemory()
	users := userstore.NewInMemory()
	customers := customer.NewInMemory()
	s := New(companies, users, customers, vendor.NewInMemory(), deal.NewInMemory(),
		task.NewInMemory(), ticket.NewInMemory(), logger)
	return s, companies, users, customers
}

func TestSeedCreatesTenantsAndAccounts(t *testing.T) {
	s, companies, users, customers := newSeeder()

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	all, err := companies.List(context.Background())
	if err != nil || len(all) != 2 {
		t.Fatalf("expected two demo companies, got %d (%v)", len(all), err)
	}

	root, err := users.FindByEmail(context.Background(), superAdminEmail)
	if err != nil {
		t.Fatalf("expected seeded super-admin: %v", err)
	}
	if !root.CompanyID.IsNil() {
		t.Fatalf("super-admin must not belong to a company")
	}

	for _, c := range all {
		rows, err := customers.List(context.Background(), id.ScopeCompany(c.ID))
		if err != nil || len(rows) != 3 {
			t.Fatalf("expected three customers for %s, got %d (%v)", c.Name, len(rows), err)
		}
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	s, companies, _, _ := newSeeder()

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	all, err := companies.List(context.Background())
	if err != nil || len(all) != 2 {
		t.Fatalf("expected the second run to be a no-op, got %d companies (%v)", len(all), err)
	}
}
