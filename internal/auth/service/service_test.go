package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/icnevudila/crm-sub011/internal/auth/models"
	sessionstore "github.com/icnevudila/crm-sub011/internal/auth/store/session"
	userstore "github.com/icnevudila/crm-sub011/internal/auth/store/user"
	"github.com/icnevudila/crm-sub011/internal/auth/token"
	"github.com/icnevudila/crm-sub011/internal/platform/authz"
	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

const testPassword = "hunter2!"

type stubDirectory struct {
	name   string
	active bool
}

func (d stubDirectory) CompanyStatus(context.Context, id.CompanyID) (string, bool, error) {
	return d.name, d.active, nil
}

type env struct {
	svc      *Service
	users    userstore.Store
	sessions sessionstore.Store
	user     *models.User
	clock    *fakeClock
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newEnv(t *testing.T, active bool) *env {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	users := userstore.NewInMemory()
	sessions := sessionstore.NewInMemory()
	clock := &fakeClock{now: time.Now()}

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &models.User{
		ID:           id.NewUserID(),
		CompanyID:    id.NewCompanyID(),
		Email:        "sales@acme.example",
		Name:         "Sales",
		Role:         authz.RoleSales,
		PasswordHash: string(hash),
		Status:       models.UserActive,
		CreatedAt:    clock.now,
	}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	svc := New(users, sessions, stubDirectory{name: "Acme", active: active},
		token.NewCodec("test-secret"), time.Hour, logger, WithClock(clock.Now))
	return &env{svc: svc, users: users, sessions: sessions, user: u, clock: clock}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	e := newEnv(t, true)

	if _, err := e.svc.Login(context.Background(), "nobody@acme.example", testPassword, "", ""); !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for unknown email, got %v", err)
	}
	if _, err := e.svc.Login(context.Background(), e.user.Email, "wrong", "", ""); !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for bad password, got %v", err)
	}
}

func TestLoginBlockedForInactiveCompany(t *testing.T) {
	e := newEnv(t, false)

	if _, err := e.svc.Login(context.Background(), e.user.Email, testPassword, "", ""); !dErrors.HasCode(err, dErrors.CodeForbidden) {
		t.Fatalf("expected forbidden for deactivated company, got %v", err)
	}
}

func TestLoginAndResolve(t *testing.T) {
	e := newEnv(t, true)

	res, err := e.svc.Login(context.Background(), e.user.Email, testPassword, "Mozilla/5.0", "10.0.0.1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Cookie == "" {
		t.Fatalf("expected a signed cookie")
	}
	if res.CompanyName != "Acme" {
		t.Fatalf("expected company name to be resolved, got %q", res.CompanyName)
	}

	sessions, err := e.sessions.ListByUser(context.Background(), e.user.ID)
	if err != nil || len(sessions) != 1 {
		t.Fatalf("expected one stored session, got %d (%v)", len(sessions), err)
	}

	ident, err := e.svc.ResolveSession(context.Background(), sessions[0].Token)
	if err != nil {
		t.Fatalf("resolve session: %v", err)
	}
	if ident.UserID != e.user.ID || ident.CompanyID != e.user.CompanyID || ident.Role != authz.RoleSales {
		t.Fatalf("resolved identity mismatch: %+v", ident)
	}
}

func TestExpiredSessionIsRejectedAndDeleted(t *testing.T) {
	e := newEnv(t, true)

	if _, err := e.svc.Login(context.Background(), e.user.Email, testPassword, "", ""); err != nil {
		t.Fatalf("login: %v", err)
	}
	sessions, _ := e.sessions.ListByUser(context.Background(), e.user.ID)
	tok := sessions[0].Token

	e.clock.now = e.clock.now.Add(2 * time.Hour)

	if _, err := e.svc.ResolveSession(context.Background(), tok); !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for expired session, got %v", err)
	}
	if _, err := e.sessions.FindByToken(context.Background(), tok); !errors.Is(err, sentinel.ErrNotFound) {
		t.Fatalf("expected expired session artifact to be deleted, got %v", err)
	}
}

func TestResolveRejectsOrphanedSession(t *testing.T) {
	e := newEnv(t, true)

	if _, err := e.svc.Login(context.Background(), e.user.Email, testPassword, "", ""); err != nil {
		t.Fatalf("login: %v", err)
	}
	sessions, _ := e.sessions.ListByUser(context.Background(), e.user.ID)
	tok := sessions[0].Token

	e.user.Status = models.UserDisabled
	if err := e.users.Update(context.Background(), e.user); err != nil {
		t.Fatalf("disable user: %v", err)
	}

	if _, err := e.svc.ResolveSession(context.Background(), tok); !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for disabled user, got %v", err)
	}
}

func TestLogoutDeletesSession(t *testing.T) {
	e := newEnv(t, true)

	if _, err := e.svc.Login(context.Background(), e.user.Email, testPassword, "", ""); err != nil {
		t.Fatalf("login: %v", err)
	}
	sessions, _ := e.sessions.ListByUser(context.Background(), e.user.ID)
	tok := sessions[0].Token

	if err := e.svc.Logout(context.Background(), tok); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := e.svc.ResolveSession(context.Background(), tok); !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized after logout, got %v", err)
	}

	// Logging out twice is fine; the cookie is cleared either way.
	if err := e.svc.Logout(context.Background(), tok); err != nil {
		t.Fatalf("second logout: %v", err)
	}
}
