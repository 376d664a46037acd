// Package service implements login, logout, and session resolution: the
// tenant/identity path every authenticated request flows through.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	authmetrics "github.com/icnevudila/crm-sub011/internal/auth/metrics"
	"github.com/icnevudila/crm-sub011/internal/auth/models"
	sessionstore "github.com/icnevudila/crm-sub011/internal/auth/store/session"
	userstore "github.com/icnevudila/crm-sub011/internal/auth/store/user"
	"github.com/icnevudila/crm-sub011/internal/auth/token"
	"github.com/icnevudila/crm-sub011/internal/platform/middleware"
	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

// CompanyDirectory exposes the minimal company lookup login needs.
// Implemented by the company service.
type CompanyDirectory interface {
	CompanyStatus(ctx context.Context, companyID id.CompanyID) (name string, active bool, err error)
}

// Service orchestrates authentication and session lifecycle.
type Service struct {
	users      userstore.Store
	sessions   sessionstore.Store
	companies  CompanyDirectory
	codec      *token.Codec
	sessionTTL time.Duration
	logger     *slog.Logger
	metrics    *authmetrics.Metrics
	now        func() time.Time
}

// Option configures optional service dependencies.
type Option func(*Service)

// WithMetrics attaches Prometheus counters.
func WithMetrics(m *authmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source; used by tests to simulate expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(users userstore.Store, sessions sessionstore.Store, companies CompanyDirectory,
	codec *token.Codec, sessionTTL time.Duration, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		users:      users,
		sessions:   sessions,
		companies:  companies,
		codec:      codec,
		sessionTTL: sessionTTL,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginResult carries everything the handler needs to establish the session.
type LoginResult struct {
	User        *models.User
	CompanyName string
	Cookie      string
	ExpiresAt   time.Time
}

// Login verifies credentials and creates a session. Invalid email and invalid
// password produce the same error so the endpoint does not leak which one was
// wrong.
func (s *Service) Login(ctx context.Context, email, password, userAgent, ip string) (*LoginResult, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.countLoginFailure()
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		s.countLoginFailure()
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	if !u.CanLogin() {
		s.countLoginFailure()
		return nil, dErrors.New(dErrors.CodeForbidden, "account is disabled")
	}

	companyName := ""
	if !u.CompanyID.IsNil() {
		name, active, err := s.companies.CompanyStatus(ctx, u.CompanyID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up company")
		}
		if !active {
			s.countLoginFailure()
			return nil, dErrors.New(dErrors.CodeForbidden, "company is deactivated")
		}
		companyName = name
	}

	sessionToken, err := token.NewSessionToken()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}

	now := s.now()
	sess := &models.Session{
		Token:       sessionToken,
		UserID:      u.ID,
		CompanyID:   u.CompanyID,
		CompanyName: companyName,
		Email:       u.Email,
		Role:        u.Role,
		Device:      deviceLabel(userAgent),
		IP:          ip,
		ExpiresAt:   now.Add(s.sessionTTL),
		CreatedAt:   now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist session")
	}

	cookie, err := s.codec.Sign(sessionToken, sess.ExpiresAt)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign session")
	}

	s.logger.InfoContext(ctx, "user logged in",
		"user_id", u.ID,
		"role", u.Role,
		"company_id", u.CompanyID,
	)
	s.countLoginSuccess()

	return &LoginResult{User: u, CompanyName: companyName, Cookie: cookie, ExpiresAt: sess.ExpiresAt}, nil
}

// Logout deletes the session behind the token. Unknown tokens are not an
// error: the cookie is cleared either way.
func (s *Service) Logout(ctx context.Context, sessionToken string) error {
	if err := s.sessions.Delete(ctx, sessionToken); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete session")
	}
	if s.metrics != nil {
		s.metrics.SessionsRevoked.Inc()
	}
	return nil
}

// ResolveSession implements middleware.SessionResolver. Expired sessions and
// sessions whose user is gone or disabled are rejected as unauthenticated and
// the stored artifact is removed.
func (s *Service) ResolveSession(ctx context.Context, sessionToken string) (middleware.Identity, error) {
	sess, err := s.sessions.FindByToken(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return middleware.Identity{}, dErrors.New(dErrors.CodeUnauthorized, "session not found")
		}
		return middleware.Identity{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}

	if sess.Expired(s.now()) {
		if err := s.sessions.Delete(ctx, sessionToken); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to delete expired session", "error", err)
		}
		if s.metrics != nil {
			s.metrics.SessionsExpired.Inc()
		}
		return middleware.Identity{}, dErrors.New(dErrors.CodeUnauthorized, "session expired")
	}

	u, err := s.users.FindByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// User removed after the session was issued; the session is orphaned.
			if err := s.sessions.Delete(ctx, sessionToken); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
				s.logger.WarnContext(ctx, "failed to delete orphaned session", "error", err)
			}
			return middleware.Identity{}, dErrors.New(dErrors.CodeUnauthorized, "user no longer exists")
		}
		return middleware.Identity{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if !u.CanLogin() {
		return middleware.Identity{}, dErrors.New(dErrors.CodeUnauthorized, "account is disabled")
	}

	return middleware.Identity{
		UserID:      sess.UserID,
		CompanyID:   sess.CompanyID,
		CompanyName: sess.CompanyName,
		Email:       sess.Email,
		Role:        sess.Role,
		Token:       sess.Token,
	}, nil
}

// ListSessions returns the caller's active sessions, marking the current one.
func (s *Service) ListSessions(ctx context.Context, userID id.UserID, currentToken string) ([]models.SessionResponse, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list sessions")
	}

	now := s.now()
	out := make([]models.SessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		if sess.Expired(now) {
			continue
		}
		out = append(out, models.SessionResponse{
			Token:     sess.Token,
			Device:    sess.Device,
			IP:        sess.IP,
			Current:   sess.Token == currentToken,
			CreatedAt: sess.CreatedAt,
			ExpiresAt: sess.ExpiresAt,
		})
	}
	return out, nil
}

// RevokeSession deletes one of the caller's sessions. Tokens belonging to
// other users are reported as not found.
func (s *Service) RevokeSession(ctx context.Context, userID id.UserID, sessionToken string) error {
	sess, err := s.sessions.FindByToken(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "session not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	if sess.UserID != userID {
		return dErrors.New(dErrors.CodeNotFound, "session not found")
	}
	if err := s.sessions.Delete(ctx, sessionToken); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete session")
	}
	if s.metrics != nil {
		s.metrics.SessionsRevoked.Inc()
	}
	return nil
}

// ListUsers returns the accounts of the caller's company. A super-admin may
// pass any company; everyone else only sees their own.
func (s *Service) ListUsers(ctx context.Context, ident middleware.Identity, companyID id.CompanyID) ([]models.UserResponse, error) {
	if !ident.Role.IsSuperAdmin() {
		companyID = ident.CompanyID
	}
	if companyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "a company id is required")
	}
	users, err := s.users.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	out := make([]models.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, models.UserResponse{
			ID:        u.ID.String(),
			Email:     u.Email,
			Name:      u.Name,
			Role:      string(u.Role),
			CompanyID: u.CompanyID.String(),
		})
	}
	return out, nil
}

// CleanupExpired removes expired sessions. Run periodically from main.
func (s *Service) CleanupExpired(ctx context.Context) {
	removed, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "session cleanup failed", "error", err)
		return
	}
	if removed > 0 {
		s.logger.InfoContext(ctx, "session cleanup", "removed", removed)
	}
}

func (s *Service) countLoginSuccess() {
	if s.metrics != nil {
		s.metrics.LoginSuccess.Inc()
	}
}

func (s *Service) countLoginFailure() {
	if s.metrics != nil {
		s.metrics.LoginFailure.Inc()
	}
}
