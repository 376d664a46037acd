package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/icnevudila/crm-sub011/internal/auth/token"
	"github.com/icnevudila/crm-sub011/internal/platform/authz"
	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
	"github.com/icnevudila/crm-sub011/pkg/platform/httputil"
)

// Identity is the authenticated caller resolved from the session cookie.
type Identity struct {
	UserID      id.UserID
	CompanyID   id.CompanyID // nil for super-admin
	CompanyName string
	Email       string
	Role        authz.Role
	Token       string // opaque session token, used for logout/revocation
}

// Scope returns the tenant boundary every downstream query must honor:
// super-admins operate across companies, everyone else is pinned to their own.
func (i Identity) Scope() id.Scope {
	if i.Role.IsSuperAdmin() {
		return id.ScopeAll()
	}
	return id.ScopeCompany(i.CompanyID)
}

// SessionResolver turns an opaque session token into an Identity.
// Implementations must reject expired sessions and sessions whose user no
// longer exists, deleting the stored artifact in both cases.
type SessionResolver interface {
	ResolveSession(ctx context.Context, sessionToken string) (Identity, error)
}

type identityKey struct{}

// GetIdentity retrieves the authenticated identity from the context.
func GetIdentity(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(identityKey{}).(Identity)
	return ident, ok
}

// WithIdentity injects an identity into the context. Exported for tests.
func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, ident)
}

// RequireSession authenticates every request from the session cookie.
// Missing, malformed, expired, or orphaned sessions are rejected with 401 and
// the cookie is cleared so clients stop replaying it.
func RequireSession(codec *token.Codec, resolver SessionResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			cookie, err := r.Cookie(token.CookieName)
			if err != nil || cookie.Value == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
				return
			}

			sessionToken, err := codec.Verify(cookie.Value)
			if err != nil {
				logger.WarnContext(ctx, "rejected session cookie",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				token.ClearCookie(w)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
				return
			}

			ident, err := resolver.ResolveSession(ctx, sessionToken)
			if err != nil {
				if !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
					logger.ErrorContext(ctx, "session resolution failed",
						"error", err,
						"request_id", GetRequestID(ctx),
					)
					httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
					return
				}
				token.ClearCookie(w)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, ident)))
		})
	}
}

// RequirePermission gates a route on the central authorization policy.
// Must run inside RequireSession.
func RequirePermission(resource authz.Resource, action authz.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := GetIdentity(r.Context())
			if !ok {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
				return
			}
			if !authz.Can(ident.Role, resource, action) {
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "insufficient permissions"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
