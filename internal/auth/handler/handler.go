package handler

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/icnevudila/crm-sub011/internal/auth/models"
	"github.com/icnevudila/crm-sub011/internal/auth/service"
	"github.com/icnevudila/crm-sub011/internal/auth/token"
	"github.com/icnevudila/crm-sub011/internal/platform/middleware"
	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
	"github.com/icnevudila/crm-sub011/pkg/platform/httputil"
)

// Handler exposes the authentication endpoints.
type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

func New(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// RegisterPublic mounts the routes that work without a session.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
}

// Register mounts the session-guarded routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/logout", h.HandleLogout)
	r.Get("/auth/me", h.HandleMe)
	r.Get("/auth/sessions", h.HandleListSessions)
	r.Delete("/auth/sessions/{token}", h.HandleRevokeSession)
}

// RegisterUsers mounts the user directory route; the router guards it with
// the users permission.
func (h *Handler) RegisterUsers(r chi.Router) {
	r.Get("/users", h.HandleListUsers)
}

// HandleLogin authenticates credentials and sets the session cookie.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeAndPrepare[models.LoginRequest](w, r, h.logger)
	if !ok {
		return
	}

	res, err := h.service.Login(ctx, req.Email, req.Password, r.UserAgent(), clientIP(r))
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	token.SetCookie(w, res.Cookie, res.ExpiresAt)
	httputil.WriteJSON(w, http.StatusOK, userResponse(res.User, res.CompanyName))
}

// HandleLogout deletes the session and clears the cookie.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, ok := middleware.GetIdentity(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	if err := h.service.Logout(ctx, ident.Token); err != nil {
		h.logger.ErrorContext(ctx, "logout failed", "error", err, "request_id", middleware.GetRequestID(ctx))
		httputil.WriteError(w, err)
		return
	}

	token.ClearCookie(w)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// HandleMe returns the authenticated identity.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	resp := models.UserResponse{
		ID:          ident.UserID.String(),
		Email:       ident.Email,
		Role:        string(ident.Role),
		CompanyName: ident.CompanyName,
	}
	if !ident.CompanyID.IsNil() {
		resp.CompanyID = ident.CompanyID.String()
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleListSessions lists the caller's active sessions.
func (h *Handler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, ok := middleware.GetIdentity(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	sessions, err := h.service.ListSessions(ctx, ident.UserID, ident.Token)
	if err != nil {
		h.logger.ErrorContext(ctx, "list sessions failed", "error", err, "request_id", middleware.GetRequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// HandleRevokeSession deletes one of the caller's sessions by token.
func (h *Handler) HandleRevokeSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, ok := middleware.GetIdentity(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	if err := h.service.RevokeSession(ctx, ident.UserID, chi.URLParam(r, "token")); err != nil {
		h.logger.WarnContext(ctx, "revoke session failed", "error", err, "request_id", middleware.GetRequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

// HandleListUsers lists the accounts of a company. Non-super-admins are
// pinned to their own company regardless of the query parameter.
func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, ok := middleware.GetIdentity(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	var companyID id.CompanyID
	if raw := r.URL.Query().Get("companyId"); raw != "" {
		parsed, err := id.ParseCompanyID(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid company id"))
			return
		}
		companyID = parsed
	}

	users, err := h.service.ListUsers(ctx, ident, companyID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list users failed", "error", err, "request_id", middleware.GetRequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}

func userResponse(u *models.User, companyName string) models.UserResponse {
	resp := models.UserResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		Name:        u.Name,
		Role:        string(u.Role),
		CompanyName: companyName,
	}
	if !u.CompanyID.IsNil() {
		resp.CompanyID = u.CompanyID.String()
	}
	return resp
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
