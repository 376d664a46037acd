package approval

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/icnevudila/crm-sub011/internal/platform/authz"
	"github.com/icnevudila/crm-sub011/internal/platform/middleware"
	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
	"github.com/icnevudila/crm-sub011/pkg/platform/httputil"
)

// Handler exposes the approval endpoints. The decide route carries its own
// policy gate because it needs a stronger action than the group default.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/approvals", h.HandleCreate)
	r.Get("/approvals", h.HandleList)
	r.Get("/approvals/{id}", h.HandleGet)
	r.With(middleware.RequirePermission(authz.ResourceApprovals, authz.ActionDecide)).
		Post("/approvals/{id}/decide", h.HandleDecide)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, ok := middleware.GetIdentity(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateRequest](w, r, h.logger)
	if !ok {
		return
	}

	a, err := h.service.Create(ctx, ident, *req)
	if err != nil {
		h.logger.ErrorContext(ctx, "create approval failed", "error", err, "request_id", middleware.GetRequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(a))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, ok := middleware.GetIdentity(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	approvals, err := h.service.List(ctx, ident)
	if err != nil {
		h.logger.ErrorContext(ctx, "list approvals failed", "error", err, "request_id", middleware.GetRequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	out := make([]Response, 0, len(approvals))
	for _, a := range approvals {
		out = append(out, toResponse(a))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"approvals": out})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, ok := middleware.GetIdentity(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	approvalID, err := id.ParseApprovalID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid approval id"))
		return
	}

	a, err := h.service.Get(ctx, ident, approvalID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(a))
}

func (h *Handler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, ok := middleware.GetIdentity(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	approvalID, err := id.ParseApprovalID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid approval id"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[DecideRequest](w, r, h.logger)
	if !ok {
		return
	}

	a, err := h.service.Decide(ctx, ident, approvalID, *req)
	if err != nil {
		h.logger.WarnContext(ctx, "decide approval failed", "error", err, "request_id", middleware.GetRequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(a))
}
