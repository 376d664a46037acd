package assist

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/icnevudila/crm-sub011/internal/platform/middleware"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
	"github.com/icnevudila/crm-sub011/pkg/platform/httputil"
)

// Handler exposes the text generation endpoints.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/assist/followup-email", h.HandleFollowUpEmail)
	r.Post("/assist/deal-summary", h.HandleDealSummary)
}

func (h *Handler) HandleFollowUpEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, ok := middleware.GetIdentity(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[FollowUpEmailRequest](w, r, h.logger)
	if !ok {
		return
	}

	res, err := h.service.FollowUpEmail(ctx, ident, *req)
	if err != nil {
		h.logger.ErrorContext(ctx, "follow-up email draft failed", "error", err, "request_id", middleware.GetRequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleDealSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, ok := middleware.GetIdentity(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[DealSummaryRequest](w, r, h.logger)
	if !ok {
		return
	}

	res, err := h.service.DealSummary(ctx, ident, *req)
	if err != nil {
		h.logger.ErrorContext(ctx, "deal summary failed", "error", err, "request_id", middleware.GetRequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}
