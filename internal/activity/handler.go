package activity

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/icnevudila/crm-sub011/internal/platform/middleware"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
	"github.com/icnevudila/crm-sub011/pkg/platform/httputil"
)

// Handler exposes the activity log read endpoint.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/activity", h.HandleList)
}

// EntryResponse is the JSON shape of an activity entry.
type EntryResponse struct {
	CompanyID  string    `json:"companyId"`
	UserID     string    `json:"userId"`
	Action     string    `json:"action"`
	EntityType string    `json:"entityType"`
	EntityID   string    `json:"entityId"`
	Detail     string    `json:"detail,omitempty"`
	At         time.Time `json:"at"`
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, ok := middleware.GetIdentity(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.service.List(ctx, ident.Scope(), limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list activity failed", "error", err, "request_id", middleware.GetRequestID(ctx))
		httputil.WriteError(w, err)
		return
	}

	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntryResponse{
			CompanyID:  e.CompanyID.String(),
			UserID:     e.UserID.String(),
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Detail:     e.Detail,
			At:         e.At,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"activity": out})
}
