// Package httptransport assembles the HTTP surface: middleware stack, public
// routes, and the session-guarded API grouped by resource permission.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/icnevudila/crm-sub011/internal/activity"
	"github.com/icnevudila/crm-sub011/internal/approval"
	"github.com/icnevudila/crm-sub011/internal/assist"
	authhandler "github.com/icnevudila/crm-sub011/internal/auth/handler"
	"github.com/icnevudila/crm-sub011/internal/auth/token"
	"github.com/icnevudila/crm-sub011/internal/company"
	"github.com/icnevudila/crm-sub011/internal/customer"
	"github.com/icnevudila/crm-sub011/internal/deal"
	"github.com/icnevudila/crm-sub011/internal/invoice"
	"github.com/icnevudila/crm-sub011/internal/notification"
	"github.com/icnevudila/crm-sub011/internal/platform/authz"
	"github.com/icnevudila/crm-sub011/internal/platform/health"
	"github.com/icnevudila/crm-sub011/internal/platform/metrics"
	"github.com/icnevudila/crm-sub011/internal/platform/middleware"
	"github.com/icnevudila/crm-sub011/internal/quote"
	"github.com/icnevudila/crm-sub011/internal/report"
	"github.com/icnevudila/crm-sub011/internal/shipment"
	"github.com/icnevudila/crm-sub011/internal/task"
	"github.com/icnevudila/crm-sub011/internal/ticket"
	"github.com/icnevudila/crm-sub011/internal/vendor"
)

const requestTimeout = 30 * time.Second

// Handlers collects every mounted handler so the router stays a pure wiring
// function.
type Handlers struct {
	Auth         *authhandler.Handler
	Company      *company.Handler
	Customer     *customer.Handler
	Vendor       *vendor.Handler
	Deal         *deal.Handler
	Quote        *quote.Handler
	Invoice      *invoice.Handler
	Shipment     *shipment.Handler
	Task         *task.Handler
	Ticket       *ticket.Handler
	Approval     *approval.Handler
	Notification *notification.Handler
	Activity     *activity.Handler
	Report       *report.Handler
	Assist       *assist.Handler
	Health       *health.Handler
}

// NewRouter wires the middleware stack, the public routes, and the
// authenticated API. Every API route group is gated on the central policy.
func NewRouter(h Handlers, codec *token.Codec, resolver middleware.SessionResolver, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(metrics.Middleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.ContentTypeJSON)

	// Public surface: login, health, metrics.
	h.Auth.RegisterPublic(r)
	h.Health.Register(r)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Group(func(api chi.Router) {
		api.Use(middleware.RequireSession(codec, resolver, logger))

		h.Auth.Register(api)

		api.Group(func(g chi.Router) {
			g.Use(middleware.RequirePermission(authz.ResourceUsers, authz.ActionRead))
			h.Auth.RegisterUsers(g)
		})
		api.Group(func(g chi.Router) {
			// Tenant management is the super-admin surface; the policy only
			// grants companies to SUPER_ADMIN.
			g.Use(middleware.RequirePermission(authz.ResourceCompanies, authz.ActionWrite))
			h.Company.Register(g)
		})
		mount(api, authz.ResourceCustomers, h.Customer.Register)
		mount(api, authz.ResourceVendors, h.Vendor.Register)
		mount(api, authz.ResourceDeals, h.Deal.Register)
		mount(api, authz.ResourceQuotes, h.Quote.Register)
		mount(api, authz.ResourceInvoices, h.Invoice.Register)
		mount(api, authz.ResourceShipments, h.Shipment.Register)
		mount(api, authz.ResourceTasks, h.Task.Register)
		mount(api, authz.ResourceTickets, h.Ticket.Register)
		mount(api, authz.ResourceApprovals, h.Approval.Register)
		mount(api, authz.ResourceNotifications, h.Notification.Register)
		api.Group(func(g chi.Router) {
			g.Use(middleware.RequirePermission(authz.ResourceActivity, authz.ActionRead))
			h.Activity.Register(g)
		})
		api.Group(func(g chi.Router) {
			g.Use(middleware.RequirePermission(authz.ResourceReports, authz.ActionRead))
			h.Report.Register(g)
		})
		api.Group(func(g chi.Router) {
			g.Use(middleware.RequirePermission(authz.ResourceAssist, authz.ActionWrite))
			h.Assist.Register(g)
		})
	})

	return r
}

// mount registers a resource's routes behind read permission for GETs and
// write permission for everything else.
func mount(api chi.Router, resource authz.Resource, register func(chi.Router)) {
	api.Group(func(g chi.Router) {
		g.Use(splitPermission(resource))
		register(g)
	})
}

// splitPermission picks the action from the HTTP method so a single Register
// call covers both read and write routes.
func splitPermission(resource authz.Resource) func(http.Handler) http.Handler {
	read := middleware.RequirePermission(resource, authz.ActionRead)
	write := middleware.RequirePermission(resource, authz.ActionWrite)
	return func(next http.Handler) http.Handler {
		readGuard := read(next)
		writeGuard := write(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead:
				readGuard.ServeHTTP(w, r)
			default:
				writeGuard.ServeHTTP(w, r)
			}
		})
	}
}
