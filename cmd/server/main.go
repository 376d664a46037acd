package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/icnevudila/crm-sub011/internal/activity"
	"github.com/icnevudila/crm-sub011/internal/approval"
	"github.com/icnevudila/crm-sub011/internal/assist"
	authhandler "github.com/icnevudila/crm-sub011/internal/auth/handler"
	authmetrics "github.com/icnevudila/crm-sub011/internal/auth/metrics"
	authservice "github.com/icnevudila/crm-sub011/internal/auth/service"
	sessionstore "github.com/icnevudila/crm-sub011/internal/auth/store/session"
	userstore "github.com/icnevudila/crm-sub011/internal/auth/store/user"
	"github.com/icnevudila/crm-sub011/internal/auth/token"
	"github.com/icnevudila/crm-sub011/internal/company"
	"github.com/icnevudila/crm-sub011/internal/customer"
	"github.com/icnevudila/crm-sub011/internal/deal"
	"github.com/icnevudila/crm-sub011/internal/invoice"
	"github.com/icnevudila/crm-sub011/internal/notification"
	"github.com/icnevudila/crm-sub011/internal/platform/config"
	"github.com/icnevudila/crm-sub011/internal/platform/database"
	"github.com/icnevudila/crm-sub011/internal/platform/health"
	"github.com/icnevudila/crm-sub011/internal/platform/logger"
	"github.com/icnevudila/crm-sub011/internal/platform/redis"
	"github.com/icnevudila/crm-sub011/internal/quote"
	"github.com/icnevudila/crm-sub011/internal/report"
	"github.com/icnevudila/crm-sub011/internal/report/tracer"
	"github.com/icnevudila/crm-sub011/internal/seeder"
	"github.com/icnevudila/crm-sub011/internal/shipment"
	"github.com/icnevudila/crm-sub011/internal/task"
	"github.com/icnevudila/crm-sub011/internal/ticket"
	httptransport "github.com/icnevudila/crm-sub011/internal/transport/http"
	"github.com/icnevudila/crm-sub011/internal/vendor"
	"github.com/icnevudila/crm-sub011/migrations"
)

const sessionCleanupInterval = time.Hour

// stores bundles every persistence dependency so selection between the
// memory and Postgres backends happens in one place.
type stores struct {
	companies     company.Store
	users         userstore.Store
	sessions      sessionstore.Store
	customers     customer.Store
	vendors       vendor.Store
	deals         deal.Store
	quotes        quote.Store
	invoices      invoice.Store
	shipments     shipment.Store
	tasks         task.Store
	tickets       ticket.Store
	approvals     approval.Store
	notifications notification.Store
	activities    activity.Store
	reportCache   report.CacheStore
}

func newStores(pool *database.Pool, rdb *redis.Client) stores {
	if pool == nil {
		s := stores{
			companies:     company.NewInMemory(),
			users:         userstore.NewInMemory(),
			sessions:      sessionstore.NewInMemory(),
			customers:     customer.NewInMemory(),
			vendors:       vendor.NewInMemory(),
			deals:         deal.NewInMemory(),
			quotes:        quote.NewInMemory(),
			invoices:      invoice.NewInMemory(),
			shipments:     shipment.NewInMemory(),
			tasks:         task.NewInMemory(),
			tickets:       ticket.NewInMemory(),
			approvals:     approval.NewInMemory(),
			notifications: notification.NewInMemory(),
			activities:    activity.NewInMemory(),
			reportCache:   report.NewInMemoryCache(),
		}
		if rdb != nil {
			s.sessions = sessionstore.NewRedis(rdb.Client)
		}
		return s
	}

	db := pool.DB()
	s := stores{
		companies:     company.NewPostgres(db),
		users:         userstore.NewPostgres(db),
		sessions:      sessionstore.NewPostgres(db),
		customers:     customer.NewPostgres(db),
		vendors:       vendor.NewPostgres(db),
		deals:         deal.NewPostgres(db),
		quotes:        quote.NewPostgres(db),
		invoices:      invoice.NewPostgres(db),
		shipments:     shipment.NewPostgres(db),
		tasks:         task.NewPostgres(db),
		tickets:       ticket.NewPostgres(db),
		approvals:     approval.NewPostgres(db),
		notifications: notification.NewPostgres(db),
		activities:    activity.NewPostgres(db),
		reportCache:   report.NewPostgresCache(db),
	}
	// Sessions prefer Redis when available: resolution runs on every request.
	if rdb != nil {
		s.sessions = sessionstore.NewRedis(rdb.Client)
	}
	return s
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info").Error("configuration error", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	log.Info("initializing crm server",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"postgres", cfg.DatabaseURL != "",
		"redis", cfg.RedisURL != "",
		"assist", cfg.OpenAIAPIKey != "",
	)

	ctx := context.Background()

	pool, err := database.New(database.DefaultConfig(cfg.DatabaseURL))
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close() //nolint:errcheck // shutdown path
		if err := pool.Migrate(ctx, migrations.FS); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
	}

	rdb, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close() //nolint:errcheck // shutdown path
	}

	st := newStores(pool, rdb)

	codec := token.NewCodec(cfg.SessionSecret)

	companySvc := company.NewService(st.companies, log)
	authSvc := authservice.New(st.users, st.sessions, companySvc, codec, cfg.SessionTTL, log,
		authservice.WithMetrics(authmetrics.New()))

	activitySvc := activity.NewService(st.activities, log)
	notificationSvc := notification.NewService(st.notifications, log)

	customerSvc := customer.NewService(st.customers, activitySvc, log)
	vendorSvc := vendor.NewService(st.vendors, activitySvc, log)
	dealSvc := deal.NewService(st.deals, st.customers, activitySvc, notificationSvc, log)
	invoiceSvc := invoice.NewService(st.invoices, st.customers, activitySvc, log)
	quoteSvc := quote.NewService(st.quotes, st.customers, invoiceSvc, activitySvc, log)
	shipmentSvc := shipment.NewService(st.shipments, st.customers, activitySvc, log)
	taskSvc := task.NewService(st.tasks, activitySvc, notificationSvc, log)
	ticketSvc := ticket.NewService(st.tickets, activitySvc, notificationSvc, log)
	approvalSvc := approval.NewService(st.approvals, activitySvc, notificationSvc, log)

	reportSvc := report.NewService(st.reportCache, st.customers, st.deals, st.invoices,
		st.tickets, cfg.ReportCacheTTL, log,
		report.WithTracer(tracer.NewOTel()),
		report.WithMetrics(report.NewMetrics()))

	var completer assist.Completer
	if cfg.OpenAIAPIKey != "" {
		completer = assist.NewOpenAI(cfg.OpenAIAPIKey)
	}
	assistSvc := assist.NewService(completer, st.customers, st.deals, log)

	if cfg.SeedDemoData {
		seed := seeder.New(st.companies, st.users, st.customers, st.vendors,
			st.deals, st.tasks, st.tickets, log)
		if err := seed.Run(ctx); err != nil {
			log.Error("demo seed failed", "error", err)
			os.Exit(1)
		}
	}

	healthHandler := health.New(cfg.Environment)
	if pool != nil {
		healthHandler.RegisterCheck("postgres", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(checkCtx)
		})
	}
	if rdb != nil {
		healthHandler.RegisterCheck("redis", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return rdb.Health(checkCtx)
		})
	}

	router := httptransport.NewRouter(httptransport.Handlers{
		Auth:         authhandler.New(authSvc, log),
		Company:      company.NewHandler(companySvc, log),
		Customer:     customer.NewHandler(customerSvc, log),
		Vendor:       vendor.NewHandler(vendorSvc, log),
		Deal:         deal.NewHandler(dealSvc, log),
		Quote:        quote.NewHandler(quoteSvc, log),
		Invoice:      invoice.NewHandler(invoiceSvc, log),
		Shipment:     shipment.NewHandler(shipmentSvc, log),
		Task:         task.NewHandler(taskSvc, log),
		Ticket:       ticket.NewHandler(ticketSvc, log),
		Approval:     approval.NewHandler(approvalSvc, log),
		Notification: notification.NewHandler(notificationSvc, log),
		Activity:     activity.NewHandler(activitySvc, log),
		Report:       report.NewHandler(reportSvc, log),
		Assist:       assist.NewHandler(assistSvc, log),
		Health:       healthHandler,
	}, codec, authSvc, log)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go runSessionCleanup(cleanupCtx, authSvc, log)

	go func() {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

// runSessionCleanup prunes expired sessions until ctx is cancelled.
func runSessionCleanup(ctx context.Context, svc *authservice.Service, log *slog.Logger) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.CleanupExpired(ctx)
		}
	}
}
