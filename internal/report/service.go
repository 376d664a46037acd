package report

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/icnevudila/crm-sub011/internal/customer"
	"github.com/icnevudila/crm-sub011/internal/deal"
	"github.com/icnevudila/crm-sub011/internal/invoice"
	"github.com/icnevudila/crm-sub011/internal/platform/middleware"
	"github.com/icnevudila/crm-sub011/internal/report/tracer"
	"github.com/icnevudila/crm-sub011/internal/ticket"
	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

// Report types served by this module.
const (
	TypeCustomerSummary = "customer_summary"
	TypeSalesPipeline   = "sales_pipeline"
	TypeInvoiceAging    = "invoice_aging"
	TypeTicketLoad      = "ticket_load"
)

// Result is one served report, cached or freshly computed.
type Result struct {
	ReportType string          `json:"reportType"`
	Cached     bool            `json:"cached"`
	ComputedAt time.Time       `json:"computedAt"`
	Data       json.RawMessage `json:"data"`
}

// Service computes reports and serves them through the TTL cache.
type Service struct {
	cache     CacheStore
	customers customer.Store
	deals     deal.Store
	invoices  invoice.Store
	tickets   ticket.Store
	ttl       time.Duration
	tracer    tracer.Tracer
	metrics   *Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures optional service dependencies.
type Option func(*Service)

// WithTracer wires a tracer around cache lookups and computation.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithMetrics wires cache hit/miss counters.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source. For tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(cache CacheStore, customers customer.Store, deals deal.Store,
	invoices invoice.Store, tickets ticket.Store, ttl time.Duration,
	logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		cache:     cache,
		customers: customers,
		deals:     deals,
		invoices:  invoices,
		tickets:   tickets,
		ttl:       ttl,
		tracer:    tracer.NewNoop(),
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get serves one report by type. forceRefresh bypasses the TTL window.
func (s *Service) Get(ctx context.Context, ident middleware.Identity, reportType string, forceRefresh bool) (*Result, error) {
	switch reportType {
	case TypeCustomerSummary:
		return s.getOrCompute(ctx, reportType, ident.Scope(), forceRefresh, s.computeCustomerSummary)
	case TypeSalesPipeline:
		return s.getOrCompute(ctx, reportType, ident.Scope(), forceRefresh, s.computeSalesPipeline)
	case TypeInvoiceAging:
		return s.getOrCompute(ctx, reportType, ident.Scope(), forceRefresh, s.computeInvoiceAging)
	case TypeTicketLoad:
		return s.getOrCompute(ctx, reportType, ident.Scope(), forceRefresh, s.computeTicketLoad)
	default:
		return nil, dErrors.New(dErrors.CodeNotFound, "unknown report type")
	}
}

// Overview assembles every report concurrently.
func (s *Service) Overview(ctx context.Context, ident middleware.Identity, forceRefresh bool) (map[string]*Result, error) {
	types := []string{TypeCustomerSummary, TypeSalesPipeline, TypeInvoiceAging, TypeTicketLoad}
	results := make([]*Result, len(types))

	g, gctx := errgroup.WithContext(ctx)
	for i, reportType := range types {
		g.Go(func() error {
			res, err := s.Get(gctx, ident, reportType, forceRefresh)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*Result, len(types))
	for i, reportType := range types {
		out[reportType] = results[i]
	}
	return out, nil
}

type computeFunc func(ctx context.Context, scope id.Scope) (any, error)

// getOrCompute implements the cache contract: serve a fresh entry unless a
// refresh is forced, otherwise compute and write through. Compute errors
// propagate; a stale entry is never served as a fallback. There is no mutual
// exclusion between concurrent misses.
func (s *Service) getOrCompute(ctx context.Context, reportType string, scope id.Scope,
	forceRefresh bool, compute computeFunc) (res *Result, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanReportGet,
		tracer.String(tracer.AttrReportType, reportType),
		tracer.String(tracer.AttrScope, scope.Key()),
		tracer.Bool(tracer.AttrForced, forceRefresh),
	)
	defer func() { span.End(err) }()

	now := s.now()
	scopeKey := scope.Key()

	if !forceRefresh {
		entry, getErr := s.cache.Get(ctx, reportType, scopeKey)
		if getErr != nil && !errors.Is(getErr, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(getErr, dErrors.CodeInternal, "report cache lookup failed")
		}
		if getErr == nil && entry.Fresh(now, s.ttl) {
			span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, true))
			s.countHit(reportType)
			return &Result{
				ReportType: reportType,
				Cached:     true,
				ComputedAt: entry.ComputedAt,
				Data:       entry.Payload,
			}, nil
		}
	}
	span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, false))
	s.countMiss(reportType)

	data, err := s.runCompute(ctx, reportType, scope, compute)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode report payload")
	}

	entry := &Entry{
		ReportType: reportType,
		ScopeKey:   scopeKey,
		Payload:    payload,
		ComputedAt: now,
	}
	// Write-through is best-effort: a cache write failure costs a recompute on
	// the next request, not the response.
	if putErr := s.cache.Put(ctx, entry); putErr != nil {
		s.logger.ErrorContext(ctx, "report cache write failed",
			"error", putErr,
			"report_type", reportType,
			"scope", scopeKey,
		)
	}
	return &Result{
		ReportType: reportType,
		Cached:     false,
		ComputedAt: now,
		Data:       payload,
	}, nil
}

func (s *Service) runCompute(ctx context.Context, reportType string, scope id.Scope, compute computeFunc) (data any, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanReportCompute,
		tracer.String(tracer.AttrReportType, reportType),
	)
	defer func() { span.End(err) }()

	if s.metrics != nil {
		s.metrics.Computations.WithLabelValues(reportType).Inc()
	}
	return compute(ctx, scope)
}

func (s *Service) countHit(reportType string) {
	if s.metrics != nil {
		s.metrics.CacheHits.WithLabelValues(reportType).Inc()
	}
}

func (s *Service) countMiss(reportType string) {
	if s.metrics != nil {
		s.metrics.CacheMisses.WithLabelValues(reportType).Inc()
	}
}

// customerSummary counts the customer book.
type customerSummary struct {
	Total         int `json:"total"`
	WithEmail     int `json:"withEmail"`
	RecentlyAdded int `json:"recentlyAdded"`
}

func (s *Service) computeCustomerSummary(ctx context.Context, scope id.Scope) (any, error) {
	customers, err := s.customers.List(ctx, scope)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read customers for report")
	}
	cutoff := s.now().AddDate(0, 0, -30)
	summary := customerSummary{Total: len(customers)}
	for _, c := range customers {
		if c.Email != "" {
			summary.WithEmail++
		}
		if c.CreatedAt.After(cutoff) {
			summary.RecentlyAdded++
		}
	}
	return summary, nil
}

// pipelineStage aggregates one kanban column.
type pipelineStage struct {
	Count       int   `json:"count"`
	AmountCents int64 `json:"amountCents"`
}

type salesPipeline struct {
	Stages    map[string]pipelineStage `json:"stages"`
	OpenCount int                      `json:"openCount"`
	OpenCents int64                    `json:"openCents"`
	WonCents  int64                    `json:"wonCents"`
	LostCount int                      `json:"lostCount"`
}

func (s *Service) computeSalesPipeline(ctx context.Context, scope id.Scope) (any, error) {
	deals, err := s.deals.List(ctx, scope)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read deals for report")
	}
	pipeline := salesPipeline{Stages: make(map[string]pipelineStage)}
	for _, d := range deals {
		stage := pipeline.Stages[string(d.Stage)]
		stage.Count++
		stage.AmountCents += d.AmountCents
		pipeline.Stages[string(d.Stage)] = stage

		switch d.Stage {
		case deal.StageWon:
			pipeline.WonCents += d.AmountCents
		case deal.StageLost:
			pipeline.LostCount++
		default:
			pipeline.OpenCount++
			pipeline.OpenCents += d.AmountCents
		}
	}
	return pipeline, nil
}

// invoiceAging buckets outstanding invoices by how overdue they are.
type invoiceAging struct {
	OutstandingCents int64 `json:"outstandingCents"`
	Current          int   `json:"current"`
	Overdue30        int   `json:"overdue30"`
	Overdue60        int   `json:"overdue60"`
	Overdue90Plus    int   `json:"overdue90Plus"`
	PaidCount        int   `json:"paidCount"`
}

func (s *Service) computeInvoiceAging(ctx context.Context, scope id.Scope) (any, error) {
	invoices, err := s.invoices.List(ctx, scope)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read invoices for report")
	}
	now := s.now()
	aging := invoiceAging{}
	for _, i := range invoices {
		switch i.Status {
		case invoice.StatusPaid:
			aging.PaidCount++
		case invoice.StatusSent:
			aging.OutstandingCents += i.AmountCents
			overdue := now.Sub(i.DueAt)
			switch {
			case overdue <= 0:
				aging.Current++
			case overdue <= 30*24*time.Hour:
				aging.Overdue30++
			case overdue <= 60*24*time.Hour:
				aging.Overdue60++
			default:
				aging.Overdue90Plus++
			}
		}
	}
	return aging, nil
}

// ticketLoad counts the support queue by status and priority.
type ticketLoad struct {
	ByStatus   map[string]int `json:"byStatus"`
	ByPriority map[string]int `json:"byPriority"`
	OpenTotal  int            `json:"openTotal"`
}

func (s *Service) computeTicketLoad(ctx context.Context, scope id.Scope) (any, error) {
	tickets, err := s.tickets.List(ctx, scope)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read tickets for report")
	}
	load := ticketLoad{
		ByStatus:   make(map[string]int),
		ByPriority: make(map[string]int),
	}
	for _, t := range tickets {
		load.ByStatus[string(t.Status)]++
		load.ByPriority[string(t.Priority)]++
		if t.Status == ticket.StatusOpen || t.Status == ticket.StatusInProgress {
			load.OpenTotal++
		}
	}
	return load, nil
}
