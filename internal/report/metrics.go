package report

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts cache behavior per report type.
type Metrics struct {
	CacheHits    *prometheus.CounterVec
	CacheMisses  *prometheus.CounterVec
	Computations *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		CacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_report_cache_hits_total",
			Help: "Report requests served from the cache.",
		}, []string{"report_type"}),
		CacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_report_cache_misses_total",
			Help: "Report requests that missed the cache or forced a refresh.",
		}, []string{"report_type"}),
		Computations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_reports_computed_total",
			Help: "Report computations executed.",
		}, []string{"report_type"}),
	}
}
