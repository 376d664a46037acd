package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	LoginSuccess    prometheus.Counter
	LoginFailure    prometheus.Counter
	SessionsRevoked prometheus.Counter
	SessionsExpired prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		LoginSuccess: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crm_logins_success_total",
			Help: "Total successful logins",
		}),
		LoginFailure: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crm_logins_failure_total",
			Help: "Total failed login attempts",
		}),
		SessionsRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crm_sessions_revoked_total",
			Help: "Total sessions revoked via logout or explicit revocation",
		}),
		SessionsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crm_sessions_expired_total",
			Help: "Total sessions rejected and cleared because they were expired",
		}),
	}
}
