package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RepositoryOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "aircnc", Name: "repository_operations_total", Help: "Document repository operations by collection, operation and outcome (ok, not_found, error)."},
		[]string{"collection", "operation", "outcome"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "aircnc", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "aircnc", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RepositoryOperations)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
