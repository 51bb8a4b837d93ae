package metrics

import "github.com/prometheus/client_golang/prometheus"

// RateLimitMetrics counts quota checks.
type RateLimitMetrics struct {
	Checks *prometheus.CounterVec
}

func NewRateLimitMetrics(reg prometheus.Registerer) *RateLimitMetrics {
	m := &RateLimitMetrics{
		Checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_checks_total",
			Help:      "Total number of quota checks, by outcome (allowed, exceeded, error).",
		}, []string{"outcome"}),
	}

	reg.MustRegister(m.Checks)
	return m
}
