package metrics

import "github.com/prometheus/client_golang/prometheus"

// VoteMetrics holds Prometheus metrics for vote processing.
type VoteMetrics struct {
	VotesProcessed     *prometheus.CounterVec
	ProcessingDuration prometheus.Histogram
	TallyDelta         *prometheus.CounterVec
}

// NewVoteMetrics creates and registers vote metrics on the given registry.
func NewVoteMetrics(reg prometheus.Registerer) *VoteMetrics {
	m := &VoteMetrics{
		VotesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_processed_total",
			Help:      "Total number of vote calls, by policy, direction and result.",
		}, []string{"policy", "direction", "result"}),
		ProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "votes_processing_duration_seconds",
			Help:      "Duration of vote processing in seconds, including the ranking update.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
		TallyDelta: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_tally_delta_total",
			Help:      "Absolute tally change applied by votes, by sign.",
		}, []string{"sign"}),
	}

	reg.MustRegister(m.VotesProcessed, m.ProcessingDuration, m.TallyDelta)
	return m
}

// ObserveDelta records the applied tally change.
func (m *VoteMetrics) ObserveDelta(delta int64) {
	switch {
	case delta > 0:
		m.TallyDelta.WithLabelValues("positive").Add(float64(delta))
	case delta < 0:
		m.TallyDelta.WithLabelValues("negative").Add(float64(-delta))
	}
}
