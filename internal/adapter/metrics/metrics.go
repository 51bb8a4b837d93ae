package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pscheid92/bookvote/internal/platform/version"
)

// All bookvote series are exported as bookvote_<name>.
const namespace = "bookvote"

// Set bundles the registry with every collector group the CLI wires.
type Set struct {
	Registry   *prometheus.Registry
	Votes      *VoteMetrics
	RateLimits *RateLimitMetrics
	Store      *StoreMetrics
}

// New builds a registry carrying the runtime collectors, build info and all
// bookvote collector groups.
func New() *Set {
	reg := NewRegistry()
	return &Set{
		Registry:   reg,
		Votes:      NewVoteMetrics(reg),
		RateLimits: NewRateLimitMetrics(reg),
		Store:      NewStoreMetrics(reg),
	}
}

// NewRegistry creates a Prometheus registry with Go runtime and process collectors
// and a constant bookvote_build_info series.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(buildInfo(version.Get()))
	return reg
}

func buildInfo(info version.Info) prometheus.Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Build information of the running binary, always 1.",
		ConstLabels: prometheus.Labels{
			"version":    info.Version,
			"commit":     info.Commit,
			"go_version": info.GoVersion,
		},
	})
	g.Set(1)
	return g
}

// Handler returns an http.Handler that serves Prometheus metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
