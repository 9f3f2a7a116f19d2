// Package metrics exposes propagation run counters over a Prometheus
// registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the Prometheus instruments updated during candidate
// propagation. All instruments are safe for concurrent use by the worker
// pool.
type Collector struct {
	registry *prometheus.Registry

	CandidatesProcessed prometheus.Counter
	CandidatesRejected  prometheus.Counter
	SecondariesSpawned  prometheus.Counter
	StepsPerCandidate   prometheus.Histogram
}

// NewCollector creates a collector with its own registry
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		CandidatesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "propagation_candidates_processed_total",
			Help: "Number of candidates fully propagated, secondaries included.",
		}),
		CandidatesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "propagation_candidates_rejected_total",
			Help: "Number of candidates deactivated by a break condition.",
		}),
		SecondariesSpawned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "propagation_secondaries_spawned_total",
			Help: "Number of secondary candidates spawned by interactions.",
		}),
		StepsPerCandidate: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "propagation_steps_per_candidate",
			Help:    "Chain invocations per candidate before termination.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 12),
		}),
	}
	c.registry.MustRegister(
		c.CandidatesProcessed,
		c.CandidatesRejected,
		c.SecondariesSpawned,
		c.StepsPerCandidate,
	)
	return c
}

// Handler returns an HTTP handler serving the collector's registry in
// Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, e.g. for tests
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
