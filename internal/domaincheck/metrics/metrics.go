package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the domain-check module.
type Metrics struct {
	// Check outcomes: available, unavailable, price_gated, upstream_error
	Checks *prometheus.CounterVec

	// Availability cache hits
	CacheHits prometheus.Counter

	// Registrar call latency
	UpstreamLatency prometheus.Histogram
}

// New creates a Metrics instance with all domain-check metrics registered.
func New() *Metrics {
	return &Metrics{
		Checks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onboardly_domain_checks_total",
			Help: "Total domain availability checks by outcome",
		}, []string{"outcome"}),

		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "onboardly_domain_check_cache_hits_total",
			Help: "Total domain checks served from the availability cache",
		}),

		UpstreamLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "onboardly_registrar_check_duration_seconds",
			Help:    "Duration of registrar availability calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
	}
}

// IncrementCheck records a check outcome.
func (m *Metrics) IncrementCheck(outcome string) {
	if m != nil {
		m.Checks.WithLabelValues(outcome).Inc()
	}
}

// IncrementCacheHit records a cache-served check.
func (m *Metrics) IncrementCacheHit() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

// ObserveUpstreamLatency records a registrar call duration.
func (m *Metrics) ObserveUpstreamLatency(d time.Duration) {
	if m != nil {
		m.UpstreamLatency.Observe(d.Seconds())
	}
}
