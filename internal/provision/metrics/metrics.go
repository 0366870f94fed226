package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the channel-provisioning module.
type Metrics struct {
	// Provisioning outcomes: created, reused, suffixed, failed
	Provisions *prometheus.CounterVec

	// Best-effort step failures by step name
	StepFailures *prometheus.CounterVec

	// Full pipeline latency
	Duration prometheus.Histogram
}

// New creates a Metrics instance with all provisioning metrics registered.
func New() *Metrics {
	return &Metrics{
		Provisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onboardly_channel_provisions_total",
			Help: "Total channel provisioning attempts by outcome",
		}, []string{"outcome"}),

		StepFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onboardly_provision_step_failures_total",
			Help: "Best-effort provisioning step failures by step",
		}, []string{"step"}),

		Duration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "onboardly_provision_duration_seconds",
			Help:    "Duration of the full provisioning pipeline",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
	}
}

// IncrementProvision records a pipeline outcome.
func (m *Metrics) IncrementProvision(outcome string) {
	if m != nil {
		m.Provisions.WithLabelValues(outcome).Inc()
	}
}

// IncrementStepFailure records a best-effort step failure.
func (m *Metrics) IncrementStepFailure(step string) {
	if m != nil {
		m.StepFailures.WithLabelValues(step).Inc()
	}
}

// ObserveDuration records the full pipeline duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m != nil {
		m.Duration.Observe(d.Seconds())
	}
}
