package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	samples     *prometheus.CounterVec
	skipped     *prometheus.CounterVec
	events      *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New creates a recorder on the default registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the collectors on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		samples: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astrosignal_samples_evaluated_total",
				Help: "Total number of samples evaluated",
			},
			[]string{"policy"},
		),
		skipped: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astrosignal_samples_skipped_total",
				Help: "Samples skipped because the ephemeris failed",
			},
			[]string{"reason"},
		),
		events: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astrosignal_timeline_events_total",
				Help: "Change-point events emitted",
			},
			[]string{"policy"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astrosignal_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "astrosignal_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordSample(policy string) {
	r.samples.WithLabelValues(policy).Inc()
}

func (r *Recorder) RecordSkip(reason string) {
	r.skipped.WithLabelValues(reason).Inc()
}

func (r *Recorder) RecordEvents(policy string, n int) {
	r.events.WithLabelValues(policy).Add(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
