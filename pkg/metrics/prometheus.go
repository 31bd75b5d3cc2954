package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	updatesRouted   *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	lastRate        *prometheus.GaugeVec
	latency         *prometheus.HistogramVec
	bootstrapsTotal *prometheus.CounterVec
	filledPoints    *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		updatesRouted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yieldpull_updates_routed_total",
				Help: "Total number of rate updates routed to backend",
			},
			[]string{"backend", "country"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yieldpull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastRate: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "yieldpull_last_rate",
				Help: "Last observed yield per country and maturity",
			},
			[]string{"country", "maturity"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "yieldpull_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		bootstrapsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yieldpull_bootstraps_total",
				Help: "Total curve bootstrap runs",
			},
			[]string{"method", "country"},
		),
		filledPoints: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "yieldpull_bootstrap_filled_points",
				Help:    "Number of points filled per bootstrap run",
				Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
			},
			[]string{"method"},
		),
	}
}

// RecordUpdateRouted records a rate update routed to a backend.
func (r *Recorder) RecordUpdateRouted(backend, country string) {
	r.updatesRouted.WithLabelValues(backend, country).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastRate records the last observed yield for a (country, maturity).
func (r *Recorder) RecordLastRate(country, label string, rate float64) {
	r.lastRate.WithLabelValues(country, label).Set(rate)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordBootstrap records a completed bootstrap run.
func (r *Recorder) RecordBootstrap(method, country string, filled int) {
	r.bootstrapsTotal.WithLabelValues(method, country).Inc()
	r.filledPoints.WithLabelValues(method).Observe(float64(filled))
}
