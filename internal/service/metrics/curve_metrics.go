package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	CurveLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "yieldpull",
			Subsystem: "curves",
			Name:      "latency_seconds",
			Help:      "Latency of curve endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	CurveErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yieldpull",
			Subsystem: "curves",
			Name:      "errors_total",
			Help:      "Errors by curve endpoint",
		},
		[]string{"endpoint"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(CurveLatency, CurveErrors)
	})
}
