package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	applogger "YieldPull/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight *prometheus.GaugeVec
	respSize *prometheus.HistogramVec
}

var (
	httpMetricsOnce   sync.Once
	sharedHTTPMetrics *httpMetrics
)

func newHTTPMetrics() *httpMetrics {
	httpMetricsOnce.Do(func() {
		sharedHTTPMetrics = &httpMetrics{
			requests: promauto.NewCounterVec(
				prometheus.CounterOpts{Name: "http_requests_total", Help: "HTTP requests served"},
				[]string{"path", "method", "status"},
			),
			duration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "Request duration",
					Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
				},
				[]string{"route", "method", "status", "class"},
			),
			inFlight: promauto.NewGaugeVec(
				prometheus.GaugeOpts{Name: "http_in_flight_requests", Help: "Requests currently being served"},
				[]string{"route", "method"},
			),
			respSize: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_response_size_bytes",
					Help:    "Response size",
					Buckets: []float64{200, 500, 1_000, 2_000, 5_000, 10_000, 50_000, 100_000, 500_000, 1_000_000},
				},
				[]string{"route", "method", "status", "class"},
			),
		}
	})
	return sharedHTTPMetrics
}

// Metrics records request count, latency, size and in-flight gauge per route,
// and logs failed (5xx) and slow requests through the structured logger.
// Route labels come from the request path; register it on muxes with fixed
// route patterns to keep label cardinality bounded.
func Metrics(l *applogger.Logger, slowThreshold time.Duration) func(http.Handler) http.Handler {
	m := newHTTPMetrics()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, method := r.URL.Path, r.Method

			m.inFlight.WithLabelValues(route, method).Inc()
			start := time.Now()

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			elapsed := time.Since(start)
			status := strconv.Itoa(rec.status)
			class := statusClass(rec.status)

			m.requests.WithLabelValues(route, method, status).Inc()
			m.duration.WithLabelValues(route, method, status, class).Observe(elapsed.Seconds())
			m.respSize.WithLabelValues(route, method, status, class).Observe(float64(rec.written))
			m.inFlight.WithLabelValues(route, method).Dec()

			if l == nil {
				return
			}
			if rec.status >= 500 {
				l.Error("http request failed",
					applogger.String("route", route),
					applogger.String("method", method),
					applogger.String("status", status),
					applogger.Duration("duration", elapsed),
					applogger.Int("bytes", rec.written),
				)
				return
			}
			if slowThreshold > 0 && elapsed >= slowThreshold {
				l.Warn("http request slow",
					applogger.String("route", route),
					applogger.String("method", method),
					applogger.String("status", status),
					applogger.Duration("duration", elapsed),
					applogger.Int("bytes", rec.written),
				)
			}
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.written += n
	return n, err
}

func statusClass(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
