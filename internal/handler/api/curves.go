package api

import (
	"encoding/json"
	"net/http"
	"time"

	domrepo "YieldPull/internal/domain/repository"
	icache "YieldPull/internal/service/cache"
	"YieldPull/internal/service/metrics"
	"YieldPull/internal/service/ratelimit"
	"YieldPull/internal/usecase"
	xmid "YieldPull/pkg/http/middleware"
	applogger "YieldPull/pkg/logger"
)

// CurvesHandler exposes curve endpoints over net/http for embedding without
// the Echo stack.
type CurvesHandler struct {
	curves *usecase.CurveUseCase
	cache  icache.BytesCache
	rl     *ratelimit.Limiter
	l      *applogger.Logger
}

func NewCurvesHandler(curves *usecase.CurveUseCase) *CurvesHandler {
	metrics.Register()
	return &CurvesHandler{curves: curves, rl: ratelimit.New()}
}

func (h *CurvesHandler) SetCache(c icache.BytesCache) { h.cache = c }

// SetLogger injects a structured logger.
func (h *CurvesHandler) SetLogger(l *applogger.Logger) { h.l = l }

// Mux returns a standalone net/http handler with request metrics attached.
// Call after SetLogger/SetCache so the middleware sees the final handler state.
func (h *CurvesHandler) Mux(slowThreshold time.Duration) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/curve", h.Curve())
	mux.Handle("/api/curves", h.Curves())
	return xmid.Metrics(h.l, slowThreshold)(mux)
}

func (h *CurvesHandler) Curve() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		endpoint := "curve"
		defer func() { metrics.CurveLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

		country := r.URL.Query().Get("country")
		if country == "" {
			if h.l != nil {
				h.l.Warn("curves.curve missing country")
			}
			http.Error(w, "country required", http.StatusBadRequest)
			return
		}
		method := domrepo.NormalizeMethod(r.URL.Query().Get("method"))
		if !h.rl.Allow(r.RemoteAddr+":curve", 5, 2) {
			if h.l != nil {
				h.l.Warn("curves.curve rate_limited", applogger.String("remote", r.RemoteAddr))
			}
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		cacheKey := "curve:" + country + ":" + string(method)
		if h.cache != nil {
			if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
				if h.l != nil {
					h.l.Warn("curves.curve cache_get_error", applogger.Error(err))
				}
			} else if ok {
				w.Header().Set("Content-Type", "application/json")
				if h.l != nil {
					h.l.Debug("curves.curve cache_hit", applogger.String("key", cacheKey))
				}
				if _, err := w.Write(b); err != nil && h.l != nil {
					h.l.Warn("curves.curve write_error", applogger.Error(err))
				}
				return
			}
			if h.l != nil {
				h.l.Debug("curves.curve cache_miss", applogger.String("key", cacheKey))
			}
		}
		res, err := h.curves.GetCurve(r.Context(), usecase.GetCurveParams{Country: country, Method: method})
		if err != nil {
			metrics.CurveErrors.WithLabelValues(endpoint).Inc()
			if h.l != nil {
				h.l.Error("curves.curve error", applogger.Error(err))
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		b, err := json.Marshal(res)
		if err != nil {
			if h.l != nil {
				h.l.Error("curves.curve marshal_error", applogger.Error(err))
			}
			http.Error(w, "encode error", http.StatusInternalServerError)
			return
		}
		if h.cache != nil {
			if err := h.cache.SetBytes(cacheKey, b, 30*time.Second); err != nil && h.l != nil {
				h.l.Warn("curves.curve cache_set_error", applogger.Error(err))
			}
		}
		if _, err := w.Write(b); err != nil && h.l != nil {
			h.l.Warn("curves.curve write_error", applogger.Error(err))
		}
	}
}

func (h *CurvesHandler) Curves() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		endpoint := "curves"
		defer func() { metrics.CurveLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

		method := domrepo.NormalizeMethod(r.URL.Query().Get("method"))
		if !h.rl.Allow(r.RemoteAddr+":curves", 3, 1) {
			if h.l != nil {
				h.l.Warn("curves.curves rate_limited", applogger.String("remote", r.RemoteAddr))
			}
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		cacheKey := "curves:" + string(method)
		if h.cache != nil {
			if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
				if h.l != nil {
					h.l.Warn("curves.curves cache_get_error", applogger.Error(err))
				}
			} else if ok {
				w.Header().Set("Content-Type", "application/json")
				if h.l != nil {
					h.l.Debug("curves.curves cache_hit", applogger.String("key", cacheKey))
				}
				if _, err := w.Write(b); err != nil && h.l != nil {
					h.l.Warn("curves.curves write_error", applogger.Error(err))
				}
				return
			}
			if h.l != nil {
				h.l.Debug("curves.curves cache_miss", applogger.String("key", cacheKey))
			}
		}
		res, err := h.curves.GetAllCurves(r.Context(), method)
		if err != nil {
			metrics.CurveErrors.WithLabelValues(endpoint).Inc()
			if h.l != nil {
				h.l.Error("curves.curves error", applogger.Error(err))
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		b, err := json.Marshal(res)
		if err != nil {
			if h.l != nil {
				h.l.Error("curves.curves marshal_error", applogger.Error(err))
			}
			http.Error(w, "encode error", http.StatusInternalServerError)
			return
		}
		if h.cache != nil {
			if err := h.cache.SetBytes(cacheKey, b, 30*time.Second); err != nil && h.l != nil {
				h.l.Warn("curves.curves cache_set_error", applogger.Error(err))
			}
		}
		if _, err := w.Write(b); err != nil && h.l != nil {
			h.l.Warn("curves.curves write_error", applogger.Error(err))
		}
	}
}
