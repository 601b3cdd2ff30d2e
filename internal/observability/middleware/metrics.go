package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"hrms/internal/observability/metrics"
)

// unobserved paths are served without touching the request counters.
var unobserved = map[string]bool{
	"/metrics": true,
	"/healthz": true,
}

type responseTap struct {
	http.ResponseWriter
	code    int
	written bool
}

func (t *responseTap) WriteHeader(code int) {
	if !t.written {
		t.code = code
		t.written = true
	}
	t.ResponseWriter.WriteHeader(code)
}

func (t *responseTap) Write(b []byte) (int, error) {
	if !t.written {
		t.code = http.StatusOK
		t.written = true
	}
	return t.ResponseWriter.Write(b)
}

// WithMetrics counts requests and their latency per method, chi route pattern and status.
func WithMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if unobserved[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}
		tap := &responseTap{ResponseWriter: w, code: http.StatusOK}
		began := time.Now()
		next.ServeHTTP(tap, r)
		observe(r, tap.code, time.Since(began))
	})
}

func observe(r *http.Request, code int, elapsed time.Duration) {
	route := routePattern(r)
	metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(code)).Inc()
	metrics.HTTPRequestDurationSeconds.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
}

// routePattern bounds label cardinality: ids in the path never become label values.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return "unmatched"
	}
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return "unmatched"
}
