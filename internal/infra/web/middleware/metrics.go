package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/DioGolang/GoTrack/pkg/metrics"
)

// statusStrings caches label values for status codes 100-599.
var statusStrings [600]string

func init() {
	for i := 100; i < 600; i++ {
		statusStrings[i] = strconv.Itoa(i)
	}
}

func statusLabel(code int) string {
	if code == 0 {
		code = http.StatusOK
	}
	if code >= 100 && code < 600 {
		return statusStrings[code]
	}
	return strconv.Itoa(code)
}

// MetricsWrapper observes request latency per route. Routes listed in skip (long-lived
// streams, the scrape endpoint) are not observed.
func MetricsWrapper(m metrics.Metrics, skip ...string) func(http.Handler) http.Handler {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := routePattern(r)
			if _, ok := skipped[route]; ok {
				return
			}
			m.ObserveHTTPRequestDuration(r.Method, route, statusLabel(ww.Status()), time.Since(start).Seconds())
		})
	}
}
