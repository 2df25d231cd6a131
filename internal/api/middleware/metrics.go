package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/inferloop/statlab/internal/observability/metrics"
)

// Metrics records request counts and latency labelled by mux route template.
func Metrics(pm *metrics.PrometheusMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if pm == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := wrapResponseWriter(w)

			next.ServeHTTP(rw, r)

			pm.RecordHTTPRequest(r.Method, routeTemplate(r), strconv.Itoa(rw.statusCode), time.Since(start))
		})
	}
}
