package middleware

import (
	"net/http"
	"time"

	"crystal-hq/crystal/pkg/telemetry/metrics"
)

// Metrics records request counts and latencies by route pattern. It must
// wrap the ServeMux directly so that the matched pattern is visible;
// unmatched requests are recorded as "unmatched".
func Metrics(collector *metrics.Collector) Middleware {
	return func(next http.Handler) http.Handler {
		if !collector.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			collector.RecordHTTPRequest(route, rw.statusCode, time.Since(start))
		})
	}
}
