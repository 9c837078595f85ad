package middleware

import (
	"net/http"
	"runtime/debug"

	"crystal-hq/crystal/pkg/telemetry/logging"
)

// Recovery turns a panicking handler into a 500 response. The panic and
// its stack are logged; the client only sees a generic message.
func Recovery(logger *logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.ErrorContext(r.Context(), "panic in handler",
						"error", err,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					WriteError(w, r, http.StatusInternalServerError, "internal_error",
						"An internal error occurred.")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
