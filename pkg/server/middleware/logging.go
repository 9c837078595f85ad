package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"crystal-hq/crystal/pkg/telemetry/logging"
)

// Logging logs every request on completion. Server errors are logged at
// error level, client errors at warn level and the rest at info level.
func Logging(logger *logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)
			ctx := logging.WithComponent(r.Context(), "server")

			logger.DebugContext(ctx, "request started",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			next.ServeHTTP(rw, r.WithContext(ctx))

			level := slog.LevelInfo
			switch {
			case rw.statusCode >= 500:
				level = slog.LevelError
			case rw.statusCode >= 400:
				level = slog.LevelWarn
			}
			if !logger.Enabled(level) {
				return
			}

			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.statusCode,
				"latency_ms", float64(time.Since(start).Microseconds()) / 1000,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			}
			switch level {
			case slog.LevelError:
				logger.ErrorContext(ctx, "request completed", args...)
			case slog.LevelWarn:
				logger.WarnContext(ctx, "request completed", args...)
			default:
				logger.InfoContext(ctx, "request completed", args...)
			}
		})
	}
}
