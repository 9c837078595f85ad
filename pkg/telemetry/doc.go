// Package telemetry groups crystal's observability packages.
//
//   - logging: structured logging on log/slog
//   - metrics: Prometheus metrics for parsing, filtering and the HTTP API
//   - tracing: OpenTelemetry spans exported over OTLP
//   - health: liveness and readiness endpoints
package telemetry
