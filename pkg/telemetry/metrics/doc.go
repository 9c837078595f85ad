// Package metrics provides Prometheus metrics for crystal.
//
// # Metrics Categories
//
//   - Query metrics: parse count and duration by status, terms per query,
//     field errors by kind and field
//   - Record metrics: records scanned and matched, filter duration, source errors
//   - Server metrics: HTTP requests by route and code, schema reloads
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordParse("success", time.Since(start), 3)
//	mux.Handle("/metrics", collector.Handler())
//
// The field label of field_errors_total is taken from user input, so it is
// capped: once 100 distinct names have been seen, new ones are reported as
// "other".
package metrics
