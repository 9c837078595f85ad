// Package tracing provides OpenTelemetry tracing for crystal.
//
// Tracing is off by default. When enabled, the engine opens a span per
// parse ("query.parse") and per filter pass ("query.filter"), and the HTTP
// server continues incoming W3C trace contexts. Spans are exported to an
// OTLP gRPC collector:
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    endpoint: otel-collector:4317
//	    insecure: true
//	    sampler: ratio
//	    sample_ratio: 0.25
//
// A disabled or nil *Tracer is safe to use and records nothing.
package tracing
