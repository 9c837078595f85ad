package metrics

import (
	"time"

	"crystal-hq/crystal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// QueryMetrics tracks parsing and validation.
//
// Metrics:
//   - crystal_query_parses_total: Parses by result status
//   - crystal_query_parse_duration_seconds: Parse duration histogram
//   - crystal_query_terms: Terms per successfully parsed query
//   - crystal_query_field_errors_total: Rejected terms by kind and field
type QueryMetrics struct {
	parsesTotal   *prometheus.CounterVec
	parseDuration *prometheus.HistogramVec
	terms         prometheus.Histogram
	fieldErrors   *prometheus.CounterVec
}

// NewQueryMetrics creates and registers query metrics with the provided registry.
func NewQueryMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *QueryMetrics {
	qm := &QueryMetrics{
		parsesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "parses_total",
				Help:      "Total number of queries parsed",
			},
			[]string{"status"},
		),

		parseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "parse_duration_seconds",
				Help:      "Duration of parsing, validation and annotation in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"status"},
		),

		terms: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "terms",
				Help:      "Number of terms in successfully parsed queries",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 8), // 1 to 128
			},
		),

		fieldErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "field_errors_total",
				Help:      "Total number of terms rejected by the field vocabulary",
			},
			[]string{"kind", "field"},
		),
	}

	registry.MustRegister(
		qm.parsesTotal,
		qm.parseDuration,
		qm.terms,
		qm.fieldErrors,
	)

	return qm
}

// RecordParse records a completed parse.
func (qm *QueryMetrics) RecordParse(status string, duration time.Duration, terms int) {
	qm.parsesTotal.WithLabelValues(status).Inc()
	qm.parseDuration.WithLabelValues(status).Observe(duration.Seconds())
	if terms > 0 {
		qm.terms.Observe(float64(terms))
	}
}

// RecordFieldError records one rejected term.
func (qm *QueryMetrics) RecordFieldError(kind, field string) {
	qm.fieldErrors.WithLabelValues(kind, field).Inc()
}
