package metrics

import (
	"time"

	"crystal-hq/crystal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RecordMetrics tracks filtering of record sources.
//
// Metrics:
//   - crystal_query_records_scanned_total: Records read, by source kind
//   - crystal_query_records_matched_total: Records matching the query
//   - crystal_query_filter_duration_seconds: Duration of a full pass
//   - crystal_query_source_errors_total: Sources that failed while reading
type RecordMetrics struct {
	scanned        *prometheus.CounterVec
	matched        *prometheus.CounterVec
	filterDuration *prometheus.HistogramVec
	sourceErrors   *prometheus.CounterVec
}

// NewRecordMetrics creates and registers record metrics with the provided registry.
func NewRecordMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RecordMetrics {
	rm := &RecordMetrics{
		scanned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "records_scanned_total",
				Help:      "Total number of records evaluated against a query",
			},
			[]string{"source"},
		),

		matched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "records_matched_total",
				Help:      "Total number of records that matched a query",
			},
			[]string{"source"},
		),

		filterDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "filter_duration_seconds",
				Help:      "Duration of filtering a record source in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"source"},
		),

		sourceErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "source_errors_total",
				Help:      "Total number of record sources that failed while reading",
			},
			[]string{"source"},
		),
	}

	registry.MustRegister(
		rm.scanned,
		rm.matched,
		rm.filterDuration,
		rm.sourceErrors,
	)

	return rm
}

// RecordFilter records one pass over a source.
func (rm *RecordMetrics) RecordFilter(source string, scanned, matched int, duration time.Duration) {
	rm.scanned.WithLabelValues(source).Add(float64(scanned))
	rm.matched.WithLabelValues(source).Add(float64(matched))
	rm.filterDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordError records a failed source.
func (rm *RecordMetrics) RecordError(source string) {
	rm.sourceErrors.WithLabelValues(source).Inc()
}
