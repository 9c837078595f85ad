package metrics

import (
	"time"

	"crystal-hq/crystal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ServerMetrics tracks the HTTP API and schema reloads.
//
// Metrics:
//   - crystal_query_http_requests_total: Requests by route and status code
//   - crystal_query_http_request_duration_seconds: Request duration by route
//   - crystal_query_reloads_total: Schema reloads by result
//   - crystal_query_last_reload_timestamp_seconds: Time of the last successful reload
type ServerMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	reloadsTotal    *prometheus.CounterVec
	lastReload      prometheus.Gauge
}

// NewServerMetrics creates and registers server metrics with the provided registry.
func NewServerMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ServerMetrics {
	sm := &ServerMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP API requests",
			},
			[]string{"route", "code"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP API requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),

		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "reloads_total",
				Help:      "Total number of schema reloads",
			},
			[]string{"result"},
		),

		lastReload: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "last_reload_timestamp_seconds",
				Help:      "Unix time of the last successful schema reload",
			},
		),
	}

	registry.MustRegister(
		sm.requestsTotal,
		sm.requestDuration,
		sm.reloadsTotal,
		sm.lastReload,
	)

	return sm
}

// RecordRequest records a served request.
func (sm *ServerMetrics) RecordRequest(route, code string, duration time.Duration) {
	sm.requestsTotal.WithLabelValues(route, code).Inc()
	sm.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordReload records a reload attempt.
func (sm *ServerMetrics) RecordReload(success bool) {
	if !success {
		sm.reloadsTotal.WithLabelValues("failure").Inc()
		return
	}
	sm.reloadsTotal.WithLabelValues("success").Inc()
	sm.lastReload.SetToCurrentTime()
}
