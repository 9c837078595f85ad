package metrics

import (
	"strconv"
	"sync"
	"time"

	"crystal-hq/crystal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// otherLabel replaces label values once a limiter is full.
const otherLabel = "other"

// Collector owns every Prometheus metric crystal exports. Callers record
// through it; when metrics are disabled every method is a no-op.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	queryMetrics  *QueryMetrics
	recordMetrics *RecordMetrics
	serverMetrics *ServerMetrics

	// Field names come from user queries on unknown fields.
	fieldLimiter *CardinalityLimiter
}

// NewCollector creates a collector registered on registry. A nil registry
// gets a fresh one. Zero-valued naming and buckets are filled with defaults.
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	http.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.DurationBuckets) == 0 {
		// 10µs to ~2.6s; parsing is fast, filtering large inputs is not.
		cfg.DurationBuckets = prometheus.ExponentialBuckets(0.00001, 4, 10)
	}

	return &Collector{
		config:        cfg,
		registry:      registry,
		queryMetrics:  NewQueryMetrics(cfg, registry),
		recordMetrics: NewRecordMetrics(cfg, registry),
		serverMetrics: NewServerMetrics(cfg, registry),
		fieldLimiter:  NewCardinalityLimiter(100),
	}
}

// Enabled reports whether the collector records anything.
func (c *Collector) Enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordParse records one parse. status is the result status ("success",
// "syntax_error" or "field_error"); terms is the number of terms in the
// reduced tree.
func (c *Collector) RecordParse(status string, duration time.Duration, terms int) {
	if !c.Enabled() {
		return
	}
	c.queryMetrics.RecordParse(status, duration, terms)
}

// RecordFieldError records a term rejected by the vocabulary.
func (c *Collector) RecordFieldError(kind, field string) {
	if !c.Enabled() {
		return
	}
	if field == "" {
		field = "none"
	}
	if !c.fieldLimiter.Allow(field) {
		field = otherLabel
	}
	c.queryMetrics.RecordFieldError(kind, field)
}

// RecordFilter records one pass of a query over a record source.
func (c *Collector) RecordFilter(source string, scanned, matched int, duration time.Duration) {
	if !c.Enabled() {
		return
	}
	c.recordMetrics.RecordFilter(source, scanned, matched, duration)
}

// RecordSourceError records a record source that failed mid-read.
func (c *Collector) RecordSourceError(source string) {
	if !c.Enabled() {
		return
	}
	c.recordMetrics.RecordError(source)
}

// RecordHTTPRequest records a served API request.
func (c *Collector) RecordHTTPRequest(route string, code int, duration time.Duration) {
	if !c.Enabled() {
		return
	}
	c.serverMetrics.RecordRequest(route, strconv.Itoa(code), duration)
}

// RecordReload records a schema reload triggered by the config watcher.
func (c *Collector) RecordReload(success bool) {
	if !c.Enabled() {
		return
	}
	c.serverMetrics.RecordReload(success)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether a label value may be used: it was seen before, or
// the limit has not been reached yet.
func (cl *CardinalityLimiter) Allow(label string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[label]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[label]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[label] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
