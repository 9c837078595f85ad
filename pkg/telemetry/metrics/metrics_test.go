package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"crystal-hq/crystal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:         true,
		Namespace:       "test",
		Subsystem:       "metrics",
		DurationBuckets: []float64{0.001, 0.01, 0.1, 1},
	}
}

func TestNewCollector_Defaults(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	c := NewCollector(cfg, nil)

	if c.Registry() == nil {
		t.Fatal("Registry() = nil")
	}
	if cfg.Namespace != "crystal" || cfg.Subsystem != "query" {
		t.Errorf("naming = %s_%s, want crystal_query", cfg.Namespace, cfg.Subsystem)
	}
	if len(cfg.DurationBuckets) != 10 {
		t.Errorf("len(DurationBuckets) = %d, want 10", len(cfg.DurationBuckets))
	}
}

func TestCollector_RecordParse(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())

	c.RecordParse("success", time.Millisecond, 3)
	c.RecordParse("success", time.Millisecond, 1)
	c.RecordParse("syntax_error", time.Millisecond, 0)

	if got := testutil.ToFloat64(c.queryMetrics.parsesTotal.WithLabelValues("success")); got != 2 {
		t.Errorf("parses_total{success} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.queryMetrics.parsesTotal.WithLabelValues("syntax_error")); got != 1 {
		t.Errorf("parses_total{syntax_error} = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(c.queryMetrics.terms); got != 1 {
		t.Errorf("terms series = %d, want 1", got)
	}
}

func TestCollector_RecordFieldError(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())
	c.fieldLimiter = NewCardinalityLimiter(2)

	c.RecordFieldError("unsupported field", "a")
	c.RecordFieldError("unsupported field", "b")
	c.RecordFieldError("unsupported field", "c")
	c.RecordFieldError("no field", "")

	tests := []struct {
		kind, field string
		want        float64
	}{
		{"unsupported field", "a", 1},
		{"unsupported field", "b", 1},
		{"unsupported field", otherLabel, 1},
		{"no field", otherLabel, 1},
	}
	for _, tt := range tests {
		got := testutil.ToFloat64(c.queryMetrics.fieldErrors.WithLabelValues(tt.kind, tt.field))
		if got != tt.want {
			t.Errorf("field_errors_total{%s,%s} = %v, want %v", tt.kind, tt.field, got, tt.want)
		}
	}
}

func TestCollector_RecordFilter(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())

	c.RecordFilter("jsonl", 10, 4, 5*time.Millisecond)
	c.RecordFilter("jsonl", 5, 1, time.Millisecond)
	c.RecordSourceError("sqlite")

	if got := testutil.ToFloat64(c.recordMetrics.scanned.WithLabelValues("jsonl")); got != 15 {
		t.Errorf("records_scanned_total = %v, want 15", got)
	}
	if got := testutil.ToFloat64(c.recordMetrics.matched.WithLabelValues("jsonl")); got != 5 {
		t.Errorf("records_matched_total = %v, want 5", got)
	}
	if got := testutil.ToFloat64(c.recordMetrics.sourceErrors.WithLabelValues("sqlite")); got != 1 {
		t.Errorf("source_errors_total = %v, want 1", got)
	}
}

func TestCollector_RecordHTTPAndReload(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())

	c.RecordHTTPRequest("/v1/parse", 200, time.Millisecond)
	c.RecordHTTPRequest("/v1/parse", 400, time.Millisecond)
	c.RecordReload(true)
	c.RecordReload(false)

	if got := testutil.ToFloat64(c.serverMetrics.requestsTotal.WithLabelValues("/v1/parse", "400")); got != 1 {
		t.Errorf("http_requests_total{400} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.serverMetrics.reloadsTotal.WithLabelValues("failure")); got != 1 {
		t.Errorf("reloads_total{failure} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.serverMetrics.lastReload); got <= 0 {
		t.Errorf("last_reload_timestamp_seconds = %v, want > 0", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	c := NewCollector(cfg, prometheus.NewRegistry())

	c.RecordParse("success", time.Millisecond, 1)
	c.RecordFieldError("no value", "x")

	if got := testutil.ToFloat64(c.queryMetrics.parsesTotal.WithLabelValues("success")); got != 0 {
		t.Errorf("parses_total = %v, want 0 when disabled", got)
	}

	var nilCollector *Collector
	nilCollector.RecordParse("success", 0, 0)
	if nilCollector.Enabled() {
		t.Error("nil collector should be disabled")
	}
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())
	c.RecordParse("success", time.Millisecond, 2)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "test_metrics_parses_total") {
		t.Errorf("body missing parses_total:\n%s", rec.Body.String())
	}
}

func TestCardinalityLimiter(t *testing.T) {
	limiter := NewCardinalityLimiter(3)

	for _, label := range []string{"a", "b", "c", "a"} {
		if !limiter.Allow(label) {
			t.Errorf("Allow(%q) = false, want true", label)
		}
	}
	if limiter.Allow("d") {
		t.Error("Allow(d) = true past the limit")
	}
	if limiter.Count() != 3 {
		t.Errorf("Count() = %d, want 3", limiter.Count())
	}
}

func TestCardinalityLimiter_Concurrent(t *testing.T) {
	limiter := NewCardinalityLimiter(50)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				limiter.Allow(string(rune('a'+i)) + string(rune('a'+j%26)))
			}
		}(i)
	}
	wg.Wait()

	if limiter.Count() > 50 {
		t.Errorf("Count() = %d, exceeds limit 50", limiter.Count())
	}
}
