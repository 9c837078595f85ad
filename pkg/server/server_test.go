package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"crystal-hq/crystal/pkg/config"
	"crystal-hq/crystal/pkg/engine"
	"crystal-hq/crystal/pkg/telemetry/health"
	"crystal-hq/crystal/pkg/telemetry/metrics"
)

func testSchema() *config.SchemaConfig {
	return &config.SchemaConfig{
		Fields: map[string]config.FieldConfig{
			"title": {Type: config.FieldTypeString, Description: "the title", Property: "title", IgnoreCase: true},
			"pages": {Type: config.FieldTypeNumber, Description: "the page count", Property: "pages"},
		},
	}
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	var engOpts []engine.Option
	if opts.Metrics != nil {
		engOpts = append(engOpts, engine.WithMetrics(opts.Metrics))
	}
	eng, err := engine.New(testSchema(), engOpts...)
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Default().Server
	return New(&cfg, eng, opts)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHandleParse(t *testing.T) {
	h := newTestServer(t, Options{}).Handler()

	w := do(t, h, http.MethodPost, "/v1/parse", `{"query": "title:go pages>100", "input": {"title": "Go", "pages": 300}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var resp ParseResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Status || len(resp.Errors) != 0 {
		t.Errorf("resp = %+v", resp)
	}
	if resp.AST == nil || resp.AST.Kind != "And" {
		t.Errorf("AST = %+v, want And", resp.AST)
	}
	if want := `the title contains "go" and the page count is greater than 100`; resp.Description != want {
		t.Errorf("Description = %q, want %q", resp.Description, want)
	}
	if resp.Match == nil || !*resp.Match {
		t.Errorf("Match = %v, want true", resp.Match)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
}

func TestHandleParse_InvalidQuery(t *testing.T) {
	h := newTestServer(t, Options{}).Handler()

	w := do(t, h, http.MethodPost, "/v1/parse", `{"query": "tilte:go"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	var resp ParseResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status || len(resp.Errors) != 1 {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Errors[0].Suggestion != `did you mean "title"?` {
		t.Errorf("Suggestion = %q", resp.Errors[0].Suggestion)
	}
	if resp.AST != nil {
		t.Error("AST should be omitted for invalid queries")
	}
}

func TestHandleParse_BadRequests(t *testing.T) {
	h := newTestServer(t, Options{}).Handler()

	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{"not json", http.MethodPost, `{`, http.StatusBadRequest},
		{"not an object", http.MethodPost, `["q"]`, http.StatusBadRequest},
		{"missing query", http.MethodPost, `{}`, http.StatusBadRequest},
		{"query not a string", http.MethodPost, `{"query": 3}`, http.StatusBadRequest},
		{"wrong method", http.MethodGet, ``, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(t, h, tt.method, "/v1/parse", tt.body); w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestHandleParse_BodyLimit(t *testing.T) {
	eng, _ := engine.New(testSchema())
	cfg := config.Default().Server
	cfg.MaxBodyBytes = 16
	h := New(&cfg, eng, Options{}).Handler()

	w := do(t, h, http.MethodPost, "/v1/parse", `{"query": "a very long query indeed"}`)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", w.Code)
	}
}

func TestHandleFilter_Inline(t *testing.T) {
	h := newTestServer(t, Options{}).Handler()

	body := `{"query": "pages>100", "records": [
		{"title": "Go", "pages": 300},
		{"title": "Tiny", "pages": 20},
		{"title": "Big", "pages": 900}
	], "limit": 1}`
	w := do(t, h, http.MethodPost, "/v1/filter", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var resp FilterResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Scanned != 3 || resp.Matched != 2 || !resp.Truncated {
		t.Errorf("resp = %+v", resp)
	}
	if len(resp.Matches) != 1 || !strings.Contains(string(resp.Matches[0]), `"Go"`) {
		t.Errorf("Matches = %s", resp.Matches)
	}
}

func TestHandleFilter_Errors(t *testing.T) {
	h := newTestServer(t, Options{}).Handler()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid query", `{"query": "pages>x", "records": []}`, http.StatusUnprocessableEntity},
		{"records not array", `{"query": "title:go", "records": {}}`, http.StatusBadRequest},
		{"no source", `{"query": "title:go"}`, http.StatusBadRequest},
		{"negative limit", `{"query": "title:go", "records": [], "limit": -1}`, http.StatusBadRequest},
		{"string limit", `{"query": "title:go", "records": [], "limit": "5"}`, http.StatusBadRequest},
		{"fractional limit", `{"query": "title:go", "records": [], "limit": 2.5}`, http.StatusBadRequest},
		{"null limit", `{"query": "title:go", "records": [], "limit": null}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/v1/filter", tt.body)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
			if tt.want == http.StatusBadRequest && !strings.Contains(w.Body.String(), `"bad_request"`) {
				t.Errorf("body = %s, want bad_request code", w.Body.String())
			}
		})
	}
}

func TestHandleFilter_ConfiguredSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.yaml")
	if err := os.WriteFile(path, []byte("- title: Go\n  pages: 300\n- title: Lisp\n  pages: 90\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := newTestServer(t, Options{Records: &config.RecordsConfig{Path: path, Format: "auto"}})
	h := s.Handler()

	w := do(t, h, http.MethodPost, "/v1/filter", `{"query": "pages<100"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp FilterResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Matched != 1 || !strings.Contains(string(resp.Matches[0]), `"Lisp"`) {
		t.Errorf("resp = %+v", resp)
	}

	if w := do(t, h, http.MethodGet, "/ready", ""); w.Code != http.StatusOK {
		t.Errorf("/ready = %d: %s", w.Code, w.Body.String())
	}

	os.Remove(path)
	if w := do(t, h, http.MethodGet, "/ready", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("/ready without source = %d, want 503", w.Code)
	}
}

func TestHandleFields(t *testing.T) {
	h := newTestServer(t, Options{}).Handler()

	w := do(t, h, http.MethodGet, "/v1/fields", "")
	var resp FieldsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Generic || len(resp.Fields) != 2 || resp.Fields[0].Name != "pages" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestProbesAndMetrics(t *testing.T) {
	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true}, prometheus.NewRegistry())
	s := newTestServer(t, Options{
		Metrics: collector,
		Version: health.NewVersionInfo("1.2.3", "abc", "today"),
	})
	h := s.Handler()

	for _, path := range []string{"/health", "/ready", "/version"} {
		if w := do(t, h, http.MethodGet, path, ""); w.Code != http.StatusOK {
			t.Errorf("%s = %d", path, w.Code)
		}
	}

	var info health.VersionInfo
	json.Unmarshal(do(t, h, http.MethodGet, "/version", "").Body.Bytes(), &info)
	if info.Version != "1.2.3" {
		t.Errorf("version = %+v", info)
	}

	if w := do(t, h, http.MethodPost, "/v1/parse", `{"query": "title:go"}`); w.Code != http.StatusOK {
		t.Fatalf("/v1/parse = %d: %s", w.Code, w.Body.String())
	}
	w := do(t, h, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("/metrics = %d", w.Code)
	}
	for _, want := range []string{"crystal_query_parses_total", `route="POST /v1/parse"`} {
		if !strings.Contains(w.Body.String(), want) {
			t.Errorf("/metrics missing %s", want)
		}
	}
}

func TestServe_Shutdown(t *testing.T) {
	s := newTestServer(t, Options{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	deadline := time.Now().Add(2 * time.Second)
	for !s.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	resp, err := http.Get("http://" + s.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/health = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
	if s.IsRunning() {
		t.Error("IsRunning() after shutdown")
	}
}

func TestServe_WatchReloadsSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crystal.yaml")
	write := func(content string) {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("schema:\n  fields:\n    title: {type: string}\n")

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	eng, err := engine.New(&cfg.Schema)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Server.Watch = true
	cfg.Server.WatchDebounce = 20 * time.Millisecond
	s := New(&cfg.Server, eng, Options{ConfigPath: path})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Serve(ctx, ln)

	// Give the watcher time to start before changing the file.
	time.Sleep(200 * time.Millisecond)
	write("schema:\n  fields:\n    title: {type: string}\n    pages: {type: number}\n")

	deadline := time.Now().Add(5 * time.Second)
	for len(eng.Fields()) != 2 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if len(eng.Fields()) != 2 {
		t.Errorf("Fields() = %v, want reloaded schema with 2 fields", eng.Fields())
	}
}
