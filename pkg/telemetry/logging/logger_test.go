package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"crystal-hq/crystal/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		want    LogFormat
		wantErr bool
	}{
		{"json", Config{Level: "info", Format: "json"}, FormatJSON, false},
		{"text", Config{Level: "debug", Format: "text"}, FormatText, false},
		{"console", Config{Level: "warn", Format: "console"}, FormatConsole, false},
		{"defaults", Config{}, FormatJSON, false},
		{"upper case", Config{Level: "ERROR", Format: "TEXT"}, FormatText, false},
		{"invalid level", Config{Level: "loud"}, "", true},
		{"invalid format", Config{Format: "xml"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.Writer = &bytes.Buffer{}
			logger, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && logger.Format() != tt.want {
				t.Errorf("Format() = %s, want %s", logger.Format(), tt.want)
			}
		})
	}
}

func TestLogger_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "json", Writer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Debug("hidden")
	logger.Info("query parsed", "status", "success", "terms", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("invalid JSON %q: %v", lines[0], err)
	}
	if entry["msg"] != "query parsed" || entry["status"] != "success" || entry["terms"] != float64(3) {
		t.Errorf("entry = %v", entry)
	}
}

func TestLogger_Context(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, _ := New(Config{Format: "json", Writer: buf})

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithRunID(ctx, "run-1")
	ctx = WithQuery(ctx, "a:b")
	logger.InfoContext(ctx, "done")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	for key, want := range map[string]string{"request_id": "req-1", "run_id": "run-1", "query": "a:b"} {
		if entry[key] != want {
			t.Errorf("%s = %v, want %s", key, entry[key], want)
		}
	}
}

func TestLogger_WithContext(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, _ := New(Config{Format: "text", Writer: buf})

	if got := logger.WithContext(context.Background()); got != logger {
		t.Error("WithContext() without fields should return the same logger")
	}

	logger.WithContext(WithComponent(context.Background(), "server")).Warn("slow")
	if !strings.Contains(buf.String(), "component=server") {
		t.Errorf("output %q missing component", buf.String())
	}
}

func TestExtractContextFields_TruncatesQuery(t *testing.T) {
	long := strings.Repeat("x", maxQueryLen+10)
	fields := extractContextFields(WithQuery(context.Background(), long))
	if len(fields) != 2 {
		t.Fatalf("fields = %v", fields)
	}
	if got := fields[1].(string); len(got) != maxQueryLen+3 || !strings.HasSuffix(got, "...") {
		t.Errorf("query field length = %d", len(got))
	}
}

func TestContextLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, _ := New(Config{Format: "text", Writer: buf})

	cl := NewContextLogger(logger, WithRunID(context.Background(), "r-9")).With("cmd", "lint")
	cl.Error("failed")

	out := buf.String()
	if strings.Count(out, "run_id=r-9") != 1 || !strings.Contains(out, "cmd=lint") {
		t.Errorf("output = %q", out)
	}
}

func TestConsoleHandler(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, _ := New(Config{Level: "debug", Format: "console", Writer: buf})

	logger.With("component", "engine").Slog().WithGroup("query").Debug("parsed", "text", "a b", "ok", true)

	out := buf.String()
	for _, want := range []string{"DBG parsed", "component=engine", `query.text="a b"`, "query.ok=true"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("console output to a buffer should not be colored")
	}
}

func TestDiscard(t *testing.T) {
	if Discard().Enabled(slog.LevelError) {
		t.Error("Discard() logger should not be enabled at any level")
	}
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.LoggingConfig{Level: "debug", Format: "console", AddSource: true})
	if cfg.Level != "debug" || cfg.Format != "console" || !cfg.AddSource {
		t.Errorf("FromConfig() = %+v", cfg)
	}
}
