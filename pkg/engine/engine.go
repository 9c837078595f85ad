package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"crystal-hq/crystal/pkg/config"
	"crystal-hq/crystal/pkg/query/ast"
	qerrors "crystal-hq/crystal/pkg/query/errors"
	"crystal-hq/crystal/pkg/query/schema"
	"crystal-hq/crystal/pkg/records"
	"crystal-hq/crystal/pkg/telemetry/logging"
	"crystal-hq/crystal/pkg/telemetry/metrics"
	"crystal-hq/crystal/pkg/telemetry/tracing"
)

// Parse statuses, used as metric labels.
const (
	StatusSuccess     = "success"
	StatusSyntaxError = "syntax_error"
	StatusFieldError  = "field_error"
)

// Engine parses queries against the configured schema and filters record
// sources with them. The schema can be swapped with Reload while queries
// are running. An Engine is safe for concurrent use.
type Engine struct {
	current atomic.Pointer[snapshot]

	logger  *logging.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
}

type snapshot struct {
	schema *schema.Schema
	config config.SchemaConfig
	fields []FieldInfo
	loaded time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(e *Engine) {
		e.metrics = c
	}
}

// WithTracer sets the tracer.
func WithTracer(t *tracing.Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

// New creates an engine for the schema declared by cfg.
func New(cfg *config.SchemaConfig, opts ...Option) (*Engine, error) {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.Discard()
	}

	snap, err := build(cfg)
	if err != nil {
		return nil, err
	}
	e.current.Store(snap)
	return e, nil
}

func build(cfg *config.SchemaConfig) (*snapshot, error) {
	s, err := BuildSchema(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build schema: %w", err)
	}
	return &snapshot{
		schema: s,
		config: *cfg,
		fields: DescribeFields(cfg),
		loaded: time.Now(),
	}, nil
}

// Reload replaces the schema. On error the current schema is kept.
func (e *Engine) Reload(cfg *config.SchemaConfig) error {
	snap, err := build(cfg)
	if err != nil {
		e.metrics.RecordReload(false)
		e.logger.Error("schema reload failed", "error", err)
		return err
	}
	e.current.Store(snap)
	e.metrics.RecordReload(true)
	e.logger.Info("schema reloaded", "fields", len(snap.fields))
	return nil
}

// Schema returns the current schema.
func (e *Engine) Schema() *schema.Schema {
	return e.current.Load().schema
}

// Fields lists the declared fields of the current schema. It is empty in
// generic mode.
func (e *Engine) Fields() []FieldInfo {
	return e.current.Load().fields
}

// LoadedAt returns when the current schema was built.
func (e *Engine) LoadedAt() time.Time {
	return e.current.Load().loaded
}

// Check is a readiness check: the current schema must parse a query.
func (e *Engine) Check(ctx context.Context) error {
	snap := e.current.Load()
	if snap == nil || snap.schema == nil {
		return errors.New("no schema loaded")
	}
	if res := snap.schema.Parse(""); !res.Status {
		return fmt.Errorf("schema rejects the empty query: %w", res.Err())
	}
	return ctx.Err()
}

// Parse parses and validates input against the current schema.
func (e *Engine) Parse(ctx context.Context, input string) *schema.Result {
	ctx, span := e.tracer.Start(ctx, "query.parse")
	defer span.End()

	start := time.Now()
	res := e.Schema().Parse(input)
	elapsed := time.Since(start)

	status := Status(res)
	terms := CountTerms(res.AST)
	e.metrics.RecordParse(status, elapsed, terms)
	for _, fe := range res.FieldErrors() {
		field, _ := fe.Data["field"].(string)
		e.metrics.RecordFieldError(string(fe.Kind), field)
	}
	tracing.SetQueryAttributes(span, input, status, terms, len(res.Errors))

	ctx = logging.WithQuery(ctx, input)
	e.logger.DebugContext(ctx, "query parsed",
		"status", status,
		"terms", terms,
		"errors", len(res.Errors),
		"duration_ms", float64(elapsed.Microseconds())/1000,
	)
	return res
}

// Status classifies a parse result. A result that succeeded after pruning
// rejected terms is a success.
func Status(res *schema.Result) string {
	switch {
	case res.Status || len(res.Errors) == 0:
		return StatusSuccess
	case res.Errors[0].Type() == qerrors.ErrorTypeSyntax:
		return StatusSyntaxError
	}
	return StatusFieldError
}

// CountTerms returns the number of terms in a tree.
func CountTerms(n ast.Node) int {
	count := 0
	ast.Walk(n, func(m ast.Node) bool {
		if m.Kind() == ast.KindTerm {
			count++
			return false
		}
		return true
	})
	return count
}

// QueryError is returned by Filter for a query that did not parse.
type QueryError struct {
	Result *schema.Result
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid query %q: %v", e.Result.Input, e.Result.Err())
}

func (e *QueryError) Unwrap() error {
	return e.Result.Err()
}

// FilterStats summarizes one Filter call.
type FilterStats struct {
	Scanned  int           `json:"scanned" yaml:"scanned"`
	Matched  int           `json:"matched" yaml:"matched"`
	Duration time.Duration `json:"-" yaml:"-"`
}

// Filter parses input and calls emit for every record of src the query
// matches, in source order. A nil emit only counts matches. Records are
// only valid during emit; see records.Native.
//
// An empty query matches every record.
func (e *Engine) Filter(ctx context.Context, input string, src records.Source, emit func(records.Record) error) (FilterStats, error) {
	res := e.Parse(ctx, input)
	if !res.Status {
		return FilterStats{}, &QueryError{Result: res}
	}
	return e.Run(ctx, res, src, emit)
}

// Run filters src with an already parsed query.
func (e *Engine) Run(ctx context.Context, res *schema.Result, src records.Source, emit func(records.Record) error) (FilterStats, error) {
	ctx, span := e.tracer.Start(ctx, "query.filter")
	defer span.End()

	match := res.Operations.Predicate()
	var stats FilterStats
	start := time.Now()

	err := src.Each(ctx, func(r records.Record) error {
		stats.Scanned++
		if match == nil || !match(r) {
			return nil
		}
		stats.Matched++
		if emit == nil {
			return nil
		}
		return emit(r)
	})
	stats.Duration = time.Since(start)

	kind := src.Kind()
	e.metrics.RecordFilter(kind, stats.Scanned, stats.Matched, stats.Duration)
	tracing.SetFilterAttributes(span, kind, stats.Scanned, stats.Matched)

	ctx = logging.WithQuery(ctx, res.Input)
	if err != nil {
		var srcErr *records.SourceError
		if errors.As(err, &srcErr) {
			e.metrics.RecordSourceError(kind)
		}
		tracing.SetStatus(span, err)
		e.logger.WarnContext(ctx, "filter stopped", "source", kind, "scanned", stats.Scanned, "error", err)
		return stats, err
	}

	e.logger.DebugContext(ctx, "filter finished",
		"source", kind,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"duration_ms", float64(stats.Duration.Microseconds())/1000,
	)
	return stats, nil
}
