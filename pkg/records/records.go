package records

import (
	"context"
	"errors"
	"fmt"
)

// Record is one input to a query predicate: a map[string]any, a
// *fastjson.Value or any other value the field vocabulary can look into.
type Record = any

// Source kinds, also used as metric labels.
const (
	KindJSONL  = "jsonl"
	KindJSON   = "json"
	KindYAML   = "yaml"
	KindSQLite = "sqlite"
)

var (
	// ErrUnsupportedFormat is returned for paths or formats no source reads.
	ErrUnsupportedFormat = errors.New("unsupported records format")

	// ErrInvalidTable is returned for table names that are not plain
	// SQL identifiers.
	ErrInvalidTable = errors.New("invalid table name")

	// ErrStop may be returned by an Each callback to end iteration early.
	// Each then returns nil.
	ErrStop = errors.New("stop iteration")
)

// Source yields records in order.
type Source interface {
	// Kind names the source type ("jsonl", "yaml", "sqlite").
	Kind() string

	// Each calls fn for every record until the source is exhausted, fn
	// returns an error or ctx is canceled. A record is only valid during
	// its callback; callers that keep records must copy them.
	Each(ctx context.Context, fn func(Record) error) error

	// Close releases the source.
	Close() error
}

// SourceError reports a failure while reading a source.
type SourceError struct {
	Kind  string // Source kind
	Path  string // File or database path, if any
	Line  int    // 1-based line or document number, if known
	Cause error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	loc := e.Path
	if loc == "" {
		loc = "<input>"
	}
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
	}
	return fmt.Sprintf("%s source %s: %v", e.Kind, loc, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *SourceError) Unwrap() error {
	return e.Cause
}

// Collect reads every record of src into a slice. Records are copied
// first by copyFn when it is non-nil.
func Collect(ctx context.Context, src Source, copyFn func(Record) Record) ([]Record, error) {
	var out []Record
	err := src.Each(ctx, func(r Record) error {
		if copyFn != nil {
			r = copyFn(r)
		}
		out = append(out, r)
		return nil
	})
	return out, err
}

// limited caps another source at n records.
type limited struct {
	Source
	n int
}

// Limit wraps src so that at most n records are read. n <= 0 returns src.
func Limit(src Source, n int) Source {
	if n <= 0 {
		return src
	}
	return &limited{Source: src, n: n}
}

func (l *limited) Each(ctx context.Context, fn func(Record) error) error {
	seen := 0
	return l.Source.Each(ctx, func(r Record) error {
		if seen >= l.n {
			return ErrStop
		}
		seen++
		return fn(r)
	})
}

// stopped converts ErrStop from a callback into a clean end of iteration.
func stopped(err error) error {
	if errors.Is(err, ErrStop) {
		return nil
	}
	return err
}
