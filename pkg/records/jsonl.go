package records

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/valyala/fastjson"
)

// maxLineSize bounds a single JSON Lines record.
const maxLineSize = 16 << 20

// JSONLSource reads newline-delimited JSON objects. Blank lines are
// skipped. Records are *fastjson.Value and are only valid during the Each
// callback.
//
// A JSON source (Array set) instead reads one document holding an array
// of records, or a single object.
type JSONLSource struct {
	r      io.Reader
	closer io.Closer
	path   string
	array  bool

	parser fastjson.Parser
}

// NewJSONLSource reads JSON Lines from r. path is used in errors only.
func NewJSONLSource(r io.Reader, path string) *JSONLSource {
	s := &JSONLSource{r: r, path: path}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// NewJSONSource reads a single JSON document from r: an array of records
// or one record.
func NewJSONSource(r io.Reader, path string) *JSONLSource {
	s := NewJSONLSource(r, path)
	s.array = true
	return s
}

// Kind returns "jsonl" or "json".
func (s *JSONLSource) Kind() string {
	if s.array {
		return KindJSON
	}
	return KindJSONL
}

// Each implements Source.
func (s *JSONLSource) Each(ctx context.Context, fn func(Record) error) error {
	if s.array {
		return s.eachArray(ctx, fn)
	}

	scanner := bufio.NewScanner(s.r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}

		b := bytes.TrimSpace(scanner.Bytes())
		if len(b) == 0 {
			continue
		}
		v, err := s.parser.ParseBytes(b)
		if err != nil {
			return &SourceError{Kind: KindJSONL, Path: s.path, Line: line, Cause: err}
		}
		if err := fn(v); err != nil {
			return stopped(err)
		}
	}
	if err := scanner.Err(); err != nil {
		return &SourceError{Kind: KindJSONL, Path: s.path, Line: line + 1, Cause: err}
	}
	return nil
}

func (s *JSONLSource) eachArray(ctx context.Context, fn func(Record) error) error {
	data, err := io.ReadAll(s.r)
	if err != nil {
		return &SourceError{Kind: KindJSON, Path: s.path, Cause: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	v, err := s.parser.ParseBytes(data)
	if err != nil {
		return &SourceError{Kind: KindJSON, Path: s.path, Cause: err}
	}

	items := []*fastjson.Value{v}
	if v.Type() == fastjson.TypeArray {
		items, _ = v.Array()
	}
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if item.Type() != fastjson.TypeObject {
			return &SourceError{Kind: KindJSON, Path: s.path, Line: i + 1,
				Cause: fmt.Errorf("record %d is a %s, not an object", i+1, item.Type())}
		}
		if err := fn(item); err != nil {
			return stopped(err)
		}
	}
	return nil
}

// Close closes the underlying reader if it is closable.
func (s *JSONLSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Native converts a record into plain Go values (map[string]any, []any,
// string, float64, bool, nil) that outlive the Each callback and encode
// with encoding/json or yaml. Other records are returned unchanged.
func Native(r Record) any {
	v, ok := r.(*fastjson.Value)
	if !ok || v == nil {
		return r
	}
	switch v.Type() {
	case fastjson.TypeObject:
		obj, _ := v.Object()
		out := make(map[string]any, obj.Len())
		obj.Visit(func(key []byte, item *fastjson.Value) {
			out[string(key)] = Native(item)
		})
		return out
	case fastjson.TypeArray:
		items, _ := v.Array()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = Native(item)
		}
		return out
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		return v.GetFloat64()
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	}
	return nil
}
