package records

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLSource reads records from a YAML stream. Each document is either a
// mapping (one record) or a sequence of mappings. Records are
// map[string]any.
type YAMLSource struct {
	r      io.Reader
	closer io.Closer
	path   string
}

// NewYAMLSource reads YAML from r. path is used in errors only.
func NewYAMLSource(r io.Reader, path string) *YAMLSource {
	s := &YAMLSource{r: r, path: path}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// Kind returns "yaml".
func (s *YAMLSource) Kind() string { return KindYAML }

// Each implements Source.
func (s *YAMLSource) Each(ctx context.Context, fn func(Record) error) error {
	decoder := yaml.NewDecoder(s.r)

	for doc := 1; ; doc++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		var v any
		if err := decoder.Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return &SourceError{Kind: KindYAML, Path: s.path, Line: doc, Cause: err}
		}

		switch val := v.(type) {
		case nil:
			continue
		case map[string]any:
			if err := fn(val); err != nil {
				return stopped(err)
			}
		case []any:
			for i, item := range val {
				if _, ok := item.(map[string]any); !ok {
					return &SourceError{Kind: KindYAML, Path: s.path, Line: doc,
						Cause: fmt.Errorf("item %d is not a mapping", i+1)}
				}
				if err := fn(item); err != nil {
					return stopped(err)
				}
			}
		default:
			return &SourceError{Kind: KindYAML, Path: s.path, Line: doc,
				Cause: fmt.Errorf("document is a %T, not a mapping or sequence", v)}
		}
	}
}

// Close closes the underlying reader if it is closable.
func (s *YAMLSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
