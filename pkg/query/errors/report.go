package errors

import "strings"

// Report is a plain view of an Error for JSON and YAML output.
type Report struct {
	Type       ErrorType      `json:"type" yaml:"type"`
	Kind       string         `json:"kind" yaml:"kind"`
	Message    string         `json:"message" yaml:"message"`
	Start      int            `json:"start" yaml:"start"`
	End        int            `json:"end" yaml:"end"`
	Expected   []string       `json:"expected,omitempty" yaml:"expected,omitempty"`
	Data       map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
	Suggestion string         `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Context    string         `json:"context,omitempty" yaml:"context,omitempty"`
}

// NewReport converts err.
func NewReport(err Error) Report {
	span := err.Span()
	r := Report{Type: err.Type(), Start: span.Start, End: span.End}

	switch e := err.(type) {
	case *SyntaxError:
		r.Kind = string(e.Subtype)
		r.Message = e.Message()
		r.Expected = e.Expected
		r.Context = e.Context
	case *FieldError:
		r.Kind = string(e.Kind)
		r.Message = e.Message
		r.Data = e.Data
		r.Suggestion = e.Suggestion
		r.Context = e.Context
	default:
		r.Message = strings.SplitN(err.Error(), "\n", 2)[0]
	}
	return r
}

// Reports converts every error of errs.
func Reports(errs []Error) []Report {
	out := make([]Report, len(errs))
	for i, err := range errs {
		out[i] = NewReport(err)
	}
	return out
}
