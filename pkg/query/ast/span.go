package ast

import "fmt"

// Span is a half-open byte range [Start, End) into the original query text.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// IsEmpty reports whether the span covers no bytes.
func (s Span) IsEmpty() bool {
	return s.End <= s.Start
}

// Contains reports whether o lies entirely within s.
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

// Text returns the slice of input covered by the span, clamped to the input bounds.
func (s Span) Text(input string) string {
	start, end := s.Start, s.End
	if start < 0 {
		start = 0
	}
	if end > len(input) {
		end = len(input)
	}
	if start >= end {
		return ""
	}
	return input[start:end]
}

// String returns the span in interval notation, e.g. "[3,6)".
func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// Cover returns the smallest span containing every non-zero span given.
func Cover(spans ...Span) Span {
	var out Span
	found := false
	for _, s := range spans {
		if s == (Span{}) {
			continue
		}
		if !found {
			out = s
			found = true
			continue
		}
		if s.Start < out.Start {
			out.Start = s.Start
		}
		if s.End > out.End {
			out.End = s.End
		}
	}
	return out
}
