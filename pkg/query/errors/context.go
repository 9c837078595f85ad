package errors

import (
	"fmt"
	"strings"

	"crystal-hq/crystal/pkg/query/ast"
)

// ExtractContext renders the line of input containing span with a marker
// underneath, for example:
//
//	| foo>bar <2
//	|     ^^^
//
// Empty spans are marked with a single caret. Multi-line queries show only the
// line where the span starts, prefixed with its line number.
func ExtractContext(input string, span ast.Span) string {
	if span.Start < 0 || span.Start > len(input) {
		return ""
	}

	lineStart := strings.LastIndexByte(input[:span.Start], '\n') + 1
	lineEnd := len(input)
	if i := strings.IndexByte(input[span.Start:], '\n'); i >= 0 {
		lineEnd = span.Start + i
	}
	line := input[lineStart:lineEnd]

	gutter := "  "
	if lineStart > 0 || lineEnd < len(input) {
		gutter = fmt.Sprintf("%d ", strings.Count(input[:lineStart], "\n")+1)
	}

	width := span.End - span.Start
	if span.End > lineEnd {
		width = lineEnd - span.Start
	}
	if width < 1 {
		width = 1
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s| %s\n", gutter, line))
	sb.WriteString(fmt.Sprintf("%s| %s%s\n",
		strings.Repeat(" ", len(gutter)),
		strings.Repeat(" ", span.Start-lineStart),
		strings.Repeat("^", width),
	))
	return sb.String()
}

// WithContext fills in the caret diagnostic of err from input and returns err.
func WithContext(err Error, input string) Error {
	ctx := ExtractContext(input, err.Span())
	switch e := err.(type) {
	case *SyntaxError:
		e.Context = ctx
	case *FieldError:
		e.Context = ctx
	}
	return err
}
