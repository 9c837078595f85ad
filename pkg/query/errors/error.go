package errors

import (
	"fmt"
	"strings"

	"crystal-hq/crystal/pkg/query/ast"
)

// ErrorType categorizes the errors produced while parsing or validating a query.
type ErrorType string

const (
	ErrorTypeSyntax ErrorType = "syntax" // The grammar could not derive a parse
	ErrorTypeField  ErrorType = "field"  // The field vocabulary rejected a term
)

// Error is implemented by every error reported for a query.
type Error interface {
	error
	Type() ErrorType
	Span() ast.Span
}

// SyntaxSubtype is a best-effort classification of a syntax error.
type SyntaxSubtype string

const (
	SubtypeUnopenedParenthetical SyntaxSubtype = "unopened parenthetical"
	SubtypeUnclosedParenthetical SyntaxSubtype = "unclosed parenthetical"
	SubtypeUnclosedQuotation     SyntaxSubtype = "unclosed quotation"
	SubtypeNestingTooDeep        SyntaxSubtype = "nesting too deep"
	SubtypeTooManyOperators      SyntaxSubtype = "too many operators"
	SubtypeUnknown               SyntaxSubtype = "unknown"
)

// SyntaxError reports a query the grammar could not parse.
type SyntaxError struct {
	Offset   int           // Byte offset of the failure in the original input
	Expected []string      // Token kinds the grammar would have accepted at Offset
	Subtype  SyntaxSubtype // Classification of the failure
	Context  string        // Caret diagnostic, see ExtractContext
}

func (e *SyntaxError) Type() ErrorType { return ErrorTypeSyntax }

func (e *SyntaxError) Span() ast.Span { return ast.Span{Start: e.Offset, End: e.Offset} }

// Message returns the error without context lines.
func (e *SyntaxError) Message() string {
	msg := fmt.Sprintf("syntax error at offset %d", e.Offset)
	if e.Subtype != "" && e.Subtype != SubtypeUnknown {
		msg += ": " + string(e.Subtype)
	}
	if len(e.Expected) > 0 {
		msg += fmt.Sprintf(" (expected %s)", strings.Join(e.Expected, ", "))
	}
	return msg
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Context == "" {
		return e.Message()
	}
	return e.Message() + "\n" + e.Context
}

// FieldKind identifies why a term was rejected.
type FieldKind string

const (
	KindNoField             FieldKind = "no field"
	KindUnsupportedField    FieldKind = "unsupported field"
	KindNoOperator          FieldKind = "no operator"
	KindUnsupportedOperator FieldKind = "unsupported operator"
	KindNoValue             FieldKind = "no value"
	KindWrongType           FieldKind = "wrong type"
	KindNestedTerm          FieldKind = "nested term"
)

// FieldError reports a term rejected by the field vocabulary.
type FieldError struct {
	Kind       FieldKind      // Reason for rejection
	Message    string         // Human-readable message
	Node       ast.Node       // Offending term, set by the schema
	Data       map[string]any // Vocabulary-specific details (field, operator, value...)
	Context    string         // Caret diagnostic, see ExtractContext
	Suggestion string         // Suggested fix (optional)
}

// NewFieldError creates a field error of the given kind.
func NewFieldError(kind FieldKind, message string) *FieldError {
	return &FieldError{Kind: kind, Message: message}
}

// WithData attaches a detail to the error and returns it.
func (e *FieldError) WithData(key string, value any) *FieldError {
	if e.Data == nil {
		e.Data = make(map[string]any)
	}
	e.Data[key] = value
	return e
}

func (e *FieldError) Type() ErrorType { return ErrorTypeField }

func (e *FieldError) Span() ast.Span {
	if e.Node == nil {
		return ast.Span{}
	}
	return e.Node.Span()
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	if e.Context != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Context)
	}
	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  = suggestion: %s\n", e.Suggestion))
	}
	return sb.String()
}

// ErrorList accumulates the errors found in a query instead of stopping at
// the first one.
type ErrorList struct {
	Errors []Error
}

// NewErrorList creates a new empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{
		Errors: make([]Error, 0),
	}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err Error) {
	el.Errors = append(el.Errors, err)
}

// HasErrors returns true if the error list contains any errors.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of errors in the list.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// Error implements the error interface.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}
	if el.Count() == 1 {
		return el.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("found %d error(s):\n", el.Count()))
	for i, err := range el.Errors {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, strings.TrimRight(err.Error(), "\n")))
	}
	return sb.String()
}

// ToError returns nil if the error list is empty, otherwise returns the error list itself.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// ByType returns all errors of the given type.
func (el *ErrorList) ByType(errType ErrorType) []Error {
	var result []Error
	for _, err := range el.Errors {
		if err.Type() == errType {
			result = append(result, err)
		}
	}
	return result
}

// HasErrorType returns true if the error list contains at least one error of the given type.
func (el *ErrorList) HasErrorType(errType ErrorType) bool {
	for _, err := range el.Errors {
		if err.Type() == errType {
			return true
		}
	}
	return false
}

// FieldErrors returns the field errors in the order they were added.
func (el *ErrorList) FieldErrors() []*FieldError {
	var result []*FieldError
	for _, err := range el.Errors {
		if fe, ok := err.(*FieldError); ok {
			result = append(result, fe)
		}
	}
	return result
}
