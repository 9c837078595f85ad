// Package errors defines the errors reported for query text.
//
// Two kinds of error exist. A SyntaxError means the grammar could not parse the
// (delimiter-repaired) input at all; it carries the failure offset, the token
// kinds the grammar expected there and a best-effort subtype. A FieldError
// means the field vocabulary rejected one term; it carries the offending node
// so callers can point at it.
//
// Field errors are accumulated in an ErrorList so a caller sees every invalid
// term of a query at once:
//
//	result := s.Parse("foo>bar <2")
//	for _, err := range result.Errors {
//	    fmt.Print(err)
//	}
package errors
