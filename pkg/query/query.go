// Package query is the entry point to the crystal query language.
//
// Queries are made of terms such as title:go, pages>100 or a bare word,
// combined with and, or, not, juxtaposition (an implicit and) and
// parentheses. Parse validates a query against the generic vocabulary; use
// package schema directly to declare fields or add operations.
package query

import (
	"fmt"

	"crystal-hq/crystal/pkg/query/schema"
)

var defaultSchema = schema.MustNew()

// Query is a successfully parsed query.
type Query struct {
	result *schema.Result
}

// Parse parses input with the generic vocabulary.
func Parse(input string) (*Query, error) {
	return Compile(defaultSchema, input)
}

// Compile parses input with s.
func Compile(s *schema.Schema, input string) (*Query, error) {
	res := s.Parse(input)
	if !res.Status {
		return nil, fmt.Errorf("parse query %q: %w", input, res.Err())
	}
	return &Query{result: res}, nil
}

// MustCompile is like Parse but panics when input is invalid.
func MustCompile(input string) *Query {
	q, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return q
}

// Describe renders the query in English.
func (q *Query) Describe() string {
	return q.result.Operations.Describe()
}

// Match reports whether input satisfies the query.
func (q *Query) Match(input any) bool {
	return q.result.Operations.Match(input)
}

// Result returns the full schema result.
func (q *Query) Result() *schema.Result {
	return q.result
}

// Describe parses input and describes it.
func Describe(input string) (string, error) {
	q, err := Parse(input)
	if err != nil {
		return "", err
	}
	return q.Describe(), nil
}

// Match parses input and evaluates it against value.
func Match(input string, value any) (bool, error) {
	q, err := Parse(input)
	if err != nil {
		return false, err
	}
	return q.Match(value), nil
}
