package schema

import (
	"crystal-hq/crystal/pkg/query/ast"
	qerrors "crystal-hq/crystal/pkg/query/errors"
)

// Result is the outcome of Schema.Parse.
//
// Status is false after a syntax error, and after field errors unless the
// schema ignores invalid terms. AST and Operations are only set when Status
// is true; AST is nil for an empty query.
type Result struct {
	Status     bool
	Input      string
	Errors     []qerrors.Error
	AST        ast.Node
	Operations Operations

	annotations map[ast.Node]map[string]any
	empty       map[string]any
}

// Err returns the errors as a single error, or nil.
func (r *Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return &qerrors.ErrorList{Errors: r.Errors}
}

// OperationsFor returns the operation values computed for a node of r.AST.
// A nil node yields the values of an empty expression.
func (r *Result) OperationsFor(n ast.Node) Operations {
	if !r.Status {
		return Operations{}
	}
	if n == nil {
		return Operations{values: r.empty}
	}
	return Operations{values: r.annotations[n]}
}

// FieldErrors returns the field errors of r.
func (r *Result) FieldErrors() []*qerrors.FieldError {
	return (&qerrors.ErrorList{Errors: r.Errors}).FieldErrors()
}

// Operations holds the values of the registered operations for one node.
// The zero value holds nothing.
type Operations struct {
	values map[string]any
}

// Value returns the value of the named operation.
func (o Operations) Value(name string) (any, bool) {
	v, ok := o.values[name]
	return v, ok
}

// Describe renders the expression. It returns "" unless the describe
// operation is registered.
func (o Operations) Describe() string {
	return o.DescribeNegated(false)
}

// DescribeNegated renders the expression, negated when asked to.
func (o Operations) DescribeNegated(negated bool) string {
	d, ok := o.values[OpDescribe].(Describer)
	if !ok {
		return ""
	}
	return d(negated)
}

// Predicate returns the predicate of the expression, or nil unless the
// predicate operation is registered.
func (o Operations) Predicate() Predicate {
	p, _ := o.values[OpPredicate].(Predicate)
	return p
}

// Match evaluates the predicate against input. It reports false unless the
// predicate operation is registered.
func (o Operations) Match(input any) bool {
	p := o.Predicate()
	return p != nil && p(input)
}
