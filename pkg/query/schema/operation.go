package schema

import (
	"errors"
	"fmt"

	"crystal-hq/crystal/pkg/query/ast"
	"crystal-hq/crystal/pkg/query/fields"
	"crystal-hq/crystal/pkg/query/messages"
)

// Names of the built-in operations.
const (
	OpDescribe  = "describe"
	OpPredicate = "predicate"
)

// ErrInvalidOperation is returned by New for a malformed operation set.
var ErrInvalidOperation = errors.New("invalid operation")

// Operation computes one named value for every node of an AST, bottom-up.
// Each method receives the values already computed for the node's children.
type Operation interface {
	Name() string
	Term(n *ast.Term, b fields.Bundle) any
	And(n *ast.And, left, right any) any
	Or(n *ast.Or, left, right any) any
	Not(n *ast.Not, expr any) any
	Group(n *ast.Group, expr any) any
	// Empty is the value of an absent expression.
	Empty() any
}

// Describer renders an expression in English.
type Describer func(negated bool) string

// Predicate reports whether input satisfies an expression.
type Predicate func(input any) bool

// Describe is the "describe" operation. Its values are Describers.
//
// A negated And or Or is rendered as "not (l and r)". A negated group is
// rendered "not (e)" unless PropagateNegation is set, in which case the
// negation is handed to the group's contents.
type Describe struct {
	PropagateNegation bool
}

func (Describe) Name() string { return OpDescribe }

func (Describe) Term(_ *ast.Term, b fields.Bundle) any {
	return Describer(b.Describe)
}

func (Describe) And(_ *ast.And, left, right any) any {
	l, r := left.(Describer), right.(Describer)
	return Describer(func(negated bool) string {
		return negate(messages.Conjunction(l(false), r(false)), negated)
	})
}

func (Describe) Or(_ *ast.Or, left, right any) any {
	l, r := left.(Describer), right.(Describer)
	return Describer(func(negated bool) string {
		return negate(messages.Disjunction(l(false), r(false)), negated)
	})
}

func (Describe) Not(_ *ast.Not, expr any) any {
	e := expr.(Describer)
	return Describer(func(negated bool) string {
		return e(!negated)
	})
}

func (d Describe) Group(_ *ast.Group, expr any) any {
	e := expr.(Describer)
	if d.PropagateNegation {
		return Describer(func(negated bool) string {
			return messages.Parenthetical(e(negated), false)
		})
	}
	return Describer(func(negated bool) string {
		return messages.Parenthetical(e(false), negated)
	})
}

func (Describe) Empty() any {
	return Describer(func(bool) string { return "" })
}

func negate(s string, negated bool) string {
	if !negated {
		return s
	}
	return messages.Parenthetical(s, true)
}

// PredicateOp is the "predicate" operation. Its values are Predicates. The
// predicate of an absent expression matches everything.
type PredicateOp struct{}

func (PredicateOp) Name() string { return OpPredicate }

func (PredicateOp) Term(_ *ast.Term, b fields.Bundle) any {
	return Predicate(b.Match)
}

func (PredicateOp) And(_ *ast.And, left, right any) any {
	l, r := left.(Predicate), right.(Predicate)
	return Predicate(func(input any) bool { return l(input) && r(input) })
}

func (PredicateOp) Or(_ *ast.Or, left, right any) any {
	l, r := left.(Predicate), right.(Predicate)
	return Predicate(func(input any) bool { return l(input) || r(input) })
}

func (PredicateOp) Not(_ *ast.Not, expr any) any {
	e := expr.(Predicate)
	return Predicate(func(input any) bool { return !e(input) })
}

func (PredicateOp) Group(_ *ast.Group, expr any) any {
	return expr
}

func (PredicateOp) Empty() any {
	return Predicate(func(any) bool { return true })
}

// Visit is what a Combinator sees of a node.
type Visit struct {
	Node     ast.Node
	Children []any         // Values of the node's operands, left to right
	Bundle   fields.Bundle // Set for terms
}

// Combinator computes a custom operation's value for one node.
type Combinator func(v Visit) any

// FuncOperation is a custom operation given as one Combinator per node kind.
// Rules must cover And, Or, Not, Group and Term.
type FuncOperation struct {
	OpName     string
	Rules      map[ast.Kind]Combinator
	EmptyValue any
}

// visitedKinds are the node kinds present in a reduced AST.
var visitedKinds = []ast.Kind{ast.KindAnd, ast.KindOr, ast.KindNot, ast.KindGroup, ast.KindTerm}

func (f *FuncOperation) Name() string { return f.OpName }

func (f *FuncOperation) Term(n *ast.Term, b fields.Bundle) any {
	return f.Rules[ast.KindTerm](Visit{Node: n, Bundle: b})
}

func (f *FuncOperation) And(n *ast.And, left, right any) any {
	return f.Rules[ast.KindAnd](Visit{Node: n, Children: []any{left, right}})
}

func (f *FuncOperation) Or(n *ast.Or, left, right any) any {
	return f.Rules[ast.KindOr](Visit{Node: n, Children: []any{left, right}})
}

func (f *FuncOperation) Not(n *ast.Not, expr any) any {
	return f.Rules[ast.KindNot](Visit{Node: n, Children: []any{expr}})
}

func (f *FuncOperation) Group(n *ast.Group, expr any) any {
	return f.Rules[ast.KindGroup](Visit{Node: n, Children: []any{expr}})
}

func (f *FuncOperation) Empty() any { return f.EmptyValue }

func (f *FuncOperation) validate() error {
	for kind, rule := range f.Rules {
		if !visited(kind) {
			return fmt.Errorf("%w %q: no %s nodes in an abstract syntax tree", ErrInvalidOperation, f.OpName, kind)
		}
		if rule == nil {
			return fmt.Errorf("%w %q: nil rule for %s", ErrInvalidOperation, f.OpName, kind)
		}
	}
	for _, kind := range visitedKinds {
		if _, ok := f.Rules[kind]; !ok {
			return fmt.Errorf("%w %q: missing rule for %s", ErrInvalidOperation, f.OpName, kind)
		}
	}
	return nil
}

func visited(kind ast.Kind) bool {
	for _, k := range visitedKinds {
		if k == kind {
			return true
		}
	}
	return false
}

func validateOperations(ops []Operation) error {
	seen := make(map[string]bool, len(ops))
	for _, op := range ops {
		if op == nil {
			return fmt.Errorf("%w: nil operation", ErrInvalidOperation)
		}
		name := op.Name()
		if name == "" {
			return fmt.Errorf("%w: empty name", ErrInvalidOperation)
		}
		if seen[name] {
			return fmt.Errorf("%w %q: registered twice", ErrInvalidOperation, name)
		}
		seen[name] = true
		if f, ok := op.(*FuncOperation); ok {
			if err := f.validate(); err != nil {
				return err
			}
		}
	}
	return nil
}
