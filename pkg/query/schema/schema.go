package schema

import (
	stderrors "errors"

	"crystal-hq/crystal/pkg/query/ast"
	qerrors "crystal-hq/crystal/pkg/query/errors"
	"crystal-hq/crystal/pkg/query/fields"
	"crystal-hq/crystal/pkg/query/messages"
	"crystal-hq/crystal/pkg/query/parser"
)

// Schema parses queries, validates their terms against a field vocabulary
// and computes operations over the result.
// A Schema is immutable and safe for concurrent use when its vocabulary is.
type Schema struct {
	parser        *parser.Parser
	parserOpts    []parser.Option
	vocabulary    fields.Vocabulary
	operations    []Operation
	ignoreInvalid bool
	propagate     bool
	customOps     bool
}

// Option configures a Schema.
type Option func(*Schema)

// WithVocabulary sets the field vocabulary. The default is fields.Generic.
func WithVocabulary(v fields.Vocabulary) Option {
	return func(s *Schema) {
		s.vocabulary = v
	}
}

// WithOperations replaces the default describe and predicate operations.
func WithOperations(ops ...Operation) Option {
	return func(s *Schema) {
		s.operations = ops
		s.customOps = true
	}
}

// WithIgnoreInvalid prunes rejected terms instead of failing the query.
func WithIgnoreInvalid(ignore bool) Option {
	return func(s *Schema) {
		s.ignoreInvalid = ignore
	}
}

// WithParser sets the parser. It takes precedence over WithMaxDepth and
// WithRepair.
func WithParser(p *parser.Parser) Option {
	return func(s *Schema) {
		s.parser = p
	}
}

// WithMaxDepth limits nesting in parsed queries.
func WithMaxDepth(depth int) Option {
	return func(s *Schema) {
		s.parserOpts = append(s.parserOpts, parser.WithMaxDepth(depth))
	}
}

// WithMaxOperators limits and/or operators in parsed queries.
func WithMaxOperators(n int) Option {
	return func(s *Schema) {
		s.parserOpts = append(s.parserOpts, parser.WithMaxOperators(n))
	}
}

// WithRepair sets whether unbalanced delimiters are repaired.
func WithRepair(enabled bool) Option {
	return func(s *Schema) {
		s.parserOpts = append(s.parserOpts, parser.WithRepair(enabled))
	}
}

// WithPropagateNegation makes the default describe operation push a
// negation into groups instead of rendering "not (...)".
func WithPropagateNegation(propagate bool) Option {
	return func(s *Schema) {
		s.propagate = propagate
	}
}

// New creates a schema. It fails when the operation set is malformed.
func New(opts ...Option) (*Schema, error) {
	s := &Schema{vocabulary: fields.Generic{}}
	for _, opt := range opts {
		opt(s)
	}
	if s.parser == nil {
		s.parser = parser.New(s.parserOpts...)
	}
	if !s.customOps {
		s.operations = []Operation{Describe{PropagateNegation: s.propagate}, PredicateOp{}}
	}
	if s.vocabulary == nil {
		s.vocabulary = fields.Generic{}
	}
	if err := validateOperations(s.operations); err != nil {
		return nil, err
	}
	return s, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Schema {
	s, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Parse parses and validates input. It never returns nil; inspect
// Result.Status and Result.Errors.
func (s *Schema) Parse(input string) *Result {
	cst, err := s.parser.Parse(input)
	if err != nil {
		var syntaxErr *qerrors.SyntaxError
		if !stderrors.As(err, &syntaxErr) {
			syntaxErr = &qerrors.SyntaxError{Subtype: qerrors.SubtypeUnknown}
		}
		return &Result{Input: input, Errors: []qerrors.Error{syntaxErr}}
	}

	root := cst.AST()
	bundles, errs := s.resolve(input, root)

	if len(errs) > 0 {
		if !s.ignoreInvalid {
			return &Result{Input: input, Errors: errs}
		}
		root = prune(root, bundles)
	}

	annotations := make(map[ast.Node]map[string]any)
	s.annotate(root, bundles, annotations)

	res := &Result{
		Status:      true,
		Input:       input,
		Errors:      errs,
		AST:         root,
		annotations: annotations,
		empty:       s.emptyValues(),
	}
	res.Operations = res.OperationsFor(root)
	return res
}

// resolve asks the vocabulary for every term, left to right. Rejected terms
// have no entry in the returned map.
func (s *Schema) resolve(input string, root ast.Node) (map[*ast.Term]fields.Bundle, []qerrors.Error) {
	bundles := make(map[*ast.Term]fields.Bundle)
	var errs []qerrors.Error

	ast.Walk(root, func(n ast.Node) bool {
		t, ok := n.(*ast.Term)
		if !ok {
			return true
		}
		b, fe := s.lookup(t)
		if fe != nil {
			fe.Node = t
			s.suggest(fe)
			errs = append(errs, qerrors.WithContext(fe, input))
			return false
		}
		bundles[t] = b
		return false
	})
	return bundles, errs
}

func (s *Schema) lookup(t *ast.Term) (fields.Bundle, *qerrors.FieldError) {
	term, ok := vocabularyTerm(t)
	if !ok {
		return nil, qerrors.NewFieldError(qerrors.KindNestedTerm, messages.ErrorNestedTerm(ast.String(t)))
	}

	b, err := s.vocabulary.Get(term)
	if err != nil {
		var fe *qerrors.FieldError
		if stderrors.As(err, &fe) {
			return nil, fe
		}
		return nil, qerrors.NewFieldError(qerrors.KindWrongType, err.Error())
	}
	if b == nil {
		return nil, qerrors.NewFieldError(qerrors.KindUnsupportedField, messages.ErrorUnsupportedField(term.FieldName()))
	}
	return b, nil
}

func (s *Schema) suggest(fe *qerrors.FieldError) {
	lister, ok := s.vocabulary.(fields.FieldLister)
	if !ok || fe.Suggestion != "" {
		return
	}
	name, _ := fe.Data["field"].(string)
	switch fe.Kind {
	case qerrors.KindUnsupportedField:
		fe.Suggestion = qerrors.SuggestFieldName(name, lister.FieldNames())
	case qerrors.KindUnsupportedOperator:
		fe.Suggestion = qerrors.SuggestOperator(lister.OperatorsFor(name))
	}
}

// vocabularyTerm converts a reduced term. It fails for a field or value that
// is still a parenthesized expression.
func vocabularyTerm(t *ast.Term) (fields.Term, bool) {
	var term fields.Term
	if t.Field != nil {
		text, ok := t.FieldText()
		if !ok {
			return term, false
		}
		term.Field = &text
	}
	if op, ok := t.OperatorText(); ok {
		term.Operator = &op
	}
	if t.Value != nil {
		text, ok := t.ValueText()
		if !ok {
			return term, false
		}
		term.Value = &text
	}
	return term, true
}

// prune removes rejected terms. An And or Or that loses one operand becomes
// the other; nodes left with nothing inside disappear.
func prune(root ast.Node, bundles map[*ast.Term]fields.Bundle) ast.Node {
	return ast.Fold(root, func(n ast.Node, visit func(ast.Node) ast.Node) ast.Node {
		if t, ok := n.(*ast.Term); ok {
			if _, valid := bundles[t]; valid {
				return t
			}
			return nil
		}

		switch v := visit(n).(type) {
		case *ast.And:
			return survivor(v, v.Left, v.Right)
		case *ast.Or:
			return survivor(v, v.Left, v.Right)
		case *ast.Not:
			if v.Expr == nil {
				return nil
			}
			return v
		case *ast.Group:
			if v.Expr == nil {
				return nil
			}
			return v
		default:
			return v
		}
	})
}

func survivor(n, left, right ast.Node) ast.Node {
	switch {
	case left == nil && right == nil:
		return nil
	case left == nil:
		return right
	case right == nil:
		return left
	}
	return n
}

// annotate computes every operation for every node below n, children first.
func (s *Schema) annotate(n ast.Node, bundles map[*ast.Term]fields.Bundle, out map[ast.Node]map[string]any) map[string]any {
	if n == nil {
		return nil
	}

	values := make(map[string]any, len(s.operations))
	switch v := n.(type) {
	case *ast.Term:
		b := bundles[v]
		for _, op := range s.operations {
			values[op.Name()] = op.Term(v, b)
		}
	case *ast.And:
		l, r := s.annotate(v.Left, bundles, out), s.annotate(v.Right, bundles, out)
		for _, op := range s.operations {
			values[op.Name()] = op.And(v, l[op.Name()], r[op.Name()])
		}
	case *ast.Or:
		l, r := s.annotate(v.Left, bundles, out), s.annotate(v.Right, bundles, out)
		for _, op := range s.operations {
			values[op.Name()] = op.Or(v, l[op.Name()], r[op.Name()])
		}
	case *ast.Not:
		e := s.annotate(v.Expr, bundles, out)
		for _, op := range s.operations {
			values[op.Name()] = op.Not(v, e[op.Name()])
		}
	case *ast.Group:
		e := s.annotate(v.Expr, bundles, out)
		for _, op := range s.operations {
			values[op.Name()] = op.Group(v, e[op.Name()])
		}
	default:
		return nil
	}
	out[n] = values
	return values
}

// OperationNames lists the registered operations in registration order.
func (s *Schema) OperationNames() []string {
	names := make([]string, len(s.operations))
	for i, op := range s.operations {
		names[i] = op.Name()
	}
	return names
}

func (s *Schema) emptyValues() map[string]any {
	values := make(map[string]any, len(s.operations))
	for _, op := range s.operations {
		values[op.Name()] = op.Empty()
	}
	return values
}
