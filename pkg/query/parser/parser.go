package parser

import (
	"crystal-hq/crystal/pkg/query/ast"
	qerrors "crystal-hq/crystal/pkg/query/errors"
)

const (
	// DefaultMaxDepth is the default limit on nested groups and negations.
	DefaultMaxDepth = 256

	// DefaultMaxOperators is the default limit on and/or operators in a
	// query, counting juxtaposition.
	DefaultMaxOperators = 10000
)

// CST is the result of a successful parse. Root is nil for an empty query.
// All spans refer to Input.
type CST struct {
	Root   ast.Node
	Input  string
	Repair Repaired
}

// AST returns the reduced syntax tree of the query.
func (c *CST) AST() ast.Node {
	return ast.Reduce(c.Root)
}

// Parser parses query text into a concrete syntax tree.
// A Parser is immutable and safe for concurrent use.
type Parser struct {
	repair       bool
	maxDepth     int
	maxOperators int
}

// Option configures a Parser.
type Option func(*Parser)

// WithoutRepair disables delimiter repair. Unbalanced parentheses and
// quotation marks then fail with a classified syntax error.
func WithoutRepair() Option {
	return func(p *Parser) {
		p.repair = false
	}
}

// WithRepair sets whether unbalanced delimiters are repaired before parsing.
func WithRepair(enabled bool) Option {
	return func(p *Parser) {
		p.repair = enabled
	}
}

// WithMaxDepth limits how deeply groups and negations may nest.
// Zero or a negative value removes the limit.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

// WithMaxOperators limits how many and/or operators, explicit or implied by
// juxtaposition, a query may contain. Zero or a negative value removes the
// limit.
func WithMaxOperators(n int) Option {
	return func(p *Parser) {
		p.maxOperators = n
	}
}

// New creates a parser. Delimiter repair is enabled by default.
func New(opts ...Option) *Parser {
	p := &Parser{
		repair:       true,
		maxDepth:     DefaultMaxDepth,
		maxOperators: DefaultMaxOperators,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses input. On failure the returned error is a *errors.SyntaxError.
func (p *Parser) Parse(input string) (*CST, error) {
	repaired := Repaired{Input: input}
	if p.repair {
		repaired = Repair(input)
	}

	s := newState(repaired.Balanced(), p.maxDepth, p.maxOperators)
	root, ok := s.query()
	if !ok {
		return nil, p.syntaxError(input, repaired, s)
	}

	return &CST{
		Root:   ast.Remap(root, len(repaired.Prefix), len(input)),
		Input:  input,
		Repair: repaired,
	}, nil
}

// ParseAST parses input and reduces the result.
func (p *Parser) ParseAST(input string) (ast.Node, error) {
	cst, err := p.Parse(input)
	if err != nil {
		return nil, err
	}
	return cst.AST(), nil
}

func (p *Parser) syntaxError(input string, repaired Repaired, s *state) *qerrors.SyntaxError {
	pos := s.failPos
	if s.tooDeep {
		pos = s.deepAt
	}
	if pos < 0 {
		pos = s.pos
	}
	offset := pos - len(repaired.Prefix)
	if offset < 0 {
		offset = 0
	}
	if offset > len(input) {
		offset = len(input)
	}

	err := &qerrors.SyntaxError{
		Offset:   offset,
		Expected: s.expectations(),
	}
	switch {
	case s.tooMany:
		err.Expected = nil
		err.Subtype = qerrors.SubtypeTooManyOperators
	case s.tooDeep:
		err.Expected = nil
		err.Subtype = qerrors.SubtypeNestingTooDeep
	default:
		err.Subtype = p.classify(input, offset, err.Expected)
	}
	err.Context = qerrors.ExtractContext(input, err.Span())
	return err
}

// classify guesses why parsing stopped at offset: a closing parenthesis that
// follows a well-formed prefix was never opened, and running out of input
// while a ")" or closing quote is expected means one was never closed.
func (p *Parser) classify(input string, offset int, expected []string) qerrors.SyntaxSubtype {
	if offset < len(input) && input[offset] == ')' {
		prefix := newState(input[:offset], p.maxDepth, p.maxOperators)
		if _, ok := prefix.query(); ok {
			return qerrors.SubtypeUnopenedParenthetical
		}
	}
	if offset >= len(input) {
		if contains(expected, expectClose) {
			return qerrors.SubtypeUnclosedParenthetical
		}
		if contains(expected, expectQuote) {
			return qerrors.SubtypeUnclosedQuotation
		}
	}
	return qerrors.SubtypeUnknown
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
