package ast

// Kind identifies the variant of a Node.
type Kind string

const (
	KindAnd     Kind = "And"
	KindOr      Kind = "Or"
	KindNot     Kind = "Not"
	KindGroup   Kind = "Group"
	KindTerm    Kind = "Term"
	KindLiteral Kind = "Literal"
	KindToken   Kind = "Token"
)

// Node is a node of the concrete or abstract syntax tree.
//
// Children returns a fixed number of slots per variant in source order, with
// nil for absent parts. Decorative tokens (keywords, parentheses, whitespace)
// occupy slots of their own so that a CST can reproduce its source exactly.
// Nodes are immutable; transformations build new nodes.
type Node interface {
	Kind() Kind
	Span() Span
	Children() []Node

	rebuild(children []Node, span Span) Node
}

// Token is a decorative leaf: a keyword, operator, parenthesis, quotation
// mark or run of whitespace.
type Token struct {
	Text string
	Loc  Span
}

// Literal is atomic text: a bare word or a de-escaped quoted string.
type Literal struct {
	// Value is the text with quotes removed and escapes resolved.
	Value string
	// Raw is the source text, including quotes for quoted strings.
	Raw    string
	Quoted bool
	Loc    Span
}

// And is a conjunction. Keyword is nil when the operands were juxtaposed.
type And struct {
	Left    Node
	Before  *Token
	Keyword *Token
	After   *Token
	Right   Node
	Loc     Span
}

// Or is a disjunction.
type Or struct {
	Left    Node
	Before  *Token
	Keyword *Token
	After   *Token
	Right   Node
	Loc     Span
}

// Not is a negation.
type Not struct {
	Keyword *Token
	Space   *Token
	Expr    Node
	Loc     Span
}

// Group is a parenthesized expression. Expr is nil for "()".
type Group struct {
	Open   *Token
	Before *Token
	Expr   Node
	After  *Token
	Close  *Token
	Loc    Span
}

// Term is an atomic comparison. Any of Field, Operator and Value may be nil.
// Field and Value are *Literal once reduced; in a CST they may also be a
// *Group when a parenthesized expression was used in that position.
type Term struct {
	Field    Node
	Operator *Token
	Value    Node
	Loc      Span
}

func (*Token) Kind() Kind   { return KindToken }
func (*Literal) Kind() Kind { return KindLiteral }
func (*And) Kind() Kind     { return KindAnd }
func (*Or) Kind() Kind      { return KindOr }
func (*Not) Kind() Kind     { return KindNot }
func (*Group) Kind() Kind   { return KindGroup }
func (*Term) Kind() Kind    { return KindTerm }

func (n *Token) Span() Span   { return n.Loc }
func (n *Literal) Span() Span { return n.Loc }
func (n *And) Span() Span     { return n.Loc }
func (n *Or) Span() Span      { return n.Loc }
func (n *Not) Span() Span     { return n.Loc }
func (n *Group) Span() Span   { return n.Loc }
func (n *Term) Span() Span    { return n.Loc }

func (*Token) Children() []Node   { return nil }
func (*Literal) Children() []Node { return nil }

func (n *And) Children() []Node {
	return []Node{n.Left, tokenNode(n.Before), tokenNode(n.Keyword), tokenNode(n.After), n.Right}
}

func (n *Or) Children() []Node {
	return []Node{n.Left, tokenNode(n.Before), tokenNode(n.Keyword), tokenNode(n.After), n.Right}
}

func (n *Not) Children() []Node {
	return []Node{tokenNode(n.Keyword), tokenNode(n.Space), n.Expr}
}

func (n *Group) Children() []Node {
	return []Node{tokenNode(n.Open), tokenNode(n.Before), n.Expr, tokenNode(n.After), tokenNode(n.Close)}
}

func (n *Term) Children() []Node {
	return []Node{n.Field, tokenNode(n.Operator), n.Value}
}

// Leaves keep their text the same length as their span; a shortened span
// clips the text from the end.
func (n *Token) rebuild(_ []Node, span Span) Node {
	return &Token{Text: clip(n.Text, span.Len()), Loc: span}
}

func (n *Literal) rebuild(_ []Node, span Span) Node {
	return &Literal{Value: n.Value, Raw: clip(n.Raw, span.Len()), Quoted: n.Quoted, Loc: span}
}

func (n *And) rebuild(c []Node, span Span) Node {
	return &And{Left: c[0], Before: asToken(c[1]), Keyword: asToken(c[2]), After: asToken(c[3]), Right: c[4], Loc: span}
}

func (n *Or) rebuild(c []Node, span Span) Node {
	return &Or{Left: c[0], Before: asToken(c[1]), Keyword: asToken(c[2]), After: asToken(c[3]), Right: c[4], Loc: span}
}

func (n *Not) rebuild(c []Node, span Span) Node {
	return &Not{Keyword: asToken(c[0]), Space: asToken(c[1]), Expr: c[2], Loc: span}
}

func (n *Group) rebuild(c []Node, span Span) Node {
	return &Group{Open: asToken(c[0]), Before: asToken(c[1]), Expr: c[2], After: asToken(c[3]), Close: asToken(c[4]), Loc: span}
}

func (n *Term) rebuild(c []Node, span Span) Node {
	return &Term{Field: c[0], Operator: asToken(c[1]), Value: c[2], Loc: span}
}

// WithChildren returns a copy of n with its children replaced. The slice must
// have the same length as n.Children().
func WithChildren(n Node, children []Node) Node {
	return n.rebuild(children, n.Span())
}

// WithSpan returns a copy of n covering span.
func WithSpan(n Node, span Span) Node {
	return n.rebuild(n.Children(), span)
}

// NewAnd builds a conjunction without decorative tokens.
func NewAnd(left, right Node) *And {
	return &And{Left: left, Right: right, Loc: Cover(spanOf(left), spanOf(right))}
}

// NewOr builds a disjunction without decorative tokens.
func NewOr(left, right Node) *Or {
	return &Or{Left: left, Right: right, Loc: Cover(spanOf(left), spanOf(right))}
}

// NewNot builds a negation without decorative tokens.
func NewNot(expr Node) *Not {
	return &Not{Expr: expr, Loc: spanOf(expr)}
}

// NewGroup builds a group without decorative tokens.
func NewGroup(expr Node) *Group {
	return &Group{Expr: expr, Loc: spanOf(expr)}
}

// NewWord builds an unquoted literal.
func NewWord(text string) *Literal {
	return &Literal{Value: text, Raw: text}
}

// NewTerm builds a term from optional parts. Empty strings are treated as absent.
func NewTerm(field, operator, value string) *Term {
	t := &Term{}
	if field != "" {
		t.Field = NewWord(field)
	}
	if operator != "" {
		t.Operator = &Token{Text: operator}
	}
	if value != "" {
		t.Value = NewWord(value)
	}
	return t
}

// FieldText returns the field name when the field is a literal.
func (n *Term) FieldText() (string, bool) {
	return literalText(n.Field)
}

// OperatorText returns the operator when one is present.
func (n *Term) OperatorText() (string, bool) {
	if n.Operator == nil {
		return "", false
	}
	return n.Operator.Text, true
}

// ValueText returns the value when the value is a literal.
func (n *Term) ValueText() (string, bool) {
	return literalText(n.Value)
}

// IsBare reports whether the term consists of a value alone.
func (n *Term) IsBare() bool {
	return n.Field == nil && n.Operator == nil && n.Value != nil
}

// IsEmpty reports whether all three parts are absent.
func (n *Term) IsEmpty() bool {
	return n.Field == nil && n.Operator == nil && n.Value == nil
}

func literalText(n Node) (string, bool) {
	if lit, ok := n.(*Literal); ok {
		return lit.Value, true
	}
	return "", false
}

func tokenNode(t *Token) Node {
	if t == nil {
		return nil
	}
	return t
}

func asToken(n Node) *Token {
	t, _ := n.(*Token)
	return t
}

func spanOf(n Node) Span {
	if n == nil {
		return Span{}
	}
	return n.Span()
}

func clip(s string, n int) string {
	if n < 0 {
		return ""
	}
	if len(s) > n {
		return s[:n]
	}
	return s
}
