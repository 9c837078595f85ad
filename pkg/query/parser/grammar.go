package parser

import (
	"sort"

	"crystal-hq/crystal/pkg/query/ast"
)

// state is a single parse of one (balanced) string.
//
// Every rule either succeeds, leaving pos after what it consumed, or fails
// and leaves pos where it started. Failed token matches are recorded at the
// furthest position reached so a failed parse can say what was expected.
type state struct {
	src string
	pos int

	depth    int
	maxDepth int
	tooDeep  bool
	deepAt   int

	operators    int
	maxOperators int
	tooMany      bool

	failPos  int
	expected map[string]struct{}

	groups map[int]groupResult
}

type groupResult struct {
	node *ast.Group
	end  int
	ok   bool
}

func newState(src string, maxDepth, maxOperators int) *state {
	return &state{
		src:          src,
		maxDepth:     maxDepth,
		maxOperators: maxOperators,
		failPos:      -1,
		expected:     make(map[string]struct{}),
		groups:       make(map[int]groupResult),
	}
}

func (s *state) expect(pos int, what string) {
	if pos > s.failPos {
		s.failPos = pos
		s.expected = make(map[string]struct{})
	}
	if pos == s.failPos {
		s.expected[what] = struct{}{}
	}
}

func (s *state) expectations() []string {
	out := make([]string, 0, len(s.expected))
	for e := range s.expected {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// enter descends one nesting level for the construct starting at start.
func (s *state) enter(start int) bool {
	if s.tooDeep {
		return false
	}
	if s.maxDepth > 0 && s.depth >= s.maxDepth {
		s.tooDeep = true
		s.deepAt = start
		return false
	}
	s.depth++
	return true
}

func (s *state) leave() {
	s.depth--
}

// countOperator counts one and/or node, explicit or implied, at pos. Chains fold
// into right-leaning trees, so the count bounds how deep they get.
func (s *state) countOperator(pos int) bool {
	if s.tooDeep {
		return false
	}
	s.operators++
	if s.maxOperators > 0 && s.operators > s.maxOperators {
		s.tooDeep = true
		s.tooMany = true
		s.deepAt = pos
		return false
	}
	return true
}

// query <- space? disjunction? space? EOF
func (s *state) query() (ast.Node, bool) {
	s.space()
	root, _ := s.disjunction()
	s.space()
	if s.tooDeep {
		return nil, false
	}
	if s.pos != len(s.src) {
		s.expect(s.pos, expectEndOfText)
		return nil, false
	}
	return root, true
}

// link is one operand of a conjunction or disjunction chain together with
// the separator that follows it.
type link struct {
	left   ast.Node
	start  int
	mid    int
	before *ast.Token
	kw     *ast.Token
	after  *ast.Token
}

// disjunction <- conjunction? space? "or" space? disjunction? / conjunction
func (s *state) disjunction() (ast.Node, bool) {
	var links []link
	for {
		start := s.pos
		left, ok := s.conjunction()
		if s.tooDeep {
			return nil, false
		}
		mid := s.pos
		before := s.space()
		if kw, isOr := s.keyword("or"); isOr {
			if !s.countOperator(kw.Loc.Start) {
				return nil, false
			}
			after := s.space()
			links = append(links, link{left: left, start: start, mid: mid, before: before, kw: kw, after: after})
			continue
		}
		s.pos = mid
		if !ok {
			if len(links) == 0 {
				return nil, false
			}
			return foldOr(links, nil, s.pos), true
		}
		return foldOr(links, left, s.pos), true
	}
}

// conjunction <- negation? space? "and" space? conjunction?
//
//	/ negation space? conjunction
//	/ negation
func (s *state) conjunction() (ast.Node, bool) {
	var links []link
	for {
		start := s.pos
		left, ok := s.negation()
		if s.tooDeep {
			return nil, false
		}
		if ok && len(links) > 0 && links[len(links)-1].kw == nil && !s.countOperator(start) {
			// The operand confirms the juxtaposition before it.
			return nil, false
		}
		mid := s.pos
		before := s.space()
		if kw, isAnd := s.keyword("and"); isAnd {
			if !s.countOperator(kw.Loc.Start) {
				return nil, false
			}
			after := s.space()
			links = append(links, link{left: left, start: start, mid: mid, before: before, kw: kw, after: after})
			continue
		}
		s.pos = mid

		if !ok {
			if len(links) == 0 {
				return nil, false
			}
			last := links[len(links)-1]
			if last.kw == nil {
				// The juxtaposed operand has nothing after it.
				s.pos = last.mid
				return foldAnd(links[:len(links)-1], last.left, s.pos), true
			}
			s.pos = start
			return foldAnd(links, nil, s.pos), true
		}

		before = s.space()
		links = append(links, link{left: left, start: start, mid: mid, before: before})
	}
}

func foldAnd(links []link, tail ast.Node, end int) ast.Node {
	node := tail
	for i := len(links) - 1; i >= 0; i-- {
		l := links[i]
		node = &ast.And{
			Left:    l.left,
			Before:  l.before,
			Keyword: l.kw,
			After:   l.after,
			Right:   node,
			Loc:     ast.Span{Start: l.start, End: end},
		}
	}
	return node
}

func foldOr(links []link, tail ast.Node, end int) ast.Node {
	node := tail
	for i := len(links) - 1; i >= 0; i-- {
		l := links[i]
		node = &ast.Or{
			Left:    l.left,
			Before:  l.before,
			Keyword: l.kw,
			After:   l.after,
			Right:   node,
			Loc:     ast.Span{Start: l.start, End: end},
		}
	}
	return node
}

// negation <- "not" space? negation? / term / group
func (s *state) negation() (ast.Node, bool) {
	start := s.pos
	kw, ok := s.keyword("not")
	if !ok {
		return s.basic()
	}
	if !s.enter(start) {
		s.pos = start
		return nil, false
	}
	defer s.leave()

	space := s.space()
	exprStart := s.pos
	expr, ok := s.negation()
	if s.tooDeep {
		s.pos = start
		return nil, false
	}
	if !ok {
		expr = nil
		s.pos = exprStart
	}
	return &ast.Not{Keyword: kw, Space: space, Expr: expr, Loc: ast.Span{Start: start, End: s.pos}}, true
}

func (s *state) basic() (ast.Node, bool) {
	if t, ok := s.term(); ok {
		return t, true
	}
	if s.tooDeep {
		return nil, false
	}
	if g, ok := s.group(); ok {
		return g, true
	}
	return nil, false
}

// term <- primary? operator primary? / literal
//
// A lone literal must not be a keyword; next to an operator any word is text.
func (s *state) term() (*ast.Term, bool) {
	start := s.pos
	field, _ := s.primary()
	if s.tooDeep {
		s.pos = start
		return nil, false
	}
	op, ok := s.operator()
	if !ok {
		s.pos = start
		lit, ok := s.literal(false)
		if !ok {
			return nil, false
		}
		return &ast.Term{Value: lit, Loc: lit.Loc}, true
	}
	value, _ := s.primary()
	if s.tooDeep {
		s.pos = start
		return nil, false
	}
	return &ast.Term{Field: field, Operator: op, Value: value, Loc: ast.Span{Start: start, End: s.pos}}, true
}

// primary <- quoted / word / group
func (s *state) primary() (ast.Node, bool) {
	if s.pos < len(s.src) && s.src[s.pos] == '(' {
		g, ok := s.group()
		if !ok {
			return nil, false
		}
		return g, true
	}
	lit, ok := s.literal(true)
	if !ok {
		return nil, false
	}
	return lit, true
}

// group <- "(" space? disjunction? space? ")"
//
// Results are memoized by position: a group in field position is parsed
// again as a plain group when no operator follows it.
func (s *state) group() (*ast.Group, bool) {
	start := s.pos
	if r, ok := s.groups[start]; ok {
		s.pos = r.end
		return r.node, r.ok
	}

	open, ok := s.char('(', expectOpen)
	if !ok {
		return nil, false
	}
	if !s.enter(start) {
		s.pos = start
		return nil, false
	}
	before := s.space()
	expr, _ := s.disjunction()
	after := s.space()
	closeTok, ok := s.char(')', expectClose)
	s.leave()
	if s.tooDeep {
		s.pos = start
		return nil, false
	}
	if !ok {
		s.pos = start
		s.groups[start] = groupResult{end: start}
		return nil, false
	}

	g := &ast.Group{
		Open:   open,
		Before: before,
		Expr:   expr,
		After:  after,
		Close:  closeTok,
		Loc:    ast.Span{Start: start, End: s.pos},
	}
	s.groups[start] = groupResult{node: g, end: s.pos, ok: true}
	return g, true
}
