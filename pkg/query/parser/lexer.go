package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"crystal-hq/crystal/pkg/query/ast"
)

// Expectation names recorded when a token fails to match.
const (
	expectOpen      = `"("`
	expectClose     = `")"`
	expectQuote     = `"\""`
	expectOperator  = "operator"
	expectWord      = "word"
	expectEndOfText = "end of input"
)

var keywords = map[string]bool{"and": true, "or": true, "not": true}

// operators in match order; two-character operators come first.
var operators = []string{"<=", ">=", ":", "<", ">", "="}

func isSpecial(c byte) bool {
	return strings.IndexByte(`:<>="()`, c) >= 0
}

func isOperatorStart(c byte) bool {
	return strings.IndexByte(":<>=", c) >= 0
}

func (s *state) runeAt(pos int) (rune, int) {
	return utf8.DecodeRuneInString(s.src[pos:])
}

// space consumes a run of whitespace.
func (s *state) space() *ast.Token {
	start := s.pos
	for s.pos < len(s.src) {
		r, size := s.runeAt(s.pos)
		if !unicode.IsSpace(r) {
			break
		}
		s.pos += size
	}
	if s.pos == start {
		return nil
	}
	return s.token(start)
}

// peekWord returns the end of the word starting at pos, or pos if none.
func (s *state) peekWord(pos int) int {
	end := pos
	for end < len(s.src) {
		c := s.src[end]
		if isSpecial(c) {
			break
		}
		r, size := s.runeAt(end)
		if unicode.IsSpace(r) {
			break
		}
		end += size
	}
	return end
}

// word consumes a bare word. Keywords are rejected unless allowKeywords is set.
func (s *state) word(allowKeywords bool) (*ast.Literal, bool) {
	end := s.peekWord(s.pos)
	if end == s.pos {
		s.expect(s.pos, expectWord)
		return nil, false
	}
	text := s.src[s.pos:end]
	if !allowKeywords && keywords[text] {
		s.expect(s.pos, expectWord)
		return nil, false
	}
	lit := &ast.Literal{Value: text, Raw: text, Loc: ast.Span{Start: s.pos, End: end}}
	s.pos = end
	return lit, true
}

// keyword consumes kw when it occupies a whole word. A keyword directly
// followed by an operator is a field name, not a keyword.
func (s *state) keyword(kw string) (*ast.Token, bool) {
	end := s.peekWord(s.pos)
	if s.src[s.pos:end] != kw || (end < len(s.src) && isOperatorStart(s.src[end])) {
		s.expect(s.pos, `"`+kw+`"`)
		return nil, false
	}
	start := s.pos
	s.pos = end
	return s.token(start), true
}

func (s *state) operator() (*ast.Token, bool) {
	for _, op := range operators {
		if strings.HasPrefix(s.src[s.pos:], op) {
			start := s.pos
			s.pos += len(op)
			return s.token(start), true
		}
	}
	s.expect(s.pos, expectOperator)
	return nil, false
}

func (s *state) char(c byte, expectation string) (*ast.Token, bool) {
	if s.pos < len(s.src) && s.src[s.pos] == c {
		s.pos++
		return s.token(s.pos - 1), true
	}
	s.expect(s.pos, expectation)
	return nil, false
}

// quoted consumes a double-quoted string. A backslash takes the next
// character literally, whatever it is.
func (s *state) quoted() (*ast.Literal, bool) {
	start := s.pos
	if _, ok := s.char('"', expectQuote); !ok {
		return nil, false
	}
	var value strings.Builder
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '"':
			s.pos++
			return &ast.Literal{
				Value:  value.String(),
				Raw:    s.src[start:s.pos],
				Quoted: true,
				Loc:    ast.Span{Start: start, End: s.pos},
			}, true
		case c == '\\' && s.pos+1 < len(s.src):
			_, size := s.runeAt(s.pos + 1)
			value.WriteString(s.src[s.pos+1 : s.pos+1+size])
			s.pos += 1 + size
		case c == '\\':
			s.pos++
		default:
			value.WriteByte(c)
			s.pos++
		}
	}
	s.expect(s.pos, expectQuote)
	s.pos = start
	return nil, false
}

// literal consumes a quoted string or a bare word.
func (s *state) literal(allowKeywords bool) (*ast.Literal, bool) {
	if s.pos < len(s.src) && s.src[s.pos] == '"' {
		return s.quoted()
	}
	return s.word(allowKeywords)
}

func (s *state) token(start int) *ast.Token {
	return &ast.Token{Text: s.src[start:s.pos], Loc: ast.Span{Start: start, End: s.pos}}
}
