// Package parser turns query text into a concrete syntax tree.
//
// Parsing happens in three steps. Delimiter repair scans the input once and
// adds synthetic opening parentheses in front and closing quotes and
// parentheses behind, so the grammar always sees balanced text. The grammar
// is a recursive-descent parser with lexing fused in; its precedence ladder
// is, from tightest to loosest:
//
//	term / group  <  not  <  and (or juxtaposition)  <  or
//
// with both binary operators right-associative. Finally the tree's spans are
// mapped back from the repaired text into the original input, dropping and
// clipping synthetic nodes.
//
// Nesting of groups and negations is limited by WithMaxDepth, and the number
// of and/or operators by WithMaxOperators. Either limit turns an oversized
// query into a syntax error.
//
// The grammar is permissive: "foo and", "and bar", ":value" or a lone ">"
// all parse. Incomplete nodes stay in the CST and are removed by ast.Reduce.
//
// # Usage
//
//	p := parser.New()
//	cst, err := p.Parse(`title:"go" (tag:cli or tag:web) not draft`)
//	if err != nil {
//	    var syntaxErr *errors.SyntaxError
//	    // ...
//	}
//	tree := cst.AST()
//
// Parsers are immutable and may be shared between goroutines.
package parser
