// Package ast defines the syntax tree of the query language and the generic
// transformations applied to it.
//
// The parser produces a concrete syntax tree (CST) that retains every
// decorative token and the byte span of each node in the original input, so
// Source(cst) reproduces the query text. Reduce turns a CST into the minimal
// abstract syntax tree consumed by the schema engine:
//
//	cst, _ := parser.New().Parse(`a:(b or c) not d`)
//	tree := ast.Reduce(cst.Root)
//	fmt.Println(ast.Format(tree))
//	// And(Group(Or(Term(a:b), Term(a:c))), Not(Term(d)))
//
// # Node variants
//
// And and Or are binary; chains are right-leaning. Not and Group wrap a single
// expression. Term holds an optional field, operator and value. Literal is
// atomic text and Token is a decorative leaf.
//
// # Transformations
//
// Every pass is written on top of Fold, which rebuilds nodes from their
// children without knowing the shape of each variant:
//
//   - Remap: move spans from repaired-text coordinates back to the input
//   - CollapseIncomplete: drop holes left by permissive parsing
//   - DistributeGroups: expand parenthesized fields and values into terms
//   - StripTokens: remove decorative tokens
//   - RemoveGroups: replace groups by their contents
package ast
