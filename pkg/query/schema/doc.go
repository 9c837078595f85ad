// Package schema validates parsed queries and computes operations over them.
//
// A Schema combines a parser, a field vocabulary and a list of operations.
// Parse resolves every term of the query through the vocabulary, then
// computes each operation bottom-up for every node of the AST:
//
//	s, _ := schema.New(schema.WithVocabulary(vocab))
//	res := s.Parse(`title:go and not draft=true`)
//	if !res.Status {
//		return res.Err()
//	}
//	fmt.Println(res.Operations.Describe())
//	ok := res.Operations.Match(record)
//
// Describe and PredicateOp are registered by default. Custom operations
// implement Operation, or use FuncOperation for per-kind closures.
//
// In strict mode (the default) any rejected term fails the query. With
// WithIgnoreInvalid(true) rejected terms are pruned and the remaining
// expression is evaluated; the errors are still reported.
package schema
