package ast

// Remap moves a tree parsed from prefix+input+suffix back into input
// coordinates. Nodes lying wholly inside the synthetic prefix or suffix are
// dropped and nodes reaching into the suffix are clipped to inputLen.
func Remap(n Node, prefixLen, inputLen int) Node {
	return Fold(n, func(m Node, visit func(Node) Node) Node {
		s := m.Span()
		if s.End <= prefixLen && s.Start < prefixLen {
			return nil
		}
		start, end := s.Start-prefixLen, s.End-prefixLen
		if start < 0 {
			start = 0
		}
		if start >= inputLen && end > inputLen {
			return nil
		}
		if end > inputLen {
			end = inputLen
		}
		rebuilt := visit(m)
		return WithSpan(rebuilt, Span{Start: start, End: end})
	})
}

// CollapseIncomplete removes the holes left by permissive parsing: a binary
// node missing an operand becomes the other operand, and a Not, Group or
// Term with nothing inside disappears.
func CollapseIncomplete(n Node) Node {
	return PostOrder(n, func(m Node) Node {
		switch v := m.(type) {
		case *And:
			return collapseBinary(m, v.Left, v.Right)
		case *Or:
			return collapseBinary(m, v.Left, v.Right)
		case *Not:
			if v.Expr == nil {
				return nil
			}
		case *Group:
			if v.Expr == nil {
				return nil
			}
		case *Term:
			if v.IsEmpty() {
				return nil
			}
		}
		return m
	})
}

func collapseBinary(n, left, right Node) Node {
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

// DistributeGroups rewrites terms whose field or value is a parenthesized
// expression into the equivalent expression of simple terms:
//
//	a:(b or c)   =>  (a:b or a:c)
//	(a b):c      =>  (a:c and b:c)
//
// Value groups are distributed before field groups. Only groups made up of
// bare values are distributed; anything else is left for validation to
// reject.
func DistributeGroups(n Node) Node {
	return PostOrder(n, func(m Node) Node {
		if t, ok := m.(*Term); ok {
			return distribute(t)
		}
		return m
	})
}

func distribute(t *Term) Node {
	if g, ok := t.Value.(*Group); ok && onlyBareTerms(g) {
		return replaceBare(g, func(leaf *Term) Node {
			return distribute(&Term{Field: t.Field, Operator: t.Operator, Value: leaf.Value, Loc: leaf.Loc})
		})
	}
	if g, ok := t.Field.(*Group); ok && onlyBareTerms(g) {
		return replaceBare(g, func(leaf *Term) Node {
			return &Term{Field: leaf.Value, Operator: t.Operator, Value: t.Value, Loc: leaf.Loc}
		})
	}
	return t
}

func onlyBareTerms(n Node) bool {
	bare := true
	Walk(n, func(m Node) bool {
		if t, ok := m.(*Term); ok {
			if !t.IsBare() {
				bare = false
			}
			return false
		}
		return bare
	})
	return bare
}

func replaceBare(n Node, fn func(*Term) Node) Node {
	return Fold(n, func(m Node, visit func(Node) Node) Node {
		if t, ok := m.(*Term); ok && t.IsBare() {
			return fn(t)
		}
		return visit(m)
	})
}

// StripTokens drops decorative tokens. Term operators are kept.
func StripTokens(n Node) Node {
	return PostOrder(n, func(m Node) Node {
		switch v := m.(type) {
		case *And:
			return &And{Left: v.Left, Right: v.Right, Loc: v.Loc}
		case *Or:
			return &Or{Left: v.Left, Right: v.Right, Loc: v.Loc}
		case *Not:
			return &Not{Expr: v.Expr, Loc: v.Loc}
		case *Group:
			return &Group{Expr: v.Expr, Loc: v.Loc}
		}
		return m
	})
}

// RemoveGroups replaces every group by its contents.
func RemoveGroups(n Node) Node {
	return PostOrder(n, func(m Node) Node {
		if g, ok := m.(*Group); ok {
			return g.Expr
		}
		return m
	})
}

// Reduce turns a CST into the minimal AST used for evaluation.
func Reduce(n Node) Node {
	return StripTokens(DistributeGroups(CollapseIncomplete(n)))
}
