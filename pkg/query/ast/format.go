package ast

import "strings"

// Format renders a tree in a compact functional notation, for example
// Or(Term(a), And(Term(b), Term(c))). Absent nodes render as "nil".
func Format(n Node) string {
	var sb strings.Builder
	format(&sb, n)
	return sb.String()
}

func format(sb *strings.Builder, n Node) {
	switch v := n.(type) {
	case nil:
		sb.WriteString("nil")
	case *And:
		formatCall(sb, "And", v.Left, v.Right)
	case *Or:
		formatCall(sb, "Or", v.Left, v.Right)
	case *Not:
		formatCall(sb, "Not", v.Expr)
	case *Group:
		if v.Expr == nil {
			sb.WriteString("Group()")
			return
		}
		formatCall(sb, "Group", v.Expr)
	case *Term:
		sb.WriteString("Term(")
		bare := v.Operator == nil
		formatOperand(sb, v.Field, bare)
		if v.Operator != nil {
			sb.WriteString(v.Operator.Text)
		}
		formatOperand(sb, v.Value, bare)
		sb.WriteString(")")
	case *Literal:
		sb.WriteString("Literal(")
		formatOperand(sb, v, true)
		sb.WriteString(")")
	case *Token:
		sb.WriteString("Token(")
		sb.WriteString(quote(v.Text))
		sb.WriteString(")")
	}
}

func formatCall(sb *strings.Builder, name string, args ...Node) {
	sb.WriteString(name)
	sb.WriteString("(")
	for i, a := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		format(sb, a)
	}
	sb.WriteString(")")
}

func formatOperand(sb *strings.Builder, n Node, bare bool) {
	switch v := n.(type) {
	case nil:
	case *Literal:
		if v.Quoted || needsQuotes(v.Value, bare) {
			sb.WriteString(quote(v.Value))
		} else {
			sb.WriteString(v.Value)
		}
	default:
		format(sb, n)
	}
}

// quote renders s as a query string literal.
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	sb.WriteByte('"')
	return sb.String()
}

// needsQuotes reports whether s must be quoted to read back as one literal.
// Keywords are only ambiguous in a term without an operator.
func needsQuotes(s string, bare bool) bool {
	if s == "" {
		return true
	}
	switch s {
	case "and", "or", "not":
		return bare
	}
	return strings.ContainsAny(s, ":<>=\"() \t\r\n\f\v")
}

// Source reconstructs query text from a tree by concatenating its leaves.
// For a CST this yields the original input without surrounding whitespace.
func Source(n Node) string {
	var sb strings.Builder
	Walk(n, func(m Node) bool {
		switch v := m.(type) {
		case *Token:
			sb.WriteString(v.Text)
		case *Literal:
			sb.WriteString(v.Raw)
		}
		return true
	})
	return sb.String()
}

// String renders a reduced tree back into query syntax. Unlike Source it
// does not depend on decorative tokens, so it also works on ASTs.
func String(n Node) string {
	var sb strings.Builder
	unparse(&sb, n)
	return sb.String()
}

func unparse(sb *strings.Builder, n Node) {
	switch v := n.(type) {
	case *And:
		unparse(sb, v.Left)
		if v.Keyword != nil {
			sb.WriteString(" and ")
		} else {
			sb.WriteString(" ")
		}
		unparse(sb, v.Right)
	case *Or:
		unparse(sb, v.Left)
		sb.WriteString(" or ")
		unparse(sb, v.Right)
	case *Not:
		sb.WriteString("not ")
		unparse(sb, v.Expr)
	case *Group:
		sb.WriteString("(")
		unparse(sb, v.Expr)
		sb.WriteString(")")
	case *Term:
		bare := v.Operator == nil
		unparseOperand(sb, v.Field, bare)
		if v.Operator != nil {
			sb.WriteString(v.Operator.Text)
		}
		unparseOperand(sb, v.Value, bare)
	case *Literal:
		unparseOperand(sb, v, true)
	}
}

func unparseOperand(sb *strings.Builder, n Node, bare bool) {
	if lit, ok := n.(*Literal); ok {
		if needsQuotes(lit.Value, bare) {
			sb.WriteString(quote(lit.Value))
		} else {
			sb.WriteString(lit.Value)
		}
		return
	}
	unparse(sb, n)
}
