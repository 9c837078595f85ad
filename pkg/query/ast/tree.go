package ast

// Tree is a plain view of a node for JSON and YAML output. Decorative
// tokens are dropped; operand slots keep their order, with nil for absent
// operands.
type Tree struct {
	Kind     Kind    `json:"kind" yaml:"kind"`
	Start    int     `json:"start" yaml:"start"`
	End      int     `json:"end" yaml:"end"`
	Text     string  `json:"text,omitempty" yaml:"text,omitempty"`
	Quoted   bool    `json:"quoted,omitempty" yaml:"quoted,omitempty"`
	Field    *Tree   `json:"field,omitempty" yaml:"field,omitempty"`
	Operator string  `json:"operator,omitempty" yaml:"operator,omitempty"`
	Value    *Tree   `json:"value,omitempty" yaml:"value,omitempty"`
	Operands []*Tree `json:"operands,omitempty" yaml:"operands,omitempty"`
}

// ToTree converts n. It returns nil for a nil node.
func ToTree(n Node) *Tree {
	if n == nil {
		return nil
	}
	t := &Tree{Kind: n.Kind(), Start: n.Span().Start, End: n.Span().End}

	switch v := n.(type) {
	case *Literal:
		t.Text = v.Value
		t.Quoted = v.Quoted
	case *Token:
		t.Text = v.Text
	case *Term:
		t.Field = ToTree(v.Field)
		if v.Operator != nil {
			t.Operator = v.Operator.Text
		}
		t.Value = ToTree(v.Value)
	case *And:
		t.Operands = []*Tree{ToTree(v.Left), ToTree(v.Right)}
	case *Or:
		t.Operands = []*Tree{ToTree(v.Left), ToTree(v.Right)}
	case *Not:
		t.Operands = []*Tree{ToTree(v.Expr)}
	case *Group:
		t.Operands = []*Tree{ToTree(v.Expr)}
	}
	return t
}
