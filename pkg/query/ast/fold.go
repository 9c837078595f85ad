package ast

// FoldFunc transforms a single node during Fold. Calling visit(m) returns m
// rebuilt from its folded children; a FoldFunc that never calls visit prunes
// the traversal below that node. Returning nil removes the node.
type FoldFunc func(n Node, visit func(Node) Node) Node

// Fold applies fn to every node of the tree rooted at n. Absent children are
// kept absent and are not passed to fn.
func Fold(n Node, fn FoldFunc) Node {
	if n == nil {
		return nil
	}
	var visit func(Node) Node
	visit = func(m Node) Node {
		if m == nil {
			return nil
		}
		children := m.Children()
		if len(children) == 0 {
			return m
		}
		folded := make([]Node, len(children))
		for i, c := range children {
			folded[i] = Fold(c, fn)
		}
		return WithChildren(m, folded)
	}
	return fn(n, visit)
}

// PostOrder is a convenience over Fold for bottom-up rewrites: fn receives each
// node after its children have been folded.
func PostOrder(n Node, fn func(Node) Node) Node {
	return Fold(n, func(m Node, visit func(Node) Node) Node {
		m = visit(m)
		if m == nil {
			return nil
		}
		return fn(m)
	})
}

// Walk calls fn for every node in pre-order. Returning false skips the
// node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, fn)
	}
}

// Depth returns the height of the tree, counting only non-leaf nodes.
func Depth(n Node) int {
	if n == nil {
		return 0
	}
	children := n.Children()
	if len(children) == 0 {
		return 0
	}
	deepest := 0
	for _, c := range children {
		if d := Depth(c); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}
