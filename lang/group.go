package lang

import (
	"github.com/ardnew/sqfa/lang/token"
)

// group arranges a run of nodes into a binary expression tree. Each split
// yields at most three base nodes per level: "lhs op rhs" or "op rhs",
// where lhs and rhs are either a single node or a nested [Statement].
//
// Assignment binds loosest. Then binary keywords split at the last
// occurrence of the lowest priority present, so equal priorities associate
// to the left. A leading unary keyword binds to everything after it.
func group(nodes []Node, kw *token.Keywords) []Node {
	idx := baseIndex(nodes)
	if len(idx) < 3 {
		return nodes
	}

	for _, i := range idx[1:] {
		if isKeyword(nodes[i], "=") {
			return split(nodes, i, kw)
		}
	}

	at, lowest := -1, 0

	for k := 1; k < len(idx); k++ {
		i := idx[k]

		l, ok := nodes[i].(*Leaf)
		if !ok || l.Kind != token.Keyword ||
			kw.Arity(l.Text)&token.Binary == 0 ||
			!isOperand(nodes[idx[k-1]], kw) {
			continue
		}

		if p := token.Priority(l.Text); at < 0 || p <= lowest {
			at, lowest = i, p
		}
	}

	if at >= 0 {
		return split(nodes, at, kw)
	}

	first := idx[0]
	if l, ok := nodes[first].(*Leaf); ok && l.Kind == token.Keyword &&
		kw.Arity(l.Text)&token.Unary != 0 {
		out := append([]Node{}, nodes[:first+1]...)

		return append(out, wrap(nodes[first+1:], kw)...)
	}

	return nodes
}

// split groups nodes around the operator at index i.
func split(nodes []Node, i int, kw *token.Keywords) []Node {
	out := wrap(nodes[:i], kw)
	out = append(out, nodes[i])

	return append(out, wrap(nodes[i+1:], kw)...)
}

// wrap returns nodes unchanged when they hold at most one base node, else
// a single statement holding their grouping.
func wrap(nodes []Node, kw *token.Keywords) []Node {
	if len(baseIndex(nodes)) <= 1 {
		return append([]Node{}, nodes...)
	}

	return []Node{&Statement{Nodes: group(nodes, kw)}}
}

// isOperand reports whether n can be the left operand of a binary keyword.
func isOperand(n Node, kw *token.Keywords) bool {
	l, ok := n.(*Leaf)
	if !ok || l.Kind != token.Keyword {
		return true
	}

	return kw.Arity(l.Text)&token.Nular != 0
}

func isKeyword(n Node, word string) bool {
	l, ok := n.(*Leaf)

	return ok && l.Is(word)
}

func baseIndex(nodes []Node) []int {
	idx := make([]int, 0, len(nodes))

	for i, n := range nodes {
		if l, ok := n.(*Leaf); ok && l.Kind.Trivia() {
			continue
		}

		idx = append(idx, i)
	}

	return idx
}
