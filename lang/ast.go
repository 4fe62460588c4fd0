package lang

import (
	"iter"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/ardnew/sqfa/lang/token"
	"github.com/ardnew/sqfa/log"
)

// AST represents a parsed SQF source file.
type AST struct {
	Root   *Statement
	Macros *MacroTable
	opts   options    // configuration options
	logger log.Logger // structured logger (outside options, doesn't affect cache)
}

// Statements returns an iterator over the top-level statements.
func (ast *AST) Statements() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		if ast.Root == nil {
			return
		}

		for _, n := range ast.Root.Nodes {
			if !yield(n) {
				return
			}
		}
	}
}

// Node is an element of the syntax tree: a [Leaf], [Statement], [Array],
// [Code] or [Define].
type Node interface {
	// Position returns the location of the first meaningful token.
	Position() token.Position
	// String returns the source text of the node. Runs of tokens produced
	// by macro expansion are rendered as the macro call they replaced.
	String() string

	node()
}

// Leaf wraps a single token.
type Leaf struct {
	token.Token
}

// Position returns the token position.
func (l *Leaf) Position() token.Position { return l.Pos }

func (*Leaf) node() {}

// Ending is the separator that terminated a statement.
type Ending int

const (
	EndNone Ending = iota
	EndSemicolon
	EndComma
)

// String returns the separator text.
func (e Ending) String() string {
	switch e {
	case EndSemicolon:
		return ";"
	case EndComma:
		return ","
	default:
		return ""
	}
}

// Statement is an ordered sequence of nodes. Parenthesized statements wrap
// the statements found between "(" and ")".
type Statement struct {
	Nodes       []Node
	Ending      Ending
	Parenthesis bool
	Pos         token.Position

	brackets
	sep *token.Origin // expansion that produced the separator ending s
}

// Position returns the statement position.
func (s *Statement) Position() token.Position {
	if s.Pos.IsValid() {
		return s.Pos
	}

	if base := s.Base(); len(base) > 0 {
		return base[0].Position()
	}

	if len(s.Nodes) > 0 {
		return s.Nodes[0].Position()
	}

	return token.Position{}
}

// Base returns the nodes of s that are not trivia (whitespace, comments).
func (s *Statement) Base() []Node { return baseNodes(s.Nodes) }

// String returns the source text of the statement.
func (s *Statement) String() string {
	var w writer

	w.statement(s)

	return w.String()
}

func (*Statement) node() {}

// Array is a "[...]" literal.
type Array struct {
	Elements []*Statement
	Pos      token.Position

	brackets
	pad []Node // whitespace of an empty array
}

// Position returns the position of the opening bracket.
func (a *Array) Position() token.Position { return a.Pos }

// String returns the source text of the array.
func (a *Array) String() string {
	var w writer

	w.array(a)

	return w.String()
}

func (*Array) node() {}

// Code is a "{...}" block: a statement sequence that is evaluated only
// when called.
type Code struct {
	Statements []Node
	Pos        token.Position

	brackets
	hash uint64
}

// Position returns the position of the opening brace.
func (c *Code) Position() token.Position { return c.Pos }

// String returns the source text of the block.
func (c *Code) String() string {
	var w writer

	w.code(c)

	return w.String()
}

// Hash returns a structural hash of the kinds and texts of the block's
// tokens. Blocks with equal canonical text have equal hashes, regardless
// of position.
func (c *Code) Hash() uint64 {
	if c.hash != 0 {
		return c.hash
	}

	return hashCode(c)
}

func hashCode(c *Code) uint64 {
	h := xxh3.New()
	hashNode(h, c)

	return h.Sum64()
}

func (*Code) node() {}

// Define is the syntax tree echo of a "#define" line.
type Define struct {
	Directive token.Token
	Name      string
	Params    []string
	Function  bool // declared with a parameter list, possibly empty
	Malformed bool // parameter list is not closed
	Body      []token.Token
	Line      []token.Token // every token of the line, for rendering
}

// Position returns the position of the directive.
func (d *Define) Position() token.Position { return d.Directive.Pos }

// String returns the directive line.
func (d *Define) String() string {
	var sb strings.Builder

	for _, t := range d.Line {
		sb.WriteString(t.Text)
	}

	return sb.String()
}

func (*Define) node() {}

// brackets records the macro expansions, if any, that produced the opening
// and closing bracket of a container node.
type brackets struct {
	open, close *token.Origin
}

func baseNodes(nodes []Node) []Node {
	base := make([]Node, 0, len(nodes))

	for _, n := range nodes {
		if l, ok := n.(*Leaf); ok && l.Kind.Trivia() {
			continue
		}

		base = append(base, n)
	}

	return base
}

// writer renders nodes as source text, collapsing runs of expanded tokens
// into the call that produced them.
type writer struct {
	strings.Builder
	last *token.Origin
}

func (w *writer) text(origin *token.Origin, text string) {
	if origin == nil {
		w.last = nil
		w.WriteString(text)

		return
	}

	if origin != w.last {
		w.last = origin
		w.WriteString(origin.Call)
	}
}

func (w *writer) node(n Node) {
	switch n := n.(type) {
	case *Leaf:
		w.text(n.Origin, n.Text)
	case *Statement:
		w.statement(n)
	case *Array:
		w.array(n)
	case *Code:
		w.code(n)
	case *Define:
		w.text(nil, n.String())
	}
}

func (w *writer) statement(s *Statement) {
	if s.Parenthesis {
		w.text(s.open, "(")
	}

	for _, n := range s.Nodes {
		w.node(n)
	}

	if s.Parenthesis {
		w.text(s.close, ")")
	}

	if s.Ending != EndNone {
		w.text(s.sep, s.Ending.String())
	}
}

func (w *writer) array(a *Array) {
	w.text(a.open, "[")

	for _, n := range a.pad {
		w.node(n)
	}

	for i, e := range a.Elements {
		if i > 0 {
			w.text(a.Elements[i-1].sep, ",")
		}

		w.statement(e)
	}

	w.text(a.close, "]")
}

func (w *writer) code(c *Code) {
	w.text(c.open, "{")

	for _, n := range c.Statements {
		w.node(n)
	}

	w.text(c.close, "}")
}

// hashNode feeds the meaningful tokens of n into h.
func hashNode(h *xxh3.Hasher, n Node) {
	switch n := n.(type) {
	case *Leaf:
		if !n.Kind.Trivia() {
			_, _ = h.Write([]byte{byte(n.Kind)})
			_, _ = h.WriteString(n.Text)
			_, _ = h.Write([]byte{0})
		}
	case *Statement:
		if n.Parenthesis {
			_, _ = h.WriteString("(")
		}

		for _, c := range n.Nodes {
			hashNode(h, c)
		}

		if n.Parenthesis {
			_, _ = h.WriteString(")")
		}

		_, _ = h.WriteString(n.Ending.String())
	case *Array:
		_, _ = h.WriteString("[")

		for _, e := range n.Elements {
			hashNode(h, e)
			_, _ = h.WriteString(",")
		}

		_, _ = h.WriteString("]")
	case *Code:
		_, _ = h.WriteString("{")

		for _, s := range n.Statements {
			hashNode(h, s)
		}

		_, _ = h.WriteString("}")
	case *Define:
		for _, t := range n.Line {
			_, _ = h.WriteString(t.Text)
		}
	}
}
