package lang

import (
	"iter"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/sqfa/lang/lexer"
	"github.com/ardnew/sqfa/lang/token"
)

// Macro is a preprocessor definition.
type Macro struct {
	Name     string
	Params   []string
	Function bool // invoked with a parenthesized argument list
	Body     []token.Token
	Pos      token.Position
}

// Arity returns the number of parameters.
func (m *Macro) Arity() int { return len(m.Params) }

// expand substitutes args into the body. The result is positioned at the
// call and tagged with origin; argument tokens keep their own positions.
func (m *Macro) expand(
	args [][]token.Token,
	at token.Position,
	origin *token.Origin,
	depth int,
) []token.Token {
	out := make([]token.Token, 0, len(m.Body))

	for _, t := range m.Body {
		if i := m.param(t); i >= 0 {
			for _, a := range args[i] {
				a.Origin = origin
				a.Depth = depth
				out = append(out, a)
			}

			continue
		}

		t.Pos = at
		t.Origin = origin
		t.Depth = depth
		out = append(out, t)
	}

	return out
}

// param returns the index of the parameter named by t, or -1.
func (m *Macro) param(t token.Token) int {
	if t.Kind != token.Variable && t.Kind != token.Keyword {
		return -1
	}

	for i, p := range m.Params {
		if p == t.Text {
			return i
		}
	}

	return -1
}

type macroKey struct {
	name     string
	arity    int
	function bool
}

// MacroTable maps (name, arity, form) to macro definitions. "F" and
// "F()" are distinct definitions.
type MacroTable struct {
	defs  map[macroKey]*Macro
	names map[string]int
	order []macroKey
}

// NewMacroTable returns an empty table.
func NewMacroTable() *MacroTable {
	return &MacroTable{
		defs:  make(map[macroKey]*Macro),
		names: make(map[string]int),
	}
}

// Define records m, replacing any definition with the same name, arity
// and form.
func (mt *MacroTable) Define(m *Macro) {
	key := macroKey{m.Name, m.Arity(), m.Function}
	if _, ok := mt.defs[key]; !ok {
		mt.order = append(mt.order, key)
		mt.names[m.Name]++
	}

	mt.defs[key] = m
}

// Lookup returns the macro with the given name and arity. Function
// selects definitions declared with a parameter list.
func (mt *MacroTable) Lookup(name string, arity int, function bool) (*Macro, bool) {
	if mt == nil {
		return nil, false
	}

	m, ok := mt.defs[macroKey{name, arity, function}]

	return m, ok
}

// Has reports whether any macro is named name.
func (mt *MacroTable) Has(name string) bool {
	return mt != nil && mt.names[name] > 0
}

// Len returns the number of definitions.
func (mt *MacroTable) Len() int {
	if mt == nil {
		return 0
	}

	return len(mt.order)
}

// All returns an iterator over the definitions in the order they were
// first defined.
func (mt *MacroTable) All() iter.Seq[*Macro] {
	return func(yield func(*Macro) bool) {
		if mt == nil {
			return
		}

		for _, key := range mt.order {
			if !yield(mt.defs[key]) {
				return
			}
		}
	}
}

// clone returns a shallow copy; definitions are immutable once recorded.
func (mt *MacroTable) clone() *MacroTable {
	c := NewMacroTable()
	if mt == nil {
		return c
	}

	for m := range mt.All() {
		c.Define(m)
	}

	return c
}

// ParseDefine parses a command line definition of the form "NAME",
// "NAME=body" or "NAME(a,b)=body".
func ParseDefine(def string, kw *token.Keywords) (*Macro, error) {
	head, body, _ := strings.Cut(def, "=")

	toks, err := lexer.Tokenize("#define "+head+" "+body, kw)
	if err != nil {
		return nil, ErrMacroSyntax.Wrap(err).With(slog.String("define", def))
	}

	d := scanDefine(toks, 0)
	if d.Name == "" || d.Malformed {
		return nil, ErrMacroSyntax.Detail(def)
	}

	return d.macro(), nil
}

func (d *Define) macro() *Macro {
	return &Macro{
		Name:     d.Name,
		Params:   d.Params,
		Function: d.Function,
		Body:     d.Body,
		Pos:      d.Directive.Pos,
	}
}

// endsDirective reports whether t terminates a directive line.
func endsDirective(t token.Token) bool {
	switch t.Kind {
	case token.EndOfLine, token.EndOfFile:
		return true
	case token.Comment:
		return strings.HasSuffix(t.Text, "\n")
	default:
		return false
	}
}

// scanDefine reads the "#define" line starting at toks[i]. The returned
// Define's Line holds every token up to and including the terminating
// newline or line comment (but not end of file).
func scanDefine(toks []token.Token, i int) *Define {
	d := &Define{Directive: toks[i]}

	end := i + 1
	for end < len(toks) && !endsDirective(toks[end]) {
		end++
	}

	if end < len(toks) && toks[end].Kind != token.EndOfFile {
		d.Line = append(d.Line, toks[i:end+1]...)
	} else {
		d.Line = append(d.Line, toks[i:end]...)
	}

	rest := toks[i+1 : end]

	j := skipTrivia(rest, 0)
	if j >= len(rest) || !isWord(rest[j]) {
		return d
	}

	d.Name = rest[j].Text
	j++

	if j < len(rest) && rest[j].Text == "(" {
		d.Function = true
		d.Malformed = true

		for j++; j < len(rest); j++ {
			t := rest[j]
			if t.Text == ")" {
				d.Malformed = false
				j++

				break
			}

			if isWord(t) {
				d.Params = append(d.Params, t.Text)
			}
		}
	}

	d.Body = slices.Clone(trimTrivia(rest[j:]))

	return d
}

func isWord(t token.Token) bool {
	switch t.Kind {
	case token.Variable, token.Keyword, token.Boolean, token.Namespace:
		return len(t.Text) > 0 && !token.IsStructural(t.Text) &&
			(t.Text[0] == '_' || isLetter(t.Text[0]))
	default:
		return false
	}
}

func isLetter(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func skipTrivia(toks []token.Token, i int) int {
	for i < len(toks) && toks[i].Kind.Trivia() {
		i++
	}

	return i
}

func trimTrivia(toks []token.Token) []token.Token {
	lo, hi := 0, len(toks)

	for lo < hi && toks[lo].Kind.Trivia() {
		lo++
	}

	for hi > lo && toks[hi-1].Kind.Trivia() {
		hi--
	}

	return toks[lo:hi:hi]
}
