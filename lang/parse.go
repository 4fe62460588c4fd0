package lang

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/ardnew/sqfa/lang/lexer"
	"github.com/ardnew/sqfa/lang/token"
	"github.com/ardnew/sqfa/log"
)

// Bracket kinds, used as depth counter keys alongside directive names.
const (
	kindArray = "[]"
	kindParen = "()"
	kindCode  = "{}"
)

var (
	opening = map[string]string{"[": kindArray, "(": kindParen, "{": kindCode}
	closing = map[string]string{"]": kindArray, ")": kindParen, "}": kindCode}
)

// ParseString parses SQF source text.
func ParseString(ctx context.Context, src string, opts ...Option) (*AST, error) {
	ast := new(AST)

	applyDefaults(ast)
	applyOptions(ast, opts...)

	ast.logger.TraceContext(ctx, "parse start",
		slog.Int("source_length", len(src)))

	toks, err := lexer.Tokenize(src, ast.opts.keywords)
	if err != nil {
		var lexErr *lexer.Error
		if errors.As(err, &lexErr) {
			return nil, ErrUnterminated.WithPosition(lexErr.Pos).
				Detail(lexErr.Msg)
		}

		return nil, ErrParse.Wrap(err)
	}

	ast.logger.TraceContext(ctx, "tokenized", slog.Int("token_count", len(toks)))

	root, macros, _, err := parseTokens(toks, ast.opts, ast.logger)
	if err != nil {
		return nil, err
	}

	ast.Root = root
	ast.Macros = macros

	ast.logger.TraceContext(ctx, "parse complete",
		slog.Int("statement_count", len(root.Nodes)),
		slog.Int("macro_count", macros.Len()))

	return ast, nil
}

// ParseTokens parses a token stream into a root statement. It returns the
// number of input tokens consumed, which excludes the final EndOfFile.
func ParseTokens(toks []token.Token, opts ...Option) (*Statement, int, error) {
	ast := new(AST)

	applyDefaults(ast)
	applyOptions(ast, opts...)

	if n := len(toks); n == 0 || toks[n-1].Kind != token.EndOfFile {
		var end token.Position
		if n > 0 {
			end = toks[n-1].Pos
		}

		toks = append(slices.Clip(toks), token.Token{Kind: token.EndOfFile, Pos: end})
	}

	root, _, consumed, err := parseTokens(toks, ast.opts, ast.logger)

	return root, consumed, err
}

func parseTokens(
	toks []token.Token,
	opts options,
	logger log.Logger,
) (*Statement, *MacroTable, int, error) {
	p := &parser{
		tokens:       slices.Clone(toks),
		macros:       opts.macros.clone(),
		keywords:     opts.keywords,
		maxExpansion: opts.maxExpansion,
		depth:        make(map[string]int),
		logger:       logger,
	}

	nodes, err := p.block(frame{})
	if err != nil {
		return nil, nil, 0, err
	}

	for kind, n := range p.depth {
		if n != 0 {
			return nil, nil, 0, ErrUnclosed.Detail(
				"unbalanced " + strconv.Quote(kind))
		}
	}

	return &Statement{Nodes: nodes}, p.macros, p.pos - p.grown, nil
}

// parser holds the block parser state. Macro expansion splices tokens into
// tokens in place, so pos always indexes the expanded stream; grown tracks
// how many tokens expansion added.
type parser struct {
	tokens       []token.Token
	pos          int
	grown        int
	macros       *MacroTable
	keywords     *token.Keywords
	maxExpansion int
	depth        map[string]int
	logger       log.Logger
}

// frame describes the construct a block call is parsing.
type frame struct {
	open token.Token // bracket or directive token; zero at the root
	kind string      // bracket kind, lowercased directive, or "" at the root
}

func (f frame) directive() bool { return strings.HasPrefix(f.kind, "#") }

// block parses until the end of the construct described by f and returns
// its statements. Array elements are returned as one statement per
// element; directive lines return the raw nodes of the line.
func (p *parser) block(f frame) ([]Node, error) {
	var (
		run   []Node
		stmts []Node
		elems []Node
	)

	finish := func(ending Ending, sep *token.Origin) {
		if len(run) > 0 || ending != EndNone {
			s := p.statement(run, ending)
			s.sep = sep
			stmts = append(stmts, s)
		}

		run = nil
	}

	for {
		t := p.tokens[p.pos]

		switch {
		case f.directive() && endsDirective(t):
			if t.Kind != token.EndOfFile {
				run = append(run, &Leaf{t})
				p.pos++
			}

			return run, nil

		case t.Kind == token.EndOfFile:
			if f.kind != "" {
				return nil, ErrUnclosed.WithPosition(f.open.Pos).
					Detail(`Parenthesis "` + f.open.Text + `" not closed`)
			}

			finish(EndNone, nil)

			return stmts, nil

		case t.Kind == token.Keyword && opening[t.Text] != "":
			node, err := p.bracket(t)
			if err != nil {
				return nil, err
			}

			run = append(run, node)

		case t.Kind == token.Keyword && closing[t.Text] != "":
			kind := closing[t.Text]
			if p.depth[kind] == 0 {
				return nil, ErrUnexpectedClose.WithPosition(t.Pos).
					Detail(`Trying to close "` + t.Text + `" without opened "` +
						kind[:1] + `"`)
			}

			if f.kind != kind {
				want := "end of line"
				if want2, ok := closerOf(f.kind); ok {
					want = strconv.Quote(want2)
				}

				return nil, ErrUnexpectedClose.WithPosition(t.Pos).
					Detail("unexpected " + strconv.Quote(t.Text) +
						" (expected " + want + ")")
			}

			if f.kind == kindArray {
				if len(elems) == 0 && len(baseIndex(run)) == 0 {
					return run, nil
				}

				elem, err := p.element(run, t)
				if err != nil {
					return nil, err
				}

				return append(elems, elem), nil
			}

			finish(EndNone, nil)

			return stmts, nil

		case t.Kind == token.Preprocessor && !f.directive():
			finish(EndNone, nil)

			node, err := p.directive(t)
			if err != nil {
				return nil, err
			}

			stmts = append(stmts, node)

			continue

		case t.Is(";") && !f.directive():
			if f.kind == kindArray {
				return nil, ErrArrayStatement.WithPosition(t.Pos).
					Detail("A statement " + strconv.Quote(nodesString(run)) +
						" cannot be in an array")
			}

			p.pos++
			finish(EndSemicolon, t.Origin)

			continue

		case t.Is(",") && !f.directive():
			p.pos++

			if f.kind == kindArray {
				elem, err := p.element(run, t)
				if err != nil {
					return nil, err
				}

				elem.sep = t.Origin
				elems = append(elems, elem)
				run = nil

				continue
			}

			finish(EndComma, t.Origin)

			continue

		case !f.directive() && isWord(t):
			expanded, err := p.expand()
			if err != nil {
				return nil, err
			}

			if expanded {
				continue
			}

			run = append(run, &Leaf{t})

		default:
			run = append(run, &Leaf{t})
		}

		p.pos++
	}
}

// bracket parses the construct opened by t and leaves pos on its closer.
func (p *parser) bracket(t token.Token) (Node, error) {
	kind := opening[t.Text]

	p.pos++
	p.depth[kind]++

	nodes, err := p.block(frame{open: t, kind: kind})
	if err != nil {
		return nil, err
	}

	p.depth[kind]--

	marks := brackets{open: t.Origin, close: p.tokens[p.pos].Origin}

	switch kind {
	case kindArray:
		arr := &Array{Pos: t.Pos, brackets: marks}
		for _, n := range nodes {
			if s, ok := n.(*Statement); ok {
				arr.Elements = append(arr.Elements, s)
			} else {
				arr.pad = append(arr.pad, n)
			}
		}

		return arr, nil

	case kindParen:
		return &Statement{
			Nodes:       nodes,
			Parenthesis: true,
			Pos:         t.Pos,
			brackets:    marks,
		}, nil

	default:
		code := &Code{Statements: nodes, Pos: t.Pos, brackets: marks}
		code.hash = hashCode(code)

		return code, nil
	}
}

// directive parses a preprocessor line starting at the current token.
func (p *parser) directive(t token.Token) (Node, error) {
	if t.Is("#define") {
		def := scanDefine(p.tokens, p.pos)
		p.pos += len(def.Line)

		if def.Name != "" && !def.Malformed {
			p.macros.Define(def.macro())

			p.logger.Trace("macro defined",
				slog.String("name", def.Name),
				slog.Int("arity", len(def.Params)))
		}

		return def, nil
	}

	kind := strings.ToLower(t.Text)

	p.pos++
	p.depth[kind]++

	nodes, err := p.block(frame{open: t, kind: kind})
	if err != nil {
		return nil, err
	}

	p.depth[kind]--

	return &Statement{Nodes: append([]Node{&Leaf{t}}, nodes...)}, nil
}

// element converts the nodes of one array element into a statement. The
// separator sep locates the error for an empty element.
func (p *parser) element(run []Node, sep token.Token) (*Statement, error) {
	if len(baseIndex(run)) == 0 {
		return nil, ErrEmptyElement.WithPosition(sep.Pos)
	}

	return p.statement(run, EndNone), nil
}

// statement groups a run of nodes into a statement.
func (p *parser) statement(run []Node, ending Ending) *Statement {
	return &Statement{Nodes: group(run, p.keywords), Ending: ending}
}

// expand replaces a macro call at the current position with its
// expansion. It reports false when the token does not name a macro.
func (p *parser) expand() (bool, error) {
	t := p.tokens[p.pos]
	if !p.macros.Has(t.Text) {
		return false, nil
	}

	var (
		m    *Macro
		args [][]token.Token
		end  = p.pos + 1
	)

	if a, next, ok := p.arguments(p.pos + 1); ok {
		if fm, found := p.macros.Lookup(t.Text, len(a), true); found {
			m, args, end = fm, a, next
		}
	}

	if m == nil {
		om, found := p.macros.Lookup(t.Text, 0, false)
		if !found {
			return false, nil
		}

		m = om
	}

	if t.Depth >= p.maxExpansion {
		at := t.Pos
		if t.Origin != nil {
			at = t.Origin.Pos
		}

		return false, ErrMacroDepth.WithPosition(at).
			Detail(strconv.Quote(m.Name)).
			With(slog.Int("limit", p.maxExpansion))
	}

	origin := t.Origin
	if origin == nil {
		origin = &token.Origin{
			Macro: m.Name,
			Call:  tokensString(p.tokens[p.pos:end]),
			Pos:   t.Pos,
		}
	}

	out := m.expand(args, t.Pos, origin, t.Depth+1)

	p.tokens = slices.Replace(p.tokens, p.pos, end, out...)
	p.grown += len(out) - (end - p.pos)

	return true, nil
}

// arguments reads a parenthesized argument list starting at toks[i]. It
// returns the trimmed arguments and the index following ")". An empty
// list "()" has no arguments.
func (p *parser) arguments(i int) ([][]token.Token, int, bool) {
	if i >= len(p.tokens) || p.tokens[i].Text != "(" ||
		p.tokens[i].Kind != token.Keyword {
		return nil, 0, false
	}

	var (
		args  [][]token.Token
		start = i + 1
		depth = 0
	)

	for j := start; j < len(p.tokens); j++ {
		t := p.tokens[j]
		if t.Kind == token.EndOfFile {
			return nil, 0, false
		}

		if t.Kind != token.Keyword {
			continue
		}

		switch {
		case opening[t.Text] != "":
			depth++
		case t.Text == ")" && depth == 0:
			last := trimTrivia(p.tokens[start:j])
			if len(args) > 0 || len(last) > 0 {
				args = append(args, slices.Clone(last))
			}

			return args, j + 1, true
		case closing[t.Text] != "":
			depth--
		case t.Text == "," && depth == 0:
			args = append(args, slices.Clone(trimTrivia(p.tokens[start:j])))
			start = j + 1
		}
	}

	return nil, 0, false
}

func closerOf(kind string) (string, bool) {
	for c, k := range closing {
		if k == kind {
			return c, true
		}
	}

	return "", false
}

func tokensString(toks []token.Token) string {
	var sb strings.Builder

	for _, t := range toks {
		sb.WriteString(t.Text)
	}

	return sb.String()
}

func nodesString(nodes []Node) string {
	var w writer

	for _, n := range nodes {
		w.node(n)
	}

	return strings.TrimSpace(w.String())
}
