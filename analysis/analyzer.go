package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"unicode"

	"github.com/ardnew/sqfa/lang"
	"github.com/ardnew/sqfa/lang/token"
	"github.com/ardnew/sqfa/log"
)

// Analyzer evaluates a syntax tree over symbolic types and collects
// diagnostics. An Analyzer is not safe for concurrent use.
type Analyzer struct {
	db       *Database
	keywords *token.Keywords
	opts     options
	logger   log.Logger

	namespaces *Namespaces
	current    *Namespace
	diags      []Diagnostic
	defines    map[string]*lang.Define
	expanding  map[string]bool
	privates   []*Value // private declarations awaiting assignment
	helpers    []*Value // helper values awaiting a consumer
	unexecuted map[uint64]*Value
	pending    []uint64 // unexecuted in the order first seen
	executed   map[uint64]bool
	depth      int
}

// New returns an analyzer using db. A nil db uses [DefaultDatabase].
func New(db *Database, opts ...Option) *Analyzer {
	if db == nil {
		db = DefaultDatabase()
	}

	a := &Analyzer{db: db, keywords: db.Keywords()}

	applyDefaults(a)
	applyOptions(a, opts...)
	a.reset()

	return a
}

func (a *Analyzer) reset() {
	a.namespaces = NewNamespaces()
	a.current = a.namespaces.Get(DefaultNamespace)
	a.diags = nil
	a.defines = make(map[string]*lang.Define)
	a.expanding = make(map[string]bool)
	a.privates = nil
	a.helpers = nil
	a.unexecuted = make(map[uint64]*Value)
	a.pending = nil
	a.executed = make(map[uint64]bool)
	a.depth = 0
}

// Analyze evaluates root as a file body and returns the diagnostics
// ordered by position. Code blocks that are never executed are analyzed
// after the body, each against a snapshot of the file's variables.
func (a *Analyzer) Analyze(ctx context.Context, root *lang.Statement) []Diagnostic {
	a.reset()

	a.logger.TraceContext(ctx, "analysis start",
		slog.String("file", a.opts.file))

	if root != nil {
		a.file(ctx, root.Nodes, token.Position{Line: 1, Column: 1})
	}

	SortDiagnostics(a.diags)

	a.logger.TraceContext(ctx, "analysis complete",
		slog.Int("diagnostic_count", len(a.diags)))

	return a.diags
}

// Namespaces returns the variables recorded by the last analysis. The
// file scope remains pushed.
func (a *Analyzer) Namespaces() *Namespaces { return a.namespaces }

// file analyzes nodes as a file body, then runs deferred code and reports
// unresolved declarations.
func (a *Analyzer) file(ctx context.Context, nodes []lang.Node, pos token.Position) {
	a.current.Push(map[string]*Value{"_this": nothing(pos)})

	for _, n := range nodes {
		if ctx.Err() != nil {
			return
		}

		a.node(n)
	}

	for _, h := range a.pending {
		if code, ok := a.unexecuted[h]; ok {
			a.deferred(ctx, code)
		}
	}

	for _, p := range a.privates {
		a.Report(p.Pos, SeverityWarning, fmt.Sprintf(
			`Private variable "%s" declared but never assigned `+
				`(private argument must be a string)`, p.Variable.Text))
	}

	for _, h := range a.helpers {
		a.Report(h.Pos, SeverityWarning, fmt.Sprintf(
			`Helper type "%s" not evaluated`, h.Kind))
	}
}

// deferred analyzes code that was never executed in a child analyzer
// seeded with a copy of the current variables, one level deeper than a.
func (a *Analyzer) deferred(ctx context.Context, code *Value) {
	if a.depth >= a.opts.maxDepth {
		a.Report(code.Pos, SeverityError, "code nesting too deep")

		return
	}

	a.logger.TraceContext(ctx, "deferred code",
		slog.String("pos", code.Pos.String()),
		slog.Int("depth", a.depth+1))

	child := &Analyzer{
		db:       a.db,
		keywords: a.keywords,
		opts:     a.opts,
		logger:   a.logger,
	}

	child.reset()
	child.depth = a.depth + 1
	child.namespaces = a.namespaces.Clone()
	child.current = child.namespaces.Get(DefaultNamespace)
	maps.Copy(child.defines, a.defines)

	child.file(ctx, code.Code.Statements, code.Pos)

	a.diags = append(a.diags, child.diags...)
}

// ExecuteCode implements [Interpreter].
func (a *Analyzer) ExecuteCode(code, this *Value, locals map[string]*Value) *Value {
	if code == nil || code.Kind != Code || code.Code == nil {
		return &Value{}
	}

	h := code.Code.Hash()
	if _, ok := a.unexecuted[h]; ok {
		delete(a.unexecuted, h)
	}

	a.executed[h] = true

	if a.depth >= a.opts.maxDepth {
		a.Report(code.Pos, SeverityError, "code nesting too deep")

		return nothing(code.Pos)
	}

	vars := make(map[string]*Value, len(locals)+1)
	maps.Copy(vars, locals)

	if this == nil {
		this = nothing(code.Pos)
	}

	vars["_this"] = this.typeOnly()

	ns := a.current
	ns.Push(vars)

	a.depth++

	defer func() {
		a.depth--
		ns.Pop()
	}()

	outcome := &Value{}
	for _, n := range code.Code.Statements {
		outcome = a.node(n)
	}

	return outcome
}

// AddPrivates implements [Interpreter].
func (a *Analyzer) AddPrivates(names ...*Value) {
	for _, n := range names {
		if n == nil || n.Kind != String || !n.Known {
			continue
		}

		if !strings.HasPrefix(n.Content, "_") {
			a.Report(n.Pos, SeverityError, fmt.Sprintf(
				`Cannot make global variable "%s" private (underscore missing?)`,
				n.Content))

			continue
		}

		a.current.Current().Set(n.Content, &Value{})
	}
}

// Namespace implements [Interpreter].
func (a *Analyzer) Namespace(name string) func() {
	prev := a.current
	a.current = a.namespaces.Get(name)

	return func() { a.current = prev }
}

// Report implements [Interpreter].
func (a *Analyzer) Report(pos token.Position, severity Severity, msg string) {
	a.logger.Trace("diagnostic",
		slog.String("pos", pos.String()),
		slog.String("severity", severity.String()),
		slog.String("message", msg))

	a.diags = append(a.diags, Diagnostic{
		File:     a.opts.file,
		Pos:      pos,
		Severity: severity,
		Message:  msg,
	})
}

// term is a node evaluated only as far as its structure: statements are
// evaluated, while variables and keywords keep their identity until a
// value is needed.
type term struct {
	tok   *token.Token
	array bool
	elems []term
	val   *Value
	pos   token.Position
}

func (t term) isKeyword() bool { return t.tok != nil && t.tok.Kind == token.Keyword }

func (a *Analyzer) node(n lang.Node) *Value {
	if d, ok := n.(*lang.Define); ok {
		a.define(d)

		return nothing(d.Position())
	}

	return a.value(a.structure(n))
}

// structure evaluates n without resolving variables.
func (a *Analyzer) structure(n lang.Node) term {
	switch n := n.(type) {
	case *lang.Statement:
		return a.statement(n)

	case *lang.Array:
		t := term{array: true, pos: n.Pos, elems: make([]term, len(n.Elements))}
		for i, e := range n.Elements {
			t.elems[i] = a.statement(e)
		}

		return t

	case *lang.Code:
		return term{val: &Value{Kind: Code, Code: n, Pos: n.Pos}, pos: n.Pos}

	case *lang.Leaf:
		if n.Kind == token.Variable || n.Kind == token.Keyword {
			if t, ok := a.alias(n.Text, n.Pos); ok {
				return t
			}
		}

		tok := n.Token

		return term{tok: &tok, pos: n.Pos}

	case *lang.Define:
		a.define(n)

		return term{val: nothing(n.Position()), pos: n.Position()}

	default:
		return term{val: &Value{}}
	}
}

// value fully evaluates t.
func (a *Analyzer) value(t term) *Value {
	switch {
	case t.val != nil:
		if t.val.Kind == Code && t.val.Code != nil {
			a.track(t.val)
		}

		return t.val

	case t.array:
		arr := &Value{Kind: Array, Pos: t.pos, Elements: make([]*Value, len(t.elems))}
		for i, e := range t.elems {
			arr.Elements[i] = a.value(e)
		}

		return arr

	case t.tok != nil:
		return a.leaf(*t.tok)

	default:
		return nothing(t.pos)
	}
}

func (a *Analyzer) leaf(tok token.Token) *Value {
	switch tok.Kind {
	case token.Number:
		return kindOf(Number, tok.Pos)

	case token.String:
		return stringOf(tok.Content(), tok.Pos)

	case token.Boolean:
		return kindOf(Boolean, tok.Pos)

	case token.Namespace:
		return &Value{
			Kind:    Object,
			Pos:     tok.Pos,
			Content: strings.ToLower(tok.Text),
			Known:   true,
			Tag:     "namespace",
		}

	case token.Variable:
		scope := a.current.Lookup(tok.Text)
		if scope.Level == 0 && tok.IsLocal() {
			a.Report(tok.Pos, SeverityWarning, fmt.Sprintf(
				`Local variable "%s" is not from this scope (not private)`,
				tok.Text))
		}

		if v := scope.Get(tok.Text); v != nil {
			return kindOf(v.Kind, tok.Pos)
		}

		return nothing(tok.Pos)

	case token.Keyword:
		if sigs := a.db.Lookup(tok.Text, Nular); len(sigs) > 0 {
			if sigs[0].Execute != nil {
				return sigs[0].Execute(a, nil).at(tok.Pos)
			}

			return kindOf(result(sigs[0].Return), tok.Pos)
		}

		return &Value{Pos: tok.Pos, keyword: tok.Text}

	default:
		return nothing(tok.Pos)
	}
}

// track records code as unexecuted unless it ran before.
func (a *Analyzer) track(code *Value) {
	h := code.Code.Hash()
	if a.executed[h] {
		return
	}

	if _, ok := a.unexecuted[h]; ok {
		return
	}

	a.unexecuted[h] = code
	a.pending = append(a.pending, h)
}

// statement evaluates s as far as its structure.
func (a *Analyzer) statement(s *lang.Statement) term {
	pos := s.Position()
	base := s.Base()
	none := term{val: nothing(pos), pos: pos}

	if len(base) == 0 {
		return none
	}

	first, _ := base[0].(*lang.Leaf)

	switch {
	case first != nil && first.Kind == token.Preprocessor:
		a.directive(first, base)

		return none

	case len(base) == 2 && first != nil && first.Is("private"):
		return a.private(first, base[1], pos)

	case len(base) == 3 && isKeyword(base[1], "="):
		return a.assign(s, base, pos)

	case len(base) == 1 && isVariableOrArray(base[0]):
		return a.structure(base[0])

	case len(base) == 2 && a.externalCall(base):
		return none
	}

	return term{val: a.evaluate(s, base, pos), pos: pos}
}

func (a *Analyzer) define(d *lang.Define) {
	switch {
	case d.Name == "":
		a.Report(d.Directive.Pos, SeverityError, "#define must have at least one argument")
	case d.Malformed:
		a.Report(d.Directive.Pos, SeverityError, "#define parameter list is not closed")
	default:
		a.defines[d.Name] = d
	}
}

func (a *Analyzer) directive(first *lang.Leaf, base []lang.Node) {
	if !first.Is("#include") {
		return
	}

	if len(base) != 2 {
		a.Report(first.Pos, SeverityError, "Wrong syntax for #include")

		return
	}

	if l, ok := base[1].(*lang.Leaf); !ok || l.Kind != token.String {
		a.Report(first.Pos, SeverityError, "Wrong syntax for #include")
	}
}

// alias evaluates the body of a define whose name was left unexpanded.
func (a *Analyzer) alias(name string, pos token.Position) (term, bool) {
	d, ok := a.defines[name]
	if !ok || a.expanding[name] {
		return term{}, false
	}

	a.expanding[name] = true
	defer delete(a.expanding, name)

	var t term

	switch len(d.Body) {
	case 0:
		t = term{val: &Value{}}

	case 1:
		t = a.structure(&lang.Leaf{Token: d.Body[0]})

	default:
		root, _, err := lang.ParseTokens(d.Body, lang.WithKeywords(a.keywords))
		if err != nil || len(root.Base()) == 0 {
			t = term{val: &Value{}}

			break
		}

		if s, ok := root.Base()[0].(*lang.Statement); ok {
			t = a.statement(s)
		} else {
			t = term{val: &Value{}}
		}
	}

	t.pos = pos
	if t.val != nil {
		t.val = t.val.at(pos)
	}

	return t, true
}

func (a *Analyzer) private(kw *lang.Leaf, arg lang.Node, pos token.Position) term {
	rhs := a.structure(arg)

	switch {
	case rhs.tok != nil && rhs.tok.Kind == token.String:
		a.AddPrivates(stringOf(rhs.tok.Content(), rhs.pos))

	case rhs.array:
		a.AddPrivates(a.value(rhs).Elements...)

	case rhs.tok != nil && rhs.tok.Kind == token.Variable:
		a.AddPrivates(stringOf(rhs.tok.Text, rhs.pos))

		p := &Value{Kind: Private, Pos: rhs.pos, Variable: *rhs.tok}
		a.privates = append(a.privates, p)

		return term{val: p, pos: rhs.pos}

	case rhs.val != nil && rhs.val.Kind == String && rhs.val.Known:
		a.AddPrivates(rhs.val)

	default:
		a.Report(kw.Pos, SeverityError, "`private` used incorrectly")
	}

	return term{val: nothing(pos), pos: pos}
}

func (a *Analyzer) assign(s *lang.Statement, base []lang.Node, pos token.Position) term {
	lhs := a.structure(base[0])

	var (
		name token.Token
		ok   bool
	)

	switch {
	case lhs.val != nil && lhs.val.Kind == Private:
		a.resolve(lhs.val)
		name, ok = lhs.val.Variable, true
	case lhs.tok != nil && lhs.tok.Kind == token.Variable:
		name, ok = *lhs.tok, true
	}

	rhs := a.value(a.structure(base[2]))

	if !ok {
		a.Report(base[0].Position(), SeverityError,
			"lhs of assignment operator must be a variable")

		return term{val: nothing(pos), pos: pos}
	}

	scope := a.current.Lookup(name.Text)

	kind := rhs.Kind
	if kind.Helper() {
		kind = Nothing
	}

	if prior := scope.Get(name.Text); prior != nil &&
		prior.Kind != Nothing && prior.Kind != kind {
		kind = Nothing
	}

	scope.Set(name.Text, &Value{Kind: kind})

	if scope.Level == 0 && name.IsLocal() {
		a.Report(name.Pos, SeverityWarning, fmt.Sprintf(
			`Local variable "%s" assigned to an outer scope (not private)`,
			name.Text))
	}

	if name.IsGlobal() && a.current.Current().Level > fileLevel {
		a.Report(name.Pos, SeverityWarning, fmt.Sprintf(
			`Global variable "%s" assigned inside a code block`, name.Text))
	}

	if s.Ending != lang.EndNone {
		return term{val: nothing(pos), pos: pos}
	}

	return term{val: rhs.at(pos), pos: pos}
}

// resolve removes p from the pending declarations.
func (a *Analyzer) resolve(p *Value) {
	a.privates = slices.DeleteFunc(a.privates, func(v *Value) bool { return v == p })
	a.helpers = slices.DeleteFunc(a.helpers, func(v *Value) bool { return v == p })
}

// externalCall reports whether base looks like a call of a macro defined
// outside the analyzed source, such as "MACRO(args)".
func (a *Analyzer) externalCall(base []lang.Node) bool {
	l, ok := base[0].(*lang.Leaf)
	if !ok {
		return false
	}

	paren, ok := base[1].(*lang.Statement)
	if !ok || !paren.Parenthesis {
		return false
	}

	_, defined := a.defines[l.Text]

	return l.IsGlobal() || isUpper(l.Text) || defined
}

// evaluate resolves every base node of s and applies the matching
// keyword signature.
func (a *Analyzer) evaluate(s *lang.Statement, base []lang.Node, pos token.Position) *Value {
	terms := make([]term, len(base))
	for i, n := range base {
		terms[i] = a.structure(n)
	}

	var (
		kw   *token.Token
		form Form
	)

	switch {
	case len(terms) == 2 && terms[0].isKeyword():
		kw, form = terms[0].tok, Unary
	case len(terms) == 3 && terms[1].isKeyword():
		kw, form = terms[1].tok, Binary
	}

	values := make([]*Value, len(terms))
	ops := make([]*Value, 0, 2)

	for i, t := range terms {
		if kw != nil && t.tok == kw {
			values[i] = &Value{Pos: t.pos, keyword: kw.Text}

			continue
		}

		values[i] = a.value(t)
		ops = append(ops, values[i])
	}

	var candidates []*Signature
	if kw != nil {
		candidates = a.db.Lookup(kw.Text, form)
	}

	var found *Signature

	for _, c := range candidates {
		if c.Loose(ops) {
			found = c

			break
		}
	}

	outcome := nothing(pos)

	switch {
	case found != nil:
		ran := false

		if found.Strict(ops) {
			if found.Execute != nil {
				outcome, ran = found.Execute(a, ops), true
			} else {
				outcome = &Value{Kind: result(found.Return)}
			}
		} else if h := helperOperand(found, ops); h != nil {
			outcome = h
		} else if len(candidates) == 1 {
			outcome = &Value{Kind: result(candidates[0].Return)}
		}

		if !ran {
			a.operands(found, ops)
		}

		a.consume(ops)

	case len(values) == 1:
		if values[0].IsKeyword() {
			a.Report(pos, SeverityError, fmt.Sprintf(
				`"%s" is syntactically incorrect (missing ;?)`, source(s)))
		}

		outcome = values[0]

	case isGlobalVariable(base[0]):
		// Likely a function defined elsewhere.

	case len(candidates) > 0:
		a.Report(terms[0].pos, SeverityWarning, mismatch(candidates, ops))

	default:
		a.Report(terms[0].pos, SeverityError,
			"statement is syntactically incorrect (missing ;?)")
	}

	if outcome == nil {
		outcome = nothing(pos)
	}

	if outcome.Kind.Helper() && !slices.Contains(a.helpers, outcome) {
		a.helpers = append(a.helpers, outcome)
	}

	if outcome.Kind != Private {
		outcome.Pos = pos
	}

	if s.Ending != lang.EndNone {
		return nothing(pos)
	}

	return outcome
}

// operands analyzes code operands declared as Code.
func (a *Analyzer) operands(sig *Signature, ops []*Value) {
	var locals map[string]*Value
	if sig.Locals != nil {
		locals = sig.Locals(ops)
	}

	for i, p := range sig.Params() {
		if p == Code && ops[i].Kind == Code {
			a.ExecuteCode(ops[i], nil, locals)
		}
	}
}

// consume removes operands from the helpers awaiting a consumer.
func (a *Analyzer) consume(ops []*Value) {
	a.helpers = slices.DeleteFunc(a.helpers, func(h *Value) bool {
		return slices.Contains(ops, h)
	})
}

// helperOperand returns the operand that a loosely matched signature
// passes through, such as the For value of "from", "to" and "step".
func helperOperand(sig *Signature, ops []*Value) *Value {
	if !sig.Return.Helper() {
		return nil
	}

	for _, op := range ops {
		if op != nil && op.Kind == sig.Return {
			return op
		}
	}

	return nil
}

func mismatch(candidates []*Signature, ops []*Value) string {
	kw := candidates[0].Keyword

	if candidates[0].Form == Unary {
		kinds := make([]string, len(candidates))
		for i, c := range candidates {
			kinds[i] = c.Right.String()
		}

		return fmt.Sprintf(
			`Unary operator "%s" only accepts argument of types [%s] (rhs is %s)`,
			kw, strings.Join(kinds, ","), ops[0].Kind)
	}

	pairs := make([]string, len(candidates))
	for i, c := range candidates {
		pairs[i] = "(" + c.Left.String() + "," + c.Right.String() + ")"
	}

	return fmt.Sprintf(
		`Binary operator "%s" arguments must be [%s] (lhs is %s, rhs is %s)`,
		kw, strings.Join(pairs, ","), ops[0].Kind, ops[1].Kind)
}

// result maps a declared return kind to the kind of the produced value.
func result(k Kind) Kind {
	if k == Any {
		return Nothing
	}

	return k
}

func source(s *lang.Statement) string {
	text := strings.TrimSpace(s.String())
	if e := s.Ending.String(); e != "" {
		text = strings.TrimSpace(strings.TrimSuffix(text, e))
	}

	return text
}

func isKeyword(n lang.Node, word string) bool {
	l, ok := n.(*lang.Leaf)

	return ok && l.Is(word)
}

func isVariableOrArray(n lang.Node) bool {
	switch n := n.(type) {
	case *lang.Array:
		return true
	case *lang.Leaf:
		return n.Kind == token.Variable
	default:
		return false
	}
}

func isGlobalVariable(n lang.Node) bool {
	l, ok := n.(*lang.Leaf)

	return ok && l.IsGlobal()
}

// isUpper reports whether s has a letter and no lower case letters.
func isUpper(s string) bool {
	cased := false

	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}

		if unicode.IsUpper(r) {
			cased = true
		}
	}

	return cased
}

var _ Interpreter = (*Analyzer)(nil)
