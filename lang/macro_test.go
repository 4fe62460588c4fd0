package lang

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/ardnew/sqfa/lang/lexer"
	"github.com/ardnew/sqfa/lang/token"
)

// lastStatement returns the last top-level statement of src that holds
// more than whitespace.
func lastStatement(t *testing.T, src string, opts ...Option) Node {
	t.Helper()

	ast, err := ParseString(context.Background(), src, opts...)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var last Node

	for n := range ast.Statements() {
		if s, ok := n.(*Statement); ok && len(s.Base()) == 0 && s.Ending == EndNone {
			continue
		}

		last = n
	}

	if last == nil {
		t.Fatalf("no statements in %q", src)
	}

	return last
}

func TestMacro_Expansion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "function macro",
			input: "#define ADD(a,b) (a + b)\n_x = ADD(1,2);",
			want:  `[_x = ([1 + 2])];`,
		},
		{
			name:  "object macro",
			input: "#define LIMIT 10\n_x = LIMIT * 2;",
			want:  `[_x = [10 * 2]];`,
		},
		{
			name:  "arity overload one",
			input: "#define F(a) a\n#define F(a,b) b\n_x = F(1);",
			want:  `[_x = 1];`,
		},
		{
			name:  "arity overload two",
			input: "#define F(a) a\n#define F(a,b) b\n_x = F(1,2);",
			want:  `[_x = 2];`,
		},
		{
			name:  "arity mismatch is left alone",
			input: "#define F(a,b) b\n_x = F(1,2,3);",
			want:  `[_x = [F ([1], [2], [3])]];`,
		},
		{
			name:  "function macro without call",
			input: "#define ADD(a,b) (a + b)\n_x = ADD + 1;",
			want:  `[_x = [ADD + 1]];`,
		},
		{
			name:  "empty parameter list",
			input: "#define NOW() time\n_t = NOW();",
			want:  `[_t = time];`,
		},
		{
			name:  "function form beside object form",
			input: "#define F() 1\n#define F 2\n_x = F();",
			want:  `[_x = 1];`,
		},
		{
			name:  "object form beside function form",
			input: "#define F() 1\n#define F 2\n_x = F;",
			want:  `[_x = 2];`,
		},
		{
			name:  "nested macros",
			input: "#define B 2\n#define A B\n_x = A;",
			want:  `[_x = 2];`,
		},
		{
			name:  "argument holding brackets",
			input: "#define FIRST(a) (a select 0)\n_x = FIRST([1, 2]);",
			want:  `[_x = ([<[1], [2]> select 0])];`,
		},
		{
			name:  "inside code",
			input: "#define V 1\n_f = {_a = V;};",
			want:  `[_f = {[_a = 1];}];`,
		},
		{
			name:  "redefinition",
			input: "#define V 1\n_a = V;\n#define V 2\n_b = V;",
			want:  `[_b = 2];`,
		},
		{
			name:  "trailing line comment",
			input: "#define V 1 // one\n_a = V;",
			want:  `[_a = 1];`,
		},
		{
			name:  "line continuation",
			input: "#define INC(a) \\\n  (a + 1)\n_b = INC(2);",
			want:  `[_b = ([2 + 1])];`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Shape(lastStatement(t, tt.input)); got != tt.want {
				t.Errorf("shape = %s\nwant    %s", got, tt.want)
			}
		})
	}
}

func TestMacro_EquivalentToInline(t *testing.T) {
	t.Parallel()

	expanded := lastStatement(t, "#define ADD(a,b) (a + b)\n_x = ADD(1,2);")
	inline := lastStatement(t, "_x = (1 + 2);")

	if Shape(expanded) != Shape(inline) {
		t.Errorf("expanded %s != inline %s", Shape(expanded), Shape(inline))
	}
}

func TestMacro_Idempotent(t *testing.T) {
	t.Parallel()

	src := "_x = (1 + 2); _y = [_x, {hint str _x}];"

	once, err := ParseString(context.Background(), src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	twice, err := ParseString(context.Background(), once.Root.String())
	if err != nil {
		t.Fatalf("reparse error: %v", err)
	}

	if Shape(once.Root) != Shape(twice.Root) {
		t.Errorf("reparse changed shape:\n%s\n%s", Shape(once.Root), Shape(twice.Root))
	}
}

func TestMacro_RenderedAsCall(t *testing.T) {
	t.Parallel()

	src := "#define ADD(a,b) (a + b)\n_x = ADD(1,2);"

	ast, err := ParseString(context.Background(), src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if got := ast.Root.String(); got != src {
		t.Errorf("source = %q, want %q", got, src)
	}

	stmt := lastStatement(t, src)
	if got := stmt.String(); got != "_x = ADD(1,2);" {
		t.Errorf("statement = %q", got)
	}

	nested := lastStatement(t, "#define B 2\n#define A B\n_x = A;")
	if got := nested.String(); got != "_x = A;" {
		t.Errorf("nested statement = %q", got)
	}

	array := lastStatement(t, "#define ADD(a,b) (a + b)\nx = ADD(1,[3,4]);")
	if got := array.String(); got != "x = ADD(1,[3,4]);" {
		t.Errorf("array argument statement = %q", got)
	}
}

func TestMacro_Positions(t *testing.T) {
	t.Parallel()

	stmt := lastStatement(t, "#define ADD(a,b) (a + b)\n_x = ADD(1,2);")

	base := stmt.(*Statement).Base()
	if len(base) != 3 {
		t.Fatalf("base = %v", base)
	}

	paren, ok := base[2].(*Statement)
	if !ok || !paren.Parenthesis {
		t.Fatalf("rhs is %T", base[2])
	}

	if p := paren.Position(); p.Line != 2 || p.Column != 6 {
		t.Errorf("expansion at %v, want call position 2:6", p)
	}

	inner := paren.Base()[0].(*Statement).Base()

	one := inner[0].(*Leaf)
	if one.Pos.Line != 2 || one.Pos.Column != 10 {
		t.Errorf("argument at %v, want 2:10", one.Pos)
	}

	if one.Origin == nil || one.Origin.Macro != "ADD" || one.Origin.Call != "ADD(1,2)" {
		t.Errorf("argument origin = %+v", one.Origin)
	}

	plus := inner[1].(*Leaf)
	if plus.Pos.Line != 2 || plus.Pos.Column != 6 {
		t.Errorf("body token at %v, want 2:6", plus.Pos)
	}
}

func TestMacro_Recursive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		opts  []Option
	}{
		{
			name:  "self reference",
			input: "#define A A\n_x = A;",
		},
		{
			name:  "mutual reference",
			input: "#define A B\n#define B A\n_x = A;",
		},
		{
			name:  "low limit",
			input: "#define A B\n#define B C\n#define C D\n#define D 1\n_x = A;",
			opts:  []Option{WithMaxExpansion(2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseString(context.Background(), tt.input, tt.opts...)
			if !errors.Is(err, ErrMacroDepth) {
				t.Fatalf("error = %v, want %v", err, ErrMacroDepth)
			}

			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatalf("error %T is not *Error", err)
			}

			if p := perr.Position(); p.Line == 0 {
				t.Errorf("error has no position: %v", err)
			}
		})
	}
}

func TestMacro_NotExpandedInDirectives(t *testing.T) {
	t.Parallel()

	ast, err := ParseString(context.Background(),
		"#define X 1\n#ifdef X\n_a = X;\n#endif\n")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	stmts := ast.Root.Base()
	if len(stmts) < 3 {
		t.Fatalf("got %d statements", len(stmts))
	}

	ifdef := stmts[1].(*Statement).Base()
	if len(ifdef) != 2 || !isKeyword(ifdef[0], "#ifdef") {
		t.Fatalf("directive = %v", ifdef)
	}

	if l, ok := ifdef[1].(*Leaf); !ok || l.Text != "X" || l.Origin != nil {
		t.Errorf("directive argument = %v", ifdef[1])
	}

	if got := Shape(stmts[2]); got != `[_a = 1];` {
		t.Errorf("body = %s", got)
	}
}

func TestMacro_DefineNode(t *testing.T) {
	t.Parallel()

	ast, err := ParseString(context.Background(), "#define ADD(a, b) (a + b)\n")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	def, ok := ast.Root.Nodes[0].(*Define)
	if !ok {
		t.Fatalf("first node is %T", ast.Root.Nodes[0])
	}

	if def.Name != "ADD" || !def.Function || !slices.Equal(def.Params, []string{"a", "b"}) {
		t.Errorf("define = %s %v function=%v", def.Name, def.Params, def.Function)
	}

	if got := tokensString(def.Body); got != "(a + b)" {
		t.Errorf("body = %q", got)
	}

	if m, ok := ast.Macros.Lookup("ADD", 2, true); !ok || m.Pos.Line != 1 {
		t.Errorf("macro table lookup = %v, %v", m, ok)
	}
}

func TestParseDefine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		def      string
		name     string
		params   []string
		body     string
		function bool
		wantErr  bool
	}{
		{def: "DEBUG", name: "DEBUG"},
		{def: "LEVEL=3", name: "LEVEL", body: "3"},
		{def: "MUL(a,b)=a * b", name: "MUL", params: []string{"a", "b"}, body: "a * b", function: true},
		{def: "", wantErr: true},
		{def: "F(a=1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.def, func(t *testing.T) {
			t.Parallel()

			m, err := ParseDefine(tt.def, nil)
			if tt.wantErr {
				if !errors.Is(err, ErrMacroSyntax) {
					t.Fatalf("error = %v, want %v", err, ErrMacroSyntax)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if m.Name != tt.name || m.Function != tt.function ||
				!slices.Equal(m.Params, tt.params) {
				t.Errorf("macro = %s %v function=%v", m.Name, m.Params, m.Function)
			}

			if got := tokensString(m.Body); got != tt.body {
				t.Errorf("body = %q, want %q", got, tt.body)
			}
		})
	}
}

func TestWithMacros(t *testing.T) {
	t.Parallel()

	m, err := ParseDefine("MUL(a,b)=a * b", nil)
	if err != nil {
		t.Fatalf("define: %v", err)
	}

	got := Shape(lastStatement(t, "_x = MUL(2,3);", WithMacros(m)))
	if want := `[_x = [2 * 3]];`; got != want {
		t.Errorf("shape = %s, want %s", got, want)
	}

	// Predefined macros must not leak into parses without the option.
	got = Shape(lastStatement(t, "_x = MUL(2,3);"))
	if want := `[_x = [MUL ([2], [3])]];`; got != want {
		t.Errorf("shape without macros = %s, want %s", got, want)
	}
}

func TestParseTokens_Consumed(t *testing.T) {
	t.Parallel()

	tests := []string{
		"_a = 1; _b = 2;",
		"#define X 1 2 3\n_a = [X];",
		"#define ADD(a,b) (a + b)\n_x = ADD(1,2);",
	}

	for _, src := range tests {
		toks, err := lexer.Tokenize(src, nil)
		if err != nil {
			t.Fatalf("tokenize: %v", err)
		}

		root, consumed, err := ParseTokens(toks)
		if err != nil {
			t.Fatalf("%q: parse error: %v", src, err)
		}

		if root == nil {
			t.Fatalf("%q: nil root", src)
		}

		if want := len(toks) - 1; consumed != want {
			t.Errorf("%q: consumed %d tokens, want %d", src, consumed, want)
		}
	}

	root, consumed, err := ParseTokens([]token.Token{
		{Kind: token.Variable, Text: "_a", Pos: token.Position{Line: 1, Column: 1}},
	})
	if err != nil || root == nil || consumed != 1 {
		t.Errorf("without end of file: consumed=%d err=%v", consumed, err)
	}
}
