package analysis

import (
	"context"
	"strings"
	"testing"
)

func analyze(t *testing.T, src string, opts ...Option) *Result {
	t.Helper()

	res, err := Source(context.Background(), DefaultDatabase(), src, opts...)
	if err != nil {
		t.Fatalf("Source() error = %v", err)
	}

	return res
}

func messages(diags []Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Severity.String() + ": " + d.Message
	}

	return out
}

func count(diags []Diagnostic, substr string) int {
	n := 0

	for _, d := range diags {
		if strings.Contains(d.Message, substr) {
			n++
		}
	}

	return n
}

func TestAnalyze_Clean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"for loop", `private "_i"; for "_i" from 0 to 10 do { _i = _i + 1; };`},
		{"for loop step", `for "_j" from 10 to 0 step -1 do { hint str _j; };`},
		{"for loop unknown bound", `params ["_n"]; for "_i" from 0 to _n do { diag_log _i; };`},
		{"for loop unknown start", `params ["_n"]; for "_i" from _n to 10 do { diag_log _i; };`},
		{
			"for loop unknown step",
			`params ["_n", "_s"]; for "_i" from 0 to _n step _s do { diag_log _i; };`,
		},
		{"private then assign", `private "_a"; _a = 1;`},
		{"private array", `private ["_a", "_b"]; _a = 1; _b = "x";`},
		{"private assignment", `private _x = 1; _x = _x + 2;`},
		{"global at file level", `X = 1; Y = X * 2;`},
		{"private in outer scope", `private _y = 0; call { _y = 1; };`},
		{"if then else", `private _v = 1; if (_v > 0) then { hint "a"; } else { hint "b"; };`},
		{"forEach locals", `{ diag_log _x; diag_log _forEachIndex; } forEach [1, 2];`},
		{"count locals", `private _n = { _x > 1 } count [1, 2, 3];`},
		{"select code", `private _a = [1, 2] select { _x > 1 };`},
		{"try catch", `try { throw "x"; } catch { diag_log _exception; };`},
		{"params", `params ["_a", ["_b", 0]]; _a = 1; _b = 2;`},
		{"while do", `private _i = 0; while { _i < 3 } do { _i = _i + 1; };`},
		{"with namespace", `with uiNamespace do { private _z = 1; };`},
		{"nular", `private _p = player; private _t = time + 1;`},
		{"this in code", `private _f = { diag_log _this; }; 1 call _f;`},
		{"external macro call", `MY_MACRO(1, 2);`},
		{"include", `#include "script.hpp"
private _a = 1;`},
		{"conditional directives", `#ifdef DEBUG
private _a = 1;
#endif`},
		{"string concat", `private _s = "a" + "b";`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := analyze(t, tt.input)
			if len(res.Diagnostics) != 0 {
				t.Errorf("diagnostics = %q, want none", messages(res.Diagnostics))
			}
		})
	}
}

func TestAnalyze_Warnings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "global in code block",
			input: `call { X = 1; };`,
			want:  []string{`warning: Global variable "X" assigned inside a code block`},
		},
		{
			name:  "local to outer scope",
			input: `_a = 1;`,
			want: []string{
				`warning: Local variable "_a" assigned to an outer scope (not private)`,
			},
		},
		{
			name:  "unresolved private",
			input: `private _b;`,
			want: []string{
				`warning: Private variable "_b" declared but never assigned ` +
					`(private argument must be a string)`,
			},
		},
		{
			name:  "binary mismatch",
			input: `private _a = 1 + "x";`,
			want: []string{
				`warning: Binary operator "+" arguments must be ` +
					`[(Number,Number),(String,String),(Array,Array)] ` +
					`(lhs is Number, rhs is String)`,
			},
		},
		{
			name:  "unary mismatch",
			input: `hint 1;`,
			want: []string{
				`warning: Unary operator "hint" only accepts argument of types ` +
					`[String] (rhs is Number)`,
			},
		},
		{
			name:  "undeclared local read",
			input: `private _a = _undefinedThing + 1;`,
			want: []string{
				`warning: Local variable "_undefinedThing" is not from this scope (not private)`,
			},
		},
		{
			name:  "unconsumed for",
			input: `for "_i" from 0 to 1;`,
			want:  []string{`warning: Helper type "For" not evaluated`},
		},
		{
			name:  "private global",
			input: `private "x";`,
			want: []string{
				`error: Cannot make global variable "x" private (underscore missing?)`,
			},
		},
		{
			name:  "private misuse",
			input: `private 1;`,
			want:  []string{"error: `private` used incorrectly"},
		},
		{
			name:  "assign to literal",
			input: `1 = 2;`,
			want:  []string{"error: lhs of assignment operator must be a variable"},
		},
		{
			name:  "bare keyword",
			input: `private _a = 1; if;`,
			want:  []string{`error: "if" is syntactically incorrect (missing ;?)`},
		},
		{
			name:  "missing separator",
			input: `private _a = 1; private _b = 2; _a _b;`,
			want:  []string{"error: statement is syntactically incorrect (missing ;?)"},
		},
		{
			name:  "include without file",
			input: "#include\n",
			want:  []string{"error: Wrong syntax for #include"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := messages(analyze(t, tt.input).Diagnostics)
			if strings.Join(got, "\n") != strings.Join(tt.want, "\n") {
				t.Errorf("diagnostics:\n got %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestAnalyze_GlobalInCodeCountsOnce(t *testing.T) {
	t.Parallel()

	res := analyze(t, `call { X = 1; };`)

	if n := count(res.Diagnostics, "assigned inside a code block"); n != 1 {
		t.Errorf("got %d scope warnings, want 1: %q", n, messages(res.Diagnostics))
	}
}

func TestAnalyze_DeferredIsolation(t *testing.T) {
	t.Parallel()

	res := analyze(t, `private _f = { _x = 1/0; };`)

	if n := count(res.Diagnostics, `Local variable "_x" assigned to an outer scope`); n != 1 {
		t.Fatalf("diagnostics = %q, want the deferred scope warning",
			messages(res.Diagnostics))
	}

	ns := res.Namespaces.Get(DefaultNamespace)
	if ns.Global().Has("_x") || ns.Current().Has("_x") {
		t.Error("_x is bound in the outer scope after deferred analysis")
	}

	if !ns.Current().Has("_f") {
		t.Error("_f is not bound in the file scope")
	}
}

func TestAnalyze_DeferredSeesFileVariables(t *testing.T) {
	t.Parallel()

	res := analyze(t, `private _a = 1; private _f = { _a = 2; };`)
	if len(res.Diagnostics) != 0 {
		t.Errorf("diagnostics = %q, want none", messages(res.Diagnostics))
	}
}

func TestAnalyze_ExecutedCodeNotDeferred(t *testing.T) {
	t.Parallel()

	res := analyze(t, `private _f = { X = 1; }; call _f; call { X = 2; };`)

	// The stored block runs deferred; the inline block runs once in place.
	if n := count(res.Diagnostics, "assigned inside a code block"); n != 2 {
		t.Errorf("diagnostics = %q, want 2", messages(res.Diagnostics))
	}
}

func TestAnalyze_TypeWidening(t *testing.T) {
	t.Parallel()

	res := analyze(t, `private _a = 1; _a = "x"; private _b = _a + 1;`)
	if len(res.Diagnostics) != 0 {
		t.Errorf("diagnostics = %q, want none", messages(res.Diagnostics))
	}

	v := res.Namespaces.Get(DefaultNamespace).Lookup("_a").Get("_a")
	if v == nil || v.Kind != Nothing {
		t.Errorf("_a = %v, want Nothing", v)
	}
}

func TestAnalyze_MaxDepth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		depth int
		want  int
	}{
		{"called", `call { call { call { hint "deep"; }; }; };`, 2, 1},
		{"called within limit", `call { call { hint "deep"; }; };`, 2, 0},
		{
			"deferred",
			`private _f = { private _g = { private _h = { hint "deep"; }; }; };`,
			2, 1,
		},
		{
			"deferred within limit",
			`private _f = { private _g = { hint "deep"; }; };`,
			2, 0,
		},
		{"deferred bare blocks", strings.Repeat("{ ", 200) + `X = 1;` + strings.Repeat(" };", 200), 128, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := analyze(t, tt.input, WithMaxDepth(tt.depth))

			if n := count(res.Diagnostics, "code nesting too deep"); n != tt.want {
				t.Errorf("got %d depth errors, want %d: %q",
					n, tt.want, messages(res.Diagnostics))
			}
		})
	}
}

func TestAnalyze_File(t *testing.T) {
	t.Parallel()

	res := analyze(t, `_a = 1;`, WithFile("init.sqf"))
	if len(res.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %q, want 1", messages(res.Diagnostics))
	}

	d := res.Diagnostics[0]
	if d.File != "init.sqf" || d.Pos.Line != 1 || d.Pos.Column != 1 {
		t.Errorf("diagnostic at %s:%s, want init.sqf:1:1", d.File, d.Pos)
	}

	want := `init.sqf:1:1: warning: Local variable "_a" assigned to an outer scope (not private)`
	if d.String() != want {
		t.Errorf("String() = %q, want %q", d.String(), want)
	}
}

func TestAnalyze_Ordered(t *testing.T) {
	t.Parallel()

	res := analyze(t, "private _f = { _x = 1; };\n_y = 2;\n")
	if len(res.Diagnostics) != 2 {
		t.Fatalf("diagnostics = %q, want 2", messages(res.Diagnostics))
	}

	if res.Diagnostics[0].Pos.Line != 1 || res.Diagnostics[1].Pos.Line != 2 {
		t.Errorf("diagnostics out of order: %v", res.Diagnostics)
	}
}

func TestSource_MacroDepth(t *testing.T) {
	t.Parallel()

	res := analyze(t, "#define A A\n_x = A;\n")

	if res.ParseErr == nil {
		t.Fatal("ParseErr = nil, want macro depth error")
	}

	if len(res.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %q, want 1", messages(res.Diagnostics))
	}

	d := res.Diagnostics[0]
	if d.Severity != SeverityError || !strings.Contains(d.Message, "macro expansion too deep") {
		t.Errorf("diagnostic = %s, want macro expansion error", d)
	}

	if d.Pos.Line != 2 {
		t.Errorf("diagnostic line = %d, want 2", d.Pos.Line)
	}
}

func TestSource_ParseError(t *testing.T) {
	t.Parallel()

	res := analyze(t, "_a = [1, 2;\n")
	if res.ParseErr == nil || len(res.Diagnostics) != 1 {
		t.Fatalf("got %v %q, want one parse diagnostic", res.ParseErr, messages(res.Diagnostics))
	}

	if res.Diagnostics[0].Severity != SeverityError {
		t.Errorf("severity = %s, want error", res.Diagnostics[0].Severity)
	}
}

func TestSource_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Source(ctx, nil, `_a = 1;`); err == nil {
		t.Error("Source() error = nil, want context error")
	}
}

func TestSource_MacrosExpanded(t *testing.T) {
	t.Parallel()

	res := analyze(t, "#define ADD(a,b) (a + b)\nprivate _x = ADD(1,2);\n")
	if len(res.Diagnostics) != 0 {
		t.Errorf("diagnostics = %q, want none", messages(res.Diagnostics))
	}

	v := res.Namespaces.Get(DefaultNamespace).Lookup("_x").Get("_x")
	if v == nil || v.Kind != Number {
		t.Errorf("_x = %v, want Number", v)
	}
}

func TestAnalyzer_Reuse(t *testing.T) {
	t.Parallel()

	first := analyze(t, `_a = 1;`)

	a := New(nil)
	a.Analyze(context.Background(), first.AST.Root)

	diags := a.Analyze(context.Background(), first.AST.Root)
	if len(diags) != 1 {
		t.Errorf("second Analyze() = %q, want 1 diagnostic", messages(diags))
	}
}

func BenchmarkSource(b *testing.B) {
	src := strings.Repeat(
		`private _i = 0; while { _i < 10 } do { _i = _i + 1; hint str _i; };`+"\n", 50)
	db := DefaultDatabase()

	for b.Loop() {
		if _, err := Source(context.Background(), db, src); err != nil {
			b.Fatal(err)
		}
	}
}
