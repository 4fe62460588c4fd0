package lang

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// shapes parses src and returns the shapes of its top-level statements,
// skipping statements that hold only whitespace.
func shapes(t *testing.T, src string, opts ...Option) string {
	t.Helper()

	ast, err := ParseString(context.Background(), src, opts...)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var out []string

	for n := range ast.Statements() {
		if s, ok := n.(*Statement); ok && len(s.Base()) == 0 && s.Ending == EndNone {
			continue
		}

		out = append(out, Shape(n))
	}

	return strings.Join(out, " ")
}

func TestParseString_Grouping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "assignment",
			input: `_a = 1;`,
			want:  `[_a = 1];`,
		},
		{
			name:  "private assignment",
			input: `private _x = 1;`,
			want:  `[[private _x] = 1];`,
		},
		{
			name:  "arithmetic priority",
			input: `_x = _a + _b * 2;`,
			want:  `[_x = [_a + [_b * 2]]];`,
		},
		{
			name:  "left associative",
			input: `_x = 1 - 2 - 3;`,
			want:  `[_x = [[1 - 2] - 3]];`,
		},
		{
			name:  "unary minus",
			input: `_a = -1 + 2;`,
			want:  `[_a = [[- 1] + 2]];`,
		},
		{
			name:  "logic",
			input: `a && !b || c`,
			want:  `[[a && [! b]] || c]`,
		},
		{
			name:  "if then else",
			input: `if (_a > 1) then {hint "x"} else {hint "y"};`,
			want:  `[[if ([_a > 1])] then [{[hint "x"]} else {[hint "y"]}]];`,
		},
		{
			name:  "for loop",
			input: `for "_i" from 0 to 10 do {};`,
			want:  `[[[[for "_i"] from 0] to 10] do {}];`,
		},
		{
			name:  "nested unary",
			input: `hint str _x;`,
			want:  `[hint [str _x]];`,
		},
		{
			name:  "command binds looser than arithmetic",
			input: `_x select 0 + 1`,
			want:  `[_x select [0 + 1]]`,
		},
		{
			name:  "nular operand",
			input: `player setPos [0, 0];`,
			want:  `[player setPos <[0], [0]>];`,
		},
		{
			name:  "arrays",
			input: `_a = [1, 2, [3]];`,
			want:  `[_a = <[1], [2], [<[3]>]>];`,
		},
		{
			name:  "empty array",
			input: `_a = [];`,
			want:  `[_a = <>];`,
		},
		{
			name:  "comma separates statements",
			input: `_a = 1, _b = 2`,
			want:  `[_a = 1], [_b = 2]`,
		},
		{
			name:  "switch case",
			input: `switch (_a) do { case 1: {hint "a"}; default {}; };`,
			want:  `[[switch ([_a])] do {[[case 1] : {[hint "a"]}]; [default {}];}];`,
		},
		{
			name:  "comments are trivia",
			input: "_a /* one */ = 1; // done\n",
			want:  `[_a = 1];`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := shapes(t, tt.input); got != tt.want {
				t.Errorf("shape = %s\nwant    %s", got, tt.want)
			}
		})
	}
}

func TestParseString_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		target  error
		message string
	}{
		{
			name:    "unclosed parenthesis",
			input:   `_a = (1 + 2;`,
			target:  ErrUnclosed,
			message: `1:6: bracket not closed: Parenthesis "(" not closed`,
		},
		{
			name:    "unclosed array",
			input:   `_a = [1, 2`,
			target:  ErrUnclosed,
			message: `Parenthesis "[" not closed`,
		},
		{
			name:    "unclosed code",
			input:   "_f = {\n _a = 1;",
			target:  ErrUnclosed,
			message: `Parenthesis "{" not closed`,
		},
		{
			name:    "extra closing parenthesis",
			input:   `_a = 1 + 2);`,
			target:  ErrUnexpectedClose,
			message: `Trying to close ")" without opened "("`,
		},
		{
			name:    "extra closing brace in array",
			input:   `_a = [1, 2}];`,
			target:  ErrUnexpectedClose,
			message: `Trying to close "}" without opened "{"`,
		},
		{
			name:    "mismatched closer",
			input:   `_a = (1, [2)];`,
			target:  ErrUnexpectedClose,
			message: `unexpected ")" (expected "]")`,
		},
		{
			name:    "empty element",
			input:   `_a = [1,,2];`,
			target:  ErrEmptyElement,
			message: `1:9`,
		},
		{
			name:    "trailing comma",
			input:   `_a = [1,];`,
			target:  ErrEmptyElement,
			message: `Array cannot have an empty element`,
		},
		{
			name:    "statement in array",
			input:   `_a = [1; 2];`,
			target:  ErrArrayStatement,
			message: `cannot be in an array`,
		},
		{
			name:    "unterminated string",
			input:   `hint "abc`,
			target:  ErrUnterminated,
			message: `1:6: unterminated literal: string is not closed`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseString(context.Background(), tt.input)
			if err == nil {
				t.Fatal("expected error")
			}

			if !errors.Is(err, tt.target) {
				t.Errorf("error %v is not %v", err, tt.target)
			}

			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("error %q does not contain %q", err, tt.message)
			}
		})
	}
}

func TestParseString_BracketBalance(t *testing.T) {
	t.Parallel()

	balanced := []string{
		`()`, `[]`, `{}`, `([{}])`, `{[()]}`, `[([], {}), ()]`,
		`_f = {{{_a = [[1], (2)];}}};`,
	}

	for _, src := range balanced {
		if _, err := ParseString(context.Background(), src); err != nil {
			t.Errorf("%s: unexpected error %v", src, err)
		}
	}

	for _, pair := range []string{"()", "[]", "{}"} {
		for _, src := range []string{
			"_a = " + pair[:1] + "1",        // missing closer
			"_a = " + pair + pair[1:] + ";", // extra closer
		} {
			_, err := ParseString(context.Background(), src)
			if err == nil {
				t.Errorf("%s: expected error", src)

				continue
			}

			if !strings.Contains(err.Error(), `"`+pair[:1]+`"`) &&
				!strings.Contains(err.Error(), `"`+pair[1:]+`"`) {
				t.Errorf("%s: error %q does not name %s", src, err, pair)
			}
		}
	}
}

func TestParseString_RoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`_a = 1;`,
		"private _x = [1, \"two\", {3}];\n// comment\nhint str _x;\n",
		"if (_a > 0) then {\n\thint \"x\";\n} else {\n\thint 'y';\n};",
		"#include \"script.hpp\"\n_a = 1;",
		"#define X 1\n_a = X;",
		"{ _x } forEach [1, 2, 3]",
	}

	for _, src := range inputs {
		ast, err := ParseString(context.Background(), src)
		if err != nil {
			t.Fatalf("parse error: %v", err)
		}

		if got := ast.Root.String(); got != src {
			t.Errorf("round trip\n got %q\nwant %q", got, src)
		}
	}
}

func TestParseString_Positions(t *testing.T) {
	t.Parallel()

	ast, err := ParseString(context.Background(), "_a = 1;\n  _b = [2];")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	stmts := ast.Root.Base()
	if len(stmts) != 2 {
		t.Fatalf("got %d statements", len(stmts))
	}

	if p := stmts[1].Position(); p.Line != 2 || p.Column != 3 {
		t.Errorf("second statement at %v", p)
	}

	arr := stmts[1].(*Statement).Base()[2]
	if p := arr.Position(); p.Line != 2 || p.Column != 8 {
		t.Errorf("array at %v", p)
	}
}

func TestParseString_Include(t *testing.T) {
	t.Parallel()

	ast, err := ParseString(context.Background(), "#include \"a.hpp\"\n_a = 1;")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	stmts := ast.Root.Base()
	if len(stmts) != 2 {
		t.Fatalf("got %d statements: %v", len(stmts), stmts)
	}

	inc, ok := stmts[0].(*Statement)
	if !ok {
		t.Fatalf("directive is %T", stmts[0])
	}

	base := inc.Base()
	if len(base) != 2 || !isKeyword(base[0], "#include") {
		t.Errorf("directive base = %v", base)
	}
}

func TestParseString_Empty(t *testing.T) {
	t.Parallel()

	ast, err := ParseString(context.Background(), "")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if len(ast.Root.Base()) != 0 {
		t.Errorf("empty source produced %v", ast.Root.Base())
	}
}
