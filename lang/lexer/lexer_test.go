package lexer

import (
	"errors"
	"testing"

	"github.com/ardnew/sqfa/lang/token"
)

type tok struct {
	kind token.Kind
	text string
}

func collect(t *testing.T, src string) []tok {
	t.Helper()

	toks, err := Tokenize(src, nil)
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}

	out := make([]tok, len(toks))
	for i, tk := range toks {
		out[i] = tok{tk.Kind, tk.Text}
	}

	return out
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []tok
	}{
		{
			name:  "assignment",
			input: "_a = 1;",
			want: []tok{
				{token.Variable, "_a"}, {token.Space, " "},
				{token.Keyword, "="}, {token.Space, " "},
				{token.Number, "1"}, {token.Keyword, ";"},
				{token.EndOfFile, ""},
			},
		},
		{
			name:  "doubled quote escape",
			input: `"a""b"`,
			want: []tok{
				{token.String, `"a""b"`}, {token.EndOfFile, ""},
			},
		},
		{
			name:  "single quoted",
			input: `'it''s'`,
			want: []tok{
				{token.String, `'it''s'`}, {token.EndOfFile, ""},
			},
		},
		{
			name:  "line comment keeps newline",
			input: "// note\nx",
			want: []tok{
				{token.Comment, "// note\n"}, {token.Variable, "x"},
				{token.EndOfFile, ""},
			},
		},
		{
			name:  "block comment",
			input: "/* a\nb */",
			want: []tok{
				{token.Comment, "/* a\nb */"}, {token.EndOfFile, ""},
			},
		},
		{
			name:  "operators",
			input: "a>=b&&!c",
			want: []tok{
				{token.Variable, "a"}, {token.Keyword, ">="},
				{token.Variable, "b"}, {token.Keyword, "&&"},
				{token.Keyword, "!"}, {token.Variable, "c"},
				{token.EndOfFile, ""},
			},
		},
		{
			name:  "numbers",
			input: "1.5e3 0xFF .5 $1f",
			want: []tok{
				{token.Number, "1.5e3"}, {token.Space, " "},
				{token.Number, "0xFF"}, {token.Space, " "},
				{token.Number, ".5"}, {token.Space, " "},
				{token.Number, "$1f"}, {token.EndOfFile, ""},
			},
		},
		{
			name:  "directive",
			input: "#define A 1",
			want: []tok{
				{token.Preprocessor, "#define"}, {token.Space, " "},
				{token.Variable, "A"}, {token.Space, " "},
				{token.Number, "1"}, {token.EndOfFile, ""},
			},
		},
		{
			name:  "select operator",
			input: "_a#_i",
			want: []tok{
				{token.Variable, "_a"}, {token.Keyword, "#"},
				{token.Variable, "_i"}, {token.EndOfFile, ""},
			},
		},
		{
			name:  "keywords namespaces booleans",
			input: "with uiNamespace TRUE forEach",
			want: []tok{
				{token.Keyword, "with"}, {token.Space, " "},
				{token.Namespace, "uiNamespace"}, {token.Space, " "},
				{token.Boolean, "TRUE"}, {token.Space, " "},
				{token.Keyword, "forEach"}, {token.EndOfFile, ""},
			},
		},
		{
			name:  "broken end of line",
			input: "a\\\nb",
			want: []tok{
				{token.Variable, "a"}, {token.BrokenEndOfLine, "\\\n"},
				{token.Variable, "b"}, {token.EndOfFile, ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := collect(t, tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d tokens %v, want %d %v",
					len(got), got, len(tt.want), tt.want)
			}

			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTokenize_Positions(t *testing.T) {
	t.Parallel()

	toks, err := Tokenize("a\n  b", nil)
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}

	b := toks[3]
	if b.Text != "b" || b.Pos.Line != 2 || b.Pos.Column != 3 || b.Pos.Offset != 4 {
		t.Errorf("b at %+v", b.Pos)
	}
}

func TestTokenize_Unterminated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		line  int
		col   int
	}{
		{"string", `x = "abc`, 1, 5},
		{"escaped quote at end", `x = "a""`, 1, 5},
		{"block comment", "a\n/* b", 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Tokenize(tt.input, nil)

			var lexErr *Error
			if !errors.As(err, &lexErr) {
				t.Fatalf("expected *Error, got %v", err)
			}

			if lexErr.Pos.Line != tt.line || lexErr.Pos.Column != tt.col {
				t.Errorf("error at %v, want %d:%d", lexErr.Pos, tt.line, tt.col)
			}
		})
	}
}

func TestToken_Content(t *testing.T) {
	t.Parallel()

	toks, err := Tokenize(`"say ""hi"""`, nil)
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}

	if got := toks[0].Content(); got != `say "hi"` {
		t.Errorf("Content() = %q", got)
	}
}
