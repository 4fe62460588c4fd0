package cmd

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestAST_Formats(t *testing.T) {
	t.Parallel()

	const src = "#define A 1\n#define B 2\nprivate _x = A + B;\n"

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, out string)
	}{
		{
			name: "tree",
			args: []string{"ast"},
			check: func(t *testing.T, out string) {
				t.Helper()

				if !strings.Contains(out, "_x") {
					t.Errorf("tree = %q", out)
				}
			},
		},
		{
			name: "json",
			args: []string{"ast", "-o", "json"},
			check: func(t *testing.T, out string) {
				t.Helper()

				var m map[string]any
				if err := json.Unmarshal([]byte(out), &m); err != nil {
					t.Fatalf("unmarshal: %v", err)
				}

				if _, ok := m["statements"]; !ok {
					t.Errorf("json keys = %v", m)
				}
			},
		},
		{
			name: "source",
			args: []string{"ast", "-o", "source"},
			check: func(t *testing.T, out string) {
				t.Helper()

				if !strings.Contains(out, "private _x") {
					t.Errorf("source = %q", out)
				}
			},
		},
		{
			name: "query",
			args: []string{"ast", "-q", ".macros | length"},
			check: func(t *testing.T, out string) {
				t.Helper()

				if strings.TrimSpace(out) != "2" {
					t.Errorf("query = %q, want 2", out)
				}
			},
		},
		{
			name: "query yaml",
			args: []string{"ast", "-o", "yaml", "-q", "[.macros[].name]"},
			check: func(t *testing.T, out string) {
				t.Helper()

				if !strings.HasPrefix(out, "---\n") || !strings.Contains(out, "- A") {
					t.Errorf("query = %q", out)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeFile(t, t.TempDir(), "x.sqf", src)

			var out syncBuffer

			ctx, cli := parse(t, &out, nil, append(tt.args, path)...)
			if err := cli.AST.Run(ctx); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			tt.check(t, out.String())
		})
	}
}

func TestAST_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ok := writeFile(t, dir, "ok.sqf", "private _a = 1;\n")

	var out syncBuffer

	ctx, cli := parse(t, &out, nil, "ast", "-q", ".[", ok)
	if err := cli.AST.Run(ctx); !errors.Is(err, ErrQuery) {
		t.Errorf("Run(bad query) error = %v, want ErrQuery", err)
	}

	broken := writeFile(t, dir, "broken.sqf", "_a = [1, 2;\n")

	ctx, cli = parse(t, &out, nil, "ast", broken)
	if err := cli.AST.Run(ctx); err == nil {
		t.Error("Run(parse error) error = nil")
	}
}
