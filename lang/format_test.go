package lang

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
)

func TestFormat_Source(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "assignment", input: `_a = 1;`},
		{name: "code", input: "_f = {\n\tparams [\"_a\"];\n\t_a + 1\n};\n"},
		{name: "macro", input: "#define TWICE(x) (x * 2)\n_b = TWICE(4);"},
		{name: "macro array argument", input: "#define ADD(a,b) (a + b)\nx = ADD(1,[3,4]);"},
		{name: "macro array body", input: "#define PAIR [1, 2]\n_p = PAIR;"},
		{name: "macro statements", input: "#define TWO a = 1; b = 2\nTWO;"},
		{name: "macro statements in code", input: "#define TWO a = 1; b = 2\n_f = {TWO; c = 3;};"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ast, err := ParseString(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			var buf bytes.Buffer
			if err := ast.Format(context.Background(), &buf); err != nil {
				t.Fatalf("format error: %v", err)
			}

			if got := buf.String(); got != tt.input {
				t.Errorf("format mismatch:\nwant: %q\ngot:  %q", tt.input, got)
			}
		})
	}
}

func TestFormatTree(t *testing.T) {
	ast, err := ParseString(context.Background(), "_a = [1, {hint \"x\"}];")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var buf bytes.Buffer
	if err := ast.FormatTree(context.Background(), &buf, 2); err != nil {
		t.Fatalf("format error: %v", err)
	}

	want := []string{
		"Statement; @1:1",
		"  Variable _a @1:1",
		"  Keyword = @1:4",
		"  Array @1:6",
		"    Statement @1:7",
		"      Number 1 @1:7",
		"    Statement @1:10",
		"      Code @1:10",
		"        Statement @1:11",
		"          Keyword hint @1:11",
		"          String \"x\" @1:16",
	}

	got := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(got) != len(want) {
		t.Fatalf("tree has %d lines, want %d:\n%s", len(got), len(want), buf.String())
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFormatJSON(t *testing.T) {
	ast, err := ParseString(context.Background(), "#define N 2\n_a = [N, \"s\"];")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var buf bytes.Buffer
	if err := ast.FormatJSON(context.Background(), &buf, 2); err != nil {
		t.Fatalf("format error: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("JSON unmarshal error: %v", err)
	}

	stmts, ok := result["statements"].([]any)
	if !ok || len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %v", result["statements"])
	}

	def, ok := stmts[0].(map[string]any)
	if !ok || def["define"] != "N" {
		t.Errorf("expected define N, got %v", stmts[0])
	}

	macros, ok := result["macros"].([]any)
	if !ok || len(macros) != 1 {
		t.Errorf("expected 1 macro, got %v", result["macros"])
	}

	if !strings.Contains(buf.String(), `"macro": "N"`) {
		t.Errorf("expanded token not tagged with its macro:\n%s", buf.String())
	}
}

func TestFormatYAML(t *testing.T) {
	ast, err := ParseString(context.Background(), `_a = 1;`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var buf bytes.Buffer
	if err := ast.FormatYAML(context.Background(), &buf, 2); err != nil {
		t.Fatalf("format error: %v", err)
	}

	var result map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("YAML unmarshal error: %v\n%s", err, buf.String())
	}

	stmts, ok := result["statements"].([]any)
	if !ok || len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %v", result["statements"])
	}

	stmt, ok := stmts[0].(map[string]any)
	if !ok || stmt["ending"] != ";" {
		t.Errorf("expected ending ';', got %v", stmts[0])
	}
}

func TestToNative_Literals(t *testing.T) {
	ast, err := ParseString(context.Background(), `_a = [0x10, "it""s"];`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	stmt := ToNative(ast.Root.Base()[0]).(map[string]any)
	nodes := stmt["statement"].([]any)
	arr := nodes[2].(map[string]any)["array"].([]any)

	hex := arr[0].(map[string]any)["statement"].([]any)[0].(map[string]any)
	if hex["value"] != int64(16) {
		t.Errorf("hex value = %v (%T)", hex["value"], hex["value"])
	}

	str := arr[1].(map[string]any)["statement"].([]any)[0].(map[string]any)
	if str["value"] != `it"s` {
		t.Errorf("string value = %v", str["value"])
	}
}
