package lang

import (
	"context"
	"testing"
)

func firstCode(n Node) *Code {
	switch n := n.(type) {
	case *Code:
		return n
	case *Statement:
		for _, c := range n.Nodes {
			if code := firstCode(c); code != nil {
				return code
			}
		}
	case *Array:
		for _, e := range n.Elements {
			if code := firstCode(e); code != nil {
				return code
			}
		}
	}

	return nil
}

func TestCode_Hash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		a, b  string
		equal bool
	}{
		{"trivia ignored", `_f = {hint "a"};`, "_g = {  hint /* x */ \"a\" };", true},
		{"position ignored", `_f = {hint "a"};`, "\n\n_f = 1; _g = {hint \"a\"};", true},
		{"macro expansion", "#define H hint \"a\"\n_f = {H};", `_f = {hint "a"};`, true},
		{"text", `_f = {hint "a"};`, `_f = {hint "b"};`, false},
		{"ending", `_f = {_a = 1;};`, `_f = {_a = 1};`, false},
		{"nesting", `_f = {(1 + 2) * 3};`, `_f = {1 + (2 * 3)};`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var hashes [2]uint64

			for i, src := range []string{tt.a, tt.b} {
				ast, err := ParseString(context.Background(), src)
				if err != nil {
					t.Fatalf("parse error: %v", err)
				}

				code := firstCode(ast.Root)
				if code == nil {
					t.Fatalf("no code block in %q", src)
				}

				hashes[i] = code.Hash()
			}

			if (hashes[0] == hashes[1]) != tt.equal {
				t.Errorf("Hash() %#x, %#x: equal = %v, want %v",
					hashes[0], hashes[1], hashes[0] == hashes[1], tt.equal)
			}
		})
	}
}
