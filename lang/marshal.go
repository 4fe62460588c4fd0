package lang

import (
	"encoding/json"
	"strconv"

	"github.com/ardnew/sqfa/lang/token"
)

// MarshalJSON implements json.Marshaler for AST.
func (ast *AST) MarshalJSON() ([]byte, error) {
	return json.Marshal(ast.ToMap())
}

// ToMap converts the AST to a native Go map structure. Whitespace and
// comments are omitted.
func (ast *AST) ToMap() map[string]any {
	result := map[string]any{"statements": []any{}}

	if ast.Root != nil {
		result["statements"] = nodesToNative(ast.Root.Base())
	}

	if ast.Macros.Len() > 0 {
		macros := make([]any, 0, ast.Macros.Len())

		for m := range ast.Macros.All() {
			macros = append(macros, map[string]any{
				"name":   m.Name,
				"params": stringsToNative(m.Params),
				"body":   tokensString(m.Body),
				"pos":    m.Pos.String(),
			})
		}

		result["macros"] = macros
	}

	return result
}

// ToNative converts a node to nested maps and slices suitable for JSON or
// YAML encoding.
func ToNative(n Node) any {
	switch n := n.(type) {
	case *Leaf:
		m := map[string]any{
			"kind": n.Kind.String(),
			"text": n.Text,
			"pos":  n.Pos.String(),
		}

		switch n.Kind {
		case token.Number:
			if f, err := strconv.ParseFloat(n.Text, 64); err == nil {
				m["value"] = f
			} else if i, err := strconv.ParseInt(n.Text, 0, 64); err == nil {
				m["value"] = i
			}
		case token.String:
			m["value"] = n.Content()
		}

		if n.Origin != nil {
			m["macro"] = n.Origin.Macro
		}

		return m

	case *Statement:
		m := map[string]any{
			"statement": nodesToNative(n.Base()),
			"pos":       n.Position().String(),
		}

		if n.Parenthesis {
			m["parenthesis"] = true
		}

		if n.Ending != EndNone {
			m["ending"] = n.Ending.String()
		}

		return m

	case *Array:
		elems := make([]any, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = ToNative(e)
		}

		return map[string]any{"array": elems, "pos": n.Pos.String()}

	case *Code:
		return map[string]any{
			"code": nodesToNative(n.Statements),
			"pos":  n.Pos.String(),
		}

	case *Define:
		m := map[string]any{
			"define": n.Name,
			"body":   tokensString(n.Body),
			"pos":    n.Position().String(),
		}

		if n.Function {
			m["params"] = stringsToNative(n.Params)
		}

		return m

	default:
		return nil
	}
}

func nodesToNative(nodes []Node) []any {
	out := make([]any, 0, len(nodes))

	for _, n := range nodes {
		if l, ok := n.(*Leaf); ok && l.Kind.Trivia() {
			continue
		}

		out = append(out, ToNative(n))
	}

	return out
}

func stringsToNative(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}

	return out
}
