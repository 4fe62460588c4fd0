package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes the AST back as source text. Macro expansions are
// rendered as the calls that produced them.
func (ast *AST) Format(_ context.Context, w io.Writer) error {
	if ast.Root == nil {
		return nil
	}

	_, err := fmt.Fprint(w, ast.Root.String())

	return err
}

// FormatTree writes an indented outline of the AST, one node per line.
func (ast *AST) FormatTree(_ context.Context, w io.Writer, indent int) error {
	if ast.Root == nil {
		return nil
	}

	if indent <= 0 {
		indent = 2
	}

	for _, n := range ast.Root.Base() {
		if err := formatTree(w, n, indent, 0); err != nil {
			return err
		}
	}

	return nil
}

// FormatJSON writes the AST as JSON to the writer.
func (ast *AST) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(ast, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(ast)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the AST as YAML to the writer.
func (ast *AST) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, ast.ToMap(), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

func formatTree(w io.Writer, n Node, indent, depth int) error {
	pad := strings.Repeat(" ", depth*indent)

	var (
		label    string
		children []Node
	)

	switch n := n.(type) {
	case *Leaf:
		_, err := fmt.Fprintf(w, "%s%s %s @%s\n", pad, n.Kind, n.Text, n.Pos)

		return err

	case *Statement:
		label = "Statement"
		if n.Parenthesis {
			label = "Parenthesis"
		}

		label += n.Ending.String()
		children = n.Base()

	case *Array:
		label = "Array"
		for _, e := range n.Elements {
			children = append(children, e)
		}

	case *Code:
		label = "Code"
		children = baseNodes(n.Statements)

	case *Define:
		_, err := fmt.Fprintf(w, "%s#define %s(%s) %s @%s\n", pad,
			n.Name, strings.Join(n.Params, ","), tokensString(n.Body),
			n.Position())

		return err
	}

	if _, err := fmt.Fprintf(w, "%s%s @%s\n", pad, label, n.Position()); err != nil {
		return err
	}

	for _, c := range children {
		if err := formatTree(w, c, indent, depth+1); err != nil {
			return err
		}
	}

	return nil
}

// Shape renders the grouping of n without positions or trivia:
// statements as "[...]", parenthesized statements as "(...)", arrays as
// "<a, b>" and code as "{...}". Two nodes with equal shapes are
// structurally identical.
func Shape(n Node) string {
	var sb strings.Builder

	shape(&sb, n)

	return sb.String()
}

func shape(sb *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Leaf:
		sb.WriteString(n.Text)

	case *Statement:
		lo, hi := "[", "]"
		if n.Parenthesis {
			lo, hi = "(", ")"
		}

		sb.WriteString(lo)
		shapeList(sb, n.Base())
		sb.WriteString(hi)
		sb.WriteString(n.Ending.String())

	case *Array:
		sb.WriteString("<")

		for i, e := range n.Elements {
			if i > 0 {
				sb.WriteString(", ")
			}

			shape(sb, e)
		}

		sb.WriteString(">")

	case *Code:
		sb.WriteString("{")
		shapeList(sb, n.Statements)
		sb.WriteString("}")

	case *Define:
		sb.WriteString("#define " + n.Name)
	}
}

func shapeList(sb *strings.Builder, nodes []Node) {
	i := 0

	for _, c := range nodes {
		switch c := c.(type) {
		case *Leaf:
			if c.Kind.Trivia() {
				continue
			}
		case *Statement:
			if len(c.Base()) == 0 && c.Ending == EndNone && !c.Parenthesis {
				continue
			}
		}

		if i > 0 {
			sb.WriteString(" ")
		}

		shape(sb, c)
		i++
	}
}
