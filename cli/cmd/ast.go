package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/itchyny/gojq"

	"github.com/ardnew/sqfa/lang"
	"github.com/ardnew/sqfa/pkg"
)

// AST prints the syntax tree of a source file after macro expansion.
type AST struct {
	Analysis analysisFlags `embed:""`

	Format string `default:"tree" enum:"tree,json,yaml,source" help:"Output format (${enum})" short:"o"`
	Indent int    `default:"2"                                  help:"Indent width"            short:"i"`
	Query  string `help:"jq program applied to the JSON form of the tree" short:"q"`

	File string `arg:"" default:"-" help:"Source file or '-' for stdin" name:"file" type:"path"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	db, err := a.Analysis.database(ctx)
	if err != nil {
		return err
	}

	opts, err := a.Analysis.parseOptions(db)
	if err != nil {
		return err
	}

	srcs, err := sourceFiles(ctx, []string{a.File})
	if err != nil {
		return err
	}

	text, err := srcs[0].Read(os.Stdin)
	if err != nil {
		return err
	}

	ast, err := lang.ParseCached(ctx, text, opts...)
	if err != nil {
		return lang.WrapError(err).With(slog.String("file", srcs[0].Name))
	}

	w := stdout(ctx)

	if a.Query != "" {
		return a.query(ctx, w, ast)
	}

	switch a.Format {
	case "tree":
		return ast.FormatTree(ctx, w, a.Indent)
	case formatJSON:
		return ast.FormatJSON(ctx, w, a.Indent)
	case formatYAML:
		return ast.FormatYAML(ctx, w, a.Indent)
	case "source":
		return ast.Format(ctx, w)
	default:
		return pkg.ErrInvalidFormat.Wrapf("%q", a.Format)
	}
}

// query runs the jq program over the JSON form of ast and writes each
// result in the selected format, YAML when requested and JSON otherwise.
func (a *AST) query(ctx context.Context, w io.Writer, ast *lang.AST) error {
	q, err := gojq.Parse(a.Query)
	if err != nil {
		return ErrQuery.Wrap(err).With(slog.String("query", a.Query))
	}

	input, err := jsonValue(ast)
	if err != nil {
		return err
	}

	iter := q.Run(input)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		v, ok := iter.Next()
		if !ok {
			return nil
		}

		if err, ok := v.(error); ok {
			return ErrQuery.Wrap(err).With(slog.String("query", a.Query))
		}

		if err := a.writeValue(ctx, w, v); err != nil {
			return err
		}
	}
}

func (a *AST) writeValue(ctx context.Context, w io.Writer, v any) error {
	if a.Format == formatYAML {
		data, err := yaml.MarshalContext(ctx, v, yaml.Indent(max(a.Indent, 1)))
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = fmt.Fprintf(w, "---\n%s", data)

		return err
	}

	var (
		data []byte
		err  error
	)

	if a.Indent > 0 {
		data, err = json.MarshalIndent(v, "", fmt.Sprintf("%*s", a.Indent, ""))
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return ErrJSONMarshal.Wrap(err)
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// jsonValue returns the JSON form of ast decoded into the plain maps,
// slices and float64 numbers the jq interpreter accepts.
func jsonValue(ast *lang.AST) (any, error) {
	data, err := json.Marshal(ast)
	if err != nil {
		return nil, ErrJSONMarshal.Wrap(err)
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, ErrJSONMarshal.Wrap(err)
	}

	return v, nil
}
