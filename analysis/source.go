package analysis

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ardnew/sqfa/lang"
)

// Result is the outcome of analyzing a source text.
type Result struct {
	AST         *lang.AST
	Diagnostics []Diagnostic
	Namespaces  *Namespaces
	// ParseErr is the parse failure, if any. Diagnostics then holds it as
	// the only entry.
	ParseErr error
}

// Source parses src with the keywords of db and analyzes it. A parse
// failure is reported as a single error diagnostic rather than returned;
// the error result is reserved for cancellation.
func Source(ctx context.Context, db *Database, src string, opts ...Option) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a := New(db, opts...)

	parse := append([]lang.Option{
		lang.WithKeywords(a.keywords),
		lang.WithLogger(a.logger),
	}, a.opts.parse...)

	ast, err := lang.ParseCached(ctx, src, parse...)
	if err != nil {
		a.logger.TraceContext(ctx, "parse failed",
			slog.String("file", a.opts.file),
			slog.Any("error", err))

		return &Result{
			Diagnostics: []Diagnostic{parseDiagnostic(a.opts.file, err)},
			ParseErr:    err,
		}, nil
	}

	diags := a.Analyze(ctx, ast.Root)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Result{
		AST:         ast,
		Diagnostics: diags,
		Namespaces:  a.Namespaces(),
	}, nil
}

func parseDiagnostic(file string, err error) Diagnostic {
	d := Diagnostic{File: file, Severity: SeverityError, Message: err.Error()}

	var perr *lang.Error
	if errors.As(err, &perr) {
		d.Pos = perr.Position()
		d.Message = perr.Message()
	}

	return d
}
