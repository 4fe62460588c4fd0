package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/sqfa/analysis"
	"github.com/ardnew/sqfa/log"
	"github.com/ardnew/sqfa/pkg"
)

// Lint analyzes source files and reports their diagnostics.
type Lint struct {
	Analysis analysisFlags `embed:""`

	Format string `default:"text" enum:"text,json,yaml" help:"Output format (${enum})" short:"o"`
	Filter string `help:"Report only diagnostics matching this expression, e.g. 'severity == \"error\"'" short:"F"`
	Strict bool   `help:"Fail on warnings as well as errors"`

	Files []string `arg:"" help:"Source files or '-' for stdin" name:"file" type:"path"`
}

// Run executes the lint command.
func (l *Lint) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	lt, err := l.Analysis.linter(ctx, l.Filter)
	if err != nil {
		return err
	}

	srcs, err := sourceFiles(ctx, l.Files)
	if err != nil {
		return err
	}

	var all []analysis.Diagnostic

	for _, src := range srcs {
		diags, err := lt.lint(ctx, src)
		if err != nil {
			return err
		}

		all = append(all, diags...)
	}

	if err := writeDiagnostics(ctx, stdout(ctx), l.Format, all); err != nil {
		return err
	}

	log.DebugContext(ctx, "lint complete",
		slog.Int("files", len(srcs)),
		slog.Int("diagnostics", len(all)))

	if analysis.HasErrors(all, l.Strict) {
		return pkg.ErrDiagnostics.Wrapf("%d diagnostics in %d files", len(all), len(srcs))
	}

	return nil
}
