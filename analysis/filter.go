package analysis

import (
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// filterEnv is the environment visible to filter expressions.
type filterEnv struct {
	File     string `expr:"file"`
	Line     int    `expr:"line"`
	Column   int    `expr:"column"`
	Severity string `expr:"severity"`
	Message  string `expr:"message"`
}

func envOf(d Diagnostic) filterEnv {
	return filterEnv{
		File:     d.File,
		Line:     d.Pos.Line,
		Column:   d.Pos.Column,
		Severity: d.Severity.String(),
		Message:  d.Message,
	}
}

// Filter selects diagnostics with a boolean expr-lang expression over
// file, line, column, severity and message, for example:
//
//	severity == "error" || message contains "private"
type Filter struct {
	source  string
	program *vm.Program
}

// NewFilter compiles source. An empty source matches every diagnostic.
func NewFilter(source string) (*Filter, error) {
	f := &Filter{source: source}
	if source == "" {
		return f, nil
	}

	program, err := expr.Compile(source, expr.Env(filterEnv{}), expr.AsBool())
	if err != nil {
		return nil, ErrFilter.Wrap(err).
			With(slog.String("source", source))
	}

	f.program = program

	return f, nil
}

// String returns the filter source.
func (f *Filter) String() string { return f.source }

// Match reports whether d satisfies the filter.
func (f *Filter) Match(d Diagnostic) (bool, error) {
	if f == nil || f.program == nil {
		return true, nil
	}

	out, err := expr.Run(f.program, envOf(d))
	if err != nil {
		return false, ErrFilter.Wrap(err).
			With(slog.String("source", f.source))
	}

	ok, _ := out.(bool)

	return ok, nil
}

// Apply returns the diagnostics of diags matching the filter, in order.
func (f *Filter) Apply(diags []Diagnostic) ([]Diagnostic, error) {
	out := make([]Diagnostic, 0, len(diags))

	for _, d := range diags {
		ok, err := f.Match(d)
		if err != nil {
			return nil, err
		}

		if ok {
			out = append(out, d)
		}
	}

	return out, nil
}
