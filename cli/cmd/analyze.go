package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/ardnew/sqfa/analysis"
	"github.com/ardnew/sqfa/lang"
	"github.com/ardnew/sqfa/log"
)

// Vars returns the kong variables referenced by command flag defaults.
func Vars() kong.Vars {
	return kong.Vars{
		"maxDepth":     strconv.Itoa(analysis.DefaultMaxDepth),
		"maxExpansion": strconv.Itoa(lang.DefaultMaxExpansion),
	}
}

// analysisFlags configures parsing and analysis for the commands that
// read source files.
type analysisFlags struct {
	Signatures   []string `help:"YAML signature override file(s) merged over the builtin table" placeholder:"FILE" type:"existingfile"`
	Define       []string `help:"Predefine a macro: NAME, NAME=BODY or NAME(a,b)=BODY"          placeholder:"MACRO" short:"D"`
	MaxDepth     int      `default:"${maxDepth}"     help:"Maximum nesting depth of analyzed code blocks"`
	MaxExpansion int      `default:"${maxExpansion}" help:"Maximum depth of nested macro expansions"`
}

// database returns the builtin signatures merged with every override file.
func (f *analysisFlags) database(ctx context.Context) (*analysis.Database, error) {
	overrides := make([][]*analysis.Signature, 0, len(f.Signatures))

	for _, path := range f.Signatures {
		sigs, err := loadSignatures(path)
		if err != nil {
			return nil, ErrSignatures.Wrap(err).With(slog.String("file", path))
		}

		log.DebugContext(ctx, "loaded signature overrides",
			slog.String("file", path),
			slog.Int("count", len(sigs)))

		overrides = append(overrides, sigs)
	}

	return analysis.NewDatabase(analysis.Builtins(), overrides...), nil
}

func loadSignatures(path string) ([]*analysis.Signature, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return analysis.LoadSignatures(file)
}

// parseOptions returns the parser options for db: its keywords, the
// expansion limit and the predefined macros.
func (f *analysisFlags) parseOptions(db *analysis.Database) ([]lang.Option, error) {
	kw := db.Keywords()
	opts := []lang.Option{lang.WithKeywords(kw)}

	if f.MaxExpansion > 0 {
		opts = append(opts, lang.WithMaxExpansion(f.MaxExpansion))
	}

	macros := make([]*lang.Macro, 0, len(f.Define))

	for _, def := range f.Define {
		m, err := lang.ParseDefine(def, kw)
		if err != nil {
			return nil, ErrDefine.Wrap(err).With(slog.String("define", def))
		}

		macros = append(macros, m)
	}

	if len(macros) > 0 {
		opts = append(opts, lang.WithMacros(macros...))
	}

	return opts, nil
}

// options returns the analyzer options for db.
func (f *analysisFlags) options(db *analysis.Database) ([]analysis.Option, error) {
	parse, err := f.parseOptions(db)
	if err != nil {
		return nil, err
	}

	return []analysis.Option{
		analysis.WithMaxDepth(f.MaxDepth),
		analysis.WithLogger(log.Default()),
		analysis.WithParseOptions(parse...),
	}, nil
}

// linter analyzes sources with a fixed configuration.
type linter struct {
	db     *analysis.Database
	opts   []analysis.Option
	filter *analysis.Filter
	stdin  io.Reader
}

func (f *analysisFlags) linter(ctx context.Context, filter string) (*linter, error) {
	db, err := f.database(ctx)
	if err != nil {
		return nil, err
	}

	opts, err := f.options(db)
	if err != nil {
		return nil, err
	}

	flt, err := analysis.NewFilter(filter)
	if err != nil {
		return nil, err
	}

	return &linter{db: db, opts: opts, filter: flt, stdin: os.Stdin}, nil
}

// lint reads and analyzes src, returning the diagnostics that pass the
// filter.
func (l *linter) lint(ctx context.Context, src Source) ([]analysis.Diagnostic, error) {
	text, err := src.Read(l.stdin)
	if err != nil {
		return nil, err
	}

	res, err := analysis.Source(ctx, l.db, text,
		slices.Concat(l.opts, []analysis.Option{analysis.WithFile(src.Name)})...)
	if err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "analyzed",
		slog.String("file", src.Name),
		slog.Int("diagnostics", len(res.Diagnostics)),
		slog.Bool("parsed", res.ParseErr == nil))

	return l.filter.Apply(res.Diagnostics)
}
