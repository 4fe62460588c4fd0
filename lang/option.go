package lang

import (
	"github.com/ardnew/sqfa/lang/token"
	"github.com/ardnew/sqfa/log"
)

// DefaultMaxExpansion is the default limit on nested macro expansions.
// Users may modify this before parsing to change the default.
var DefaultMaxExpansion = 64

// options holds parser configuration.
type options struct {
	keywords     *token.Keywords
	macros       *MacroTable
	maxExpansion int
}

// Option configures parsing behavior.
type Option func(*AST)

// WithKeywords sets the keyword table used to classify words. The default
// is [token.DefaultKeywords].
func WithKeywords(kw *token.Keywords) Option {
	return func(ast *AST) {
		if kw != nil {
			ast.opts.keywords = kw
		}
	}
}

// WithMacros predefines macros visible from the start of the source.
func WithMacros(macros ...*Macro) Option {
	return func(ast *AST) {
		if ast.opts.macros == nil {
			ast.opts.macros = NewMacroTable()
		}

		for _, m := range macros {
			ast.opts.macros.Define(m)
		}
	}
}

// WithMaxExpansion sets the maximum depth of nested macro expansions.
func WithMaxExpansion(depth int) Option {
	return func(ast *AST) {
		ast.opts.maxExpansion = depth
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(ast *AST) {
		ast.logger = logger
	}
}

// applyDefaults sets default option values on an AST.
func applyDefaults(ast *AST) {
	ast.opts.keywords = defaultKeywords
	ast.opts.maxExpansion = DefaultMaxExpansion
}

// applyOptions applies functional options to an AST.
func applyOptions(ast *AST, opts ...Option) {
	for _, opt := range opts {
		opt(ast)
	}
}

var defaultKeywords = token.DefaultKeywords()
