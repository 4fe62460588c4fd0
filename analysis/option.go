package analysis

import (
	"github.com/ardnew/sqfa/lang"
	"github.com/ardnew/sqfa/log"
)

// DefaultMaxDepth is the default limit on nested code execution.
var DefaultMaxDepth = 128

type options struct {
	file     string
	maxDepth int
	parse    []lang.Option
}

// Option configures an [Analyzer].
type Option func(*Analyzer)

// WithFile sets the file name recorded in diagnostics.
func WithFile(name string) Option {
	return func(a *Analyzer) {
		a.opts.file = name
	}
}

// WithMaxDepth sets the maximum depth of nested code execution. Deeper
// code blocks are reported and skipped.
func WithMaxDepth(depth int) Option {
	return func(a *Analyzer) {
		if depth > 0 {
			a.opts.maxDepth = depth
		}
	}
}

// WithParseOptions sets options used by [Source] to parse the input.
func WithParseOptions(opts ...lang.Option) Option {
	return func(a *Analyzer) {
		a.opts.parse = append(a.opts.parse, opts...)
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

func applyDefaults(a *Analyzer) {
	a.opts.maxDepth = DefaultMaxDepth
}

func applyOptions(a *Analyzer, opts ...Option) {
	for _, opt := range opts {
		opt(a)
	}
}
