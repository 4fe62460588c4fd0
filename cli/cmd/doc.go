// Package cmd implements the sqfa subcommands: lint, ast, watch, repl,
// init and version.
//
// Commands receive a [context.Context] carrying the [kong.Context] of the
// parsed command line (see [WithContext]) and report failures as [*Error]
// or [pkg.Error] values, which the caller logs with their attributes.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// of the YAML configuration file written by the init command.
	ConfigIdentifier = "config"
)
