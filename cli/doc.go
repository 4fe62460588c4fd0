// Package cli wires the sqfa commands into a kong command line.
//
// # Usage
//
//	sqfa [flags] <command> [args]
//	sqfa mission/init.sqf          # lint is the default command
//	sqfa ast -o json -q '.root.statements | length' init.sqf
//	sqfa watch --strict mission/
//
// # Configuration
//
// Flag defaults are read, in increasing precedence, from the YAML file
// config.yaml in the configuration directory, from environment variables
// prefixed with SQFA_ (for example SQFA_LOG_LEVEL), and from the command
// line. The init command writes the current global options to the file.
// SQFA_CONFIG_DIR overrides the configuration directory.
//
// # Logging Options
//
//   - --log-level: minimum level (trace, debug, info, warn, error)
//   - --log-format: output format (text, json)
//   - --log-time-layout: timestamp layout (RFC3339, Kitchen, ...)
//   - --log-caller: include the caller location
//   - --log-pretty: colorize output, disabled when NO_COLOR is set
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o sqfa .
//
//   - --pprof-mode: profiling mode (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: profile output directory (default: the pprof directory
//     under the sqfa cache directory)
package cli
