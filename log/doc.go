// Package log wraps [log/slog] with a value-type [Logger] configured by
// functional options.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//	logger.Debug("macro defined", slog.String("name", "ADD"))
//
// Attributes are always [slog.Attr] values. [Logger.With] returns a logger
// adding attributes to every record.
//
// # Levels
//
// [LevelTrace] sits below [LevelDebug] and records parser and analyzer
// milestones. The default level is [LevelWarn].
//
// # Zero value
//
// The zero Logger discards everything. Library types hold one and accept a
// configured logger through their WithLogger option, so tracing costs
// nothing unless requested.
//
// # Pretty output
//
// [WithPretty] styles text and JSON output with lipgloss. It is enabled by
// default unless the NO_COLOR environment variable is set.
//
// # Package logger
//
// The package-level functions ([Info], [Warn], ...) log through a default
// logger writing to standard error, reconfigured with [Config]. The
// context-unaware variants use [DefaultContextProvider].
package log
