package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// swapDefault replaces the default logger for the duration of a test.
// Tests using it must not run in parallel.
func swapDefault(t *testing.T, l Logger) {
	t.Helper()

	defaultMu.Lock()
	original := defaultLog
	defaultLog = l
	defaultMu.Unlock()

	t.Cleanup(func() {
		defaultMu.Lock()
		defaultLog = original
		defaultMu.Unlock()
	})
}

func TestPackage_LogFunctions(t *testing.T) {
	var buf bytes.Buffer

	swapDefault(t, Make(&buf, WithLevel(LevelTrace), WithFormat(FormatJSON), WithPretty(false)))

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
	}{
		{"Trace", Trace, `"level":"TRACE"`},
		{"Debug", Debug, `"level":"DEBUG"`},
		{"Info", Info, `"level":"INFO"`},
		{"Warn", Warn, `"level":"WARN"`},
		{"Error", Error, `"level":"ERROR"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn("analyzed", slog.String("file", "init.sqf"))

			out := buf.String()
			for _, want := range []string{`"msg":"analyzed"`, tt.level, `"file":"init.sqf"`} {
				if !strings.Contains(out, want) {
					t.Errorf("output %q lacks %s", out, want)
				}
			}
		})
	}
}

func TestPackage_Config(t *testing.T) {
	var buf bytes.Buffer

	swapDefault(t, Make(&buf, WithLevel(LevelError), WithFormat(FormatText), WithPretty(false)))

	Warn("hidden")

	Config(WithLevel(LevelWarn))
	Default().With(slog.String("file", "a.sqf")).Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "msg=shown") ||
		!strings.Contains(out, "file=a.sqf") {
		t.Errorf("output = %q", out)
	}

	if Default().Level() != LevelWarn {
		t.Errorf("Default().Level() = %s, want warn", Default().Level())
	}
}
