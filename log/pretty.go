package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Styles for pretty output. Colors are ANSI palette indices so that the
// terminal theme decides the actual shade.
var (
	keyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	stringStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	numberStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	trueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	falseStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	durationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	timeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	messageStyle  = lipgloss.NewStyle().Bold(true)

	levelStyles = []struct {
		min   slog.Level
		style lipgloss.Style
	}{
		{slog.LevelError, lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)},
		{slog.LevelWarn, lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)},
		{slog.LevelInfo, lipgloss.NewStyle().Foreground(lipgloss.Color("2"))},
		{slog.LevelDebug, lipgloss.NewStyle().Foreground(lipgloss.Color("4"))},
		{slog.Level(levelTraceMask), lipgloss.NewStyle().Foreground(lipgloss.Color("8"))},
	}
)

func levelStyle(l slog.Level) lipgloss.Style {
	for _, ls := range levelStyles {
		if l >= ls.min {
			return ls.style
		}
	}

	return levelStyles[len(levelStyles)-1].style
}

// prettyBase holds the state shared by the pretty handlers.
type prettyBase struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr
	groups []string
}

func (b prettyBase) enabled(level slog.Level) bool {
	threshold := slog.LevelInfo
	if b.opts.Level != nil {
		threshold = b.opts.Level.Level()
	}

	return level >= threshold
}

func (b prettyBase) withAttrs(attrs []slog.Attr) prettyBase {
	b.attrs = append(b.attrs[:len(b.attrs):len(b.attrs)], b.qualify(attrs)...)

	return b
}

func (b prettyBase) withGroup(name string) prettyBase {
	if name != "" {
		b.groups = append(b.groups[:len(b.groups):len(b.groups)], name)
	}

	return b
}

// qualify prefixes attribute keys with the open groups.
func (b prettyBase) qualify(attrs []slog.Attr) []slog.Attr {
	if len(b.groups) == 0 {
		return attrs
	}

	prefix := strings.Join(b.groups, ".") + "."
	out := make([]slog.Attr, len(attrs))

	for i, a := range attrs {
		out[i] = slog.Attr{Key: prefix + a.Key, Value: a.Value}
	}

	return out
}

// fields returns the attributes of r in output order, after ReplaceAttr.
func (b prettyBase) fields(r slog.Record) []slog.Attr {
	out := make([]slog.Attr, 0, 4+len(b.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		out = append(out, slog.Time(slog.TimeKey, r.Time))
	}

	out = append(out, slog.Any(slog.LevelKey, r.Level))

	if b.opts.AddSource {
		if src := r.Source(); src != nil {
			out = append(out,
				slog.String(slog.SourceKey, src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	out = append(out, slog.String(slog.MessageKey, r.Message))
	out = append(out, b.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		out = append(out, b.qualify([]slog.Attr{a})...)

		return true
	})

	if b.opts.ReplaceAttr == nil {
		return out
	}

	kept := out[:0]

	for _, a := range out {
		a = b.opts.ReplaceAttr(nil, a)
		if a.Key != "" {
			kept = append(kept, a)
		}
	}

	return kept
}

func (b prettyBase) write(buf *bytes.Buffer) error {
	buf.WriteByte('\n')

	b.mu.Lock()
	defer b.mu.Unlock()

	_, err := b.w.Write(buf.Bytes())

	return err
}

// styledValue renders v colored by its kind. Level values arrive as
// strings after ReplaceAttr and are colored by key instead.
func styledValue(key string, v slog.Value) string {
	v = v.Resolve()

	switch v.Kind() {
	case slog.KindString:
		if key == slog.LevelKey {
			return levelStyle(ParseLevel(v.String()).slogLevel()).Render(v.String())
		}

		if key == slog.MessageKey {
			return messageStyle.Render(v.String())
		}

		return stringStyle.Render(v.String())

	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		return numberStyle.Render(v.String())

	case slog.KindBool:
		if v.Bool() {
			return trueStyle.Render("true")
		}

		return falseStyle.Render("false")

	case slog.KindDuration:
		return durationStyle.Render(v.Duration().String())

	case slog.KindTime:
		return timeStyle.Render(v.Time().Format(DefaultTimeLayout))

	case slog.KindGroup:
		part := make([]string, 0, len(v.Group()))
		for _, a := range v.Group() {
			part = append(part, a.Key+"="+styledValue(a.Key, a.Value))
		}

		return "{" + strings.Join(part, " ") + "}"

	default:
		if level, ok := v.Any().(slog.Level); ok {
			return levelStyle(level).Render(level.String())
		}

		return stringStyle.Render(fmt.Sprint(v.Any()))
	}
}

// prettyTextHandler writes one styled key=value line per record.
type prettyTextHandler struct{ prettyBase }

func newPrettyTextHandler(w io.Writer, opts *slog.HandlerOptions) *prettyTextHandler {
	return &prettyTextHandler{prettyBase{opts: *opts, mu: &sync.Mutex{}, w: w}}
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	for i, a := range h.fields(r) {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(keyStyle.Render(a.Key))
		buf.WriteByte('=')
		buf.WriteString(styledValue(a.Key, a.Value))
	}

	return h.write(&buf)
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyTextHandler{h.withAttrs(attrs)}
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	return &prettyTextHandler{h.withGroup(name)}
}

// prettyJSONHandler writes each record as an indented, styled object.
type prettyJSONHandler struct{ prettyBase }

func newPrettyJSONHandler(w io.Writer, opts *slog.HandlerOptions) *prettyJSONHandler {
	return &prettyJSONHandler{prettyBase{opts: *opts, mu: &sync.Mutex{}, w: w}}
}

func (h *prettyJSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	buf.WriteString("{")

	for i, a := range h.fields(r) {
		if i > 0 {
			buf.WriteByte(',')
		}

		buf.WriteString("\n  ")
		buf.WriteString(keyStyle.Render(strconv.Quote(a.Key)))
		buf.WriteString(": ")
		buf.WriteString(styledValue(a.Key, a.Value))
	}

	buf.WriteString("\n}")

	return h.write(&buf)
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyJSONHandler{h.withAttrs(attrs)}
}

func (h *prettyJSONHandler) WithGroup(name string) slog.Handler {
	return &prettyJSONHandler{h.withGroup(name)}
}
