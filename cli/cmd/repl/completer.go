package repl

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "source", "reset", "edit", "clear", "quit"}

// isWordRune reports whether r may appear in an identifier. Directive names
// keep their leading '#' so that "#def" completes to "#define".
func isWordRune(r rune) bool {
	return r == '_' || r == '#' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input. Returns an empty word when the cursor sits
// between two non-word characters.
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	// Walk backward from cursor to find word start.
	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isWordRune(r) {
			break
		}

		start -= size
	}

	// Walk forward from cursor to find word end.
	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if !isWordRune(r) || r == '#' {
			break
		}

		end += size
	}

	// Inside a word '#' is the select operator, not a directive.
	if i := strings.LastIndexByte(input[start:cursor], '#'); i > 0 {
		start += i + 1
	}

	return input[start:end], start, end
}

// directives are completed when the word starts with '#'.
var directives = []string{
	"#define", "#include", "#ifdef", "#ifndef", "#else", "#endif", "#undef",
}

// candidates returns the completion candidates for word: directives for
// words starting with '#', otherwise session variables, macros and
// keywords. Local variables are offered only for words starting with '_'.
func candidates(s *Session, word string) []string {
	if strings.HasPrefix(word, "#") {
		return directives
	}

	var names []string

	for _, v := range s.Variables() {
		names = append(names, v.Name)
	}

	if strings.HasPrefix(word, "_") {
		return names
	}

	names = append(names, s.Macros()...)

	return append(names, s.Keywords()...)
}

// snapshot is an input line and its cursor.
type snapshot struct {
	text   string
	cursor int
}

func (m model) snapshot() snapshot {
	return snapshot{m.input.Value(), m.input.Position()}
}

func (m *model) restore(s snapshot) {
	m.input.SetValue(s.text)
	m.input.SetCursor(s.cursor)
}

// completion holds the fuzzy matches for the word under the cursor.
// While cycling, sel indexes the match written into the input and origin
// is the input from before cycling began.
type completion struct {
	matches    fuzzy.Matches
	origin     snapshot
	start, end int
	sel        int
	cycling    bool
}

// complete matches the word at the cursor against the candidates of the
// current mode. An empty word has no matches so the hint line stays
// visible.
func (m model) complete() completion {
	word, start, end := wordBounds(m.input.Value(), m.input.Position())

	c := completion{start: start, end: end, sel: -1}
	if word == "" {
		return c
	}

	names := ctrlCommands
	if m.mode == modeEval {
		names = candidates(m.session, word)
	}

	c.matches = fuzzy.Find(word, names)

	return c
}

// refresh recomputes the matches, keeping an active cycle when its
// selection is still in range. With confirm, a lone match equal to the
// typed word is accepted. Deletions and cursor movement pass false so
// editing never completes unexpectedly.
func (m model) refresh(confirm bool) model {
	c := m.complete()

	if m.comp.cycling && m.comp.sel < len(c.matches) {
		c.cycling, c.sel, c.origin = true, m.comp.sel, m.comp.origin
	}

	m.comp = c

	if confirm && len(c.matches) == 1 && m.input.Value()[c.start:c.end] == c.matches[0].Str {
		return m.accept(c.matches[0].Str)
	}

	return m
}

// insert replaces the word being completed with s.
func (m model) insert(s string) model {
	in := m.input.Value()
	m.restore(snapshot{in[:m.comp.start] + s + in[m.comp.end:], m.comp.start + len(s)})
	m.comp.end = m.comp.start + len(s)

	return m
}

// accept inserts s and ends completion.
func (m model) accept(s string) model {
	m = m.insert(s)
	m.comp = completion{sel: -1}

	return m
}

// cycle moves the selection by dir and writes the selected match into the
// input. A single match is accepted immediately.
func (m model) cycle(dir int) model {
	n := len(m.comp.matches)

	switch {
	case n == 0:
		return m
	case n == 1:
		return m.accept(m.comp.matches[0].Str)
	case m.comp.cycling:
		m.comp.sel = (m.comp.sel + dir + n) % n
	default:
		m.comp.cycling, m.comp.origin = true, m.snapshot()

		m.comp.sel = 0
		if dir < 0 {
			m.comp.sel = n - 1
		}
	}

	return m.insert(m.comp.matches[m.comp.sel].Str)
}

// uncycle restores the input from before cycling began.
func (m model) uncycle() model {
	m.restore(m.comp.origin)
	m.comp.cycling = false

	return m.refresh(false)
}

// bar renders the matches on one line, ellipsized to width, with the
// matched characters highlighted and the cycled selection inverted.
func (c completion) bar(width int) string {
	if len(c.matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	room := width - lipgloss.Width(ellipsis)

	var b strings.Builder

	for i, match := range c.matches {
		item := renderCandidate(match, c.cycling && i == c.sel)
		if i > 0 {
			item = sep + item
		}

		if i > 0 && lipgloss.Width(b.String())+lipgloss.Width(item) > room {
			b.WriteString(sep + ellipsis)

			break
		}

		b.WriteString(item)
	}

	return b.String()
}

var (
	matchStyle         = suggestionStyle.Bold(true)
	selectedMatchStyle = selectedStyle.Bold(true)
)

func renderCandidate(match fuzzy.Match, selected bool) string {
	base, hit := suggestionStyle, matchStyle
	if selected {
		base, hit = selectedStyle, selectedMatchStyle
	}

	var b strings.Builder

	next := 0

	for i, r := range match.Str {
		style := base
		if next < len(match.MatchedIndexes) && match.MatchedIndexes[next] == i {
			style = hit
			next++
		}

		b.WriteString(style.Render(string(r)))
	}

	return b.String()
}
