package repl

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typeText(m model, text string) model {
	for _, r := range text {
		m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	return m
}

func TestModel_EvalAppendsSource(t *testing.T) {
	t.Parallel()

	s := NewSession(nil, "")
	m := newModel(context.Background(), s, NewHistory("", 0), testLogger())

	m.input.SetValue("private _a = 1;")
	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})

	if s.Source() != "private _a = 1;" {
		t.Errorf("Source() = %q", s.Source())
	}

	if m.history.Len() != 1 || m.input.Value() != "" {
		t.Errorf("history %d, input %q after enter", m.history.Len(), m.input.Value())
	}
}

func TestModel_ToggleMode(t *testing.T) {
	t.Parallel()

	m := newModel(context.Background(), NewSession(nil, ""), NewHistory("", 0), testLogger())
	m = typeText(m, "hi")

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeCtrl || m.input.Value() != "" {
		t.Fatalf("mode %d, input %q after Esc", m.mode, m.input.Value())
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeEval || m.input.Value() != "hi" {
		t.Errorf("mode %d, input %q after second Esc", m.mode, m.input.Value())
	}
}

func TestModel_ResetCommand(t *testing.T) {
	t.Parallel()

	s := NewSession(nil, "private _a = 1;")
	m := newModel(context.Background(), s, NewHistory("", 0), testLogger())
	m = m.enter(modeCtrl)

	m.input.SetValue("reset")
	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})

	if s.Source() != "" {
		t.Errorf("Source() = %q after reset", s.Source())
	}

	if m.quit {
		t.Error("reset quit the REPL")
	}

	m.input.SetValue("quit")
	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})

	if !m.quit || m.View() != "" {
		t.Error("quit did not stop the REPL")
	}
}

func TestModel_HistoryNavigation(t *testing.T) {
	t.Parallel()

	h := NewHistory("", 0)
	_ = h.Add("private _a = 1;", modeEval)
	_ = h.Add("list", modeCtrl)

	m := newModel(context.Background(), NewSession(nil, ""), h, testLogger())

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyUp})
	if m.input.Value() != "list" || m.mode != modeCtrl {
		t.Fatalf("Up = %q in mode %d, want list in ctrl", m.input.Value(), m.mode)
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyUp})
	if m.input.Value() != "private _a = 1;" || m.mode != modeEval {
		t.Fatalf("Up = %q in mode %d", m.input.Value(), m.mode)
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyDown})

	if m.input.Value() != "" || m.pos != h.Len() {
		t.Errorf("Down past end = %q at %d", m.input.Value(), m.pos)
	}
}

func TestModel_HintLine(t *testing.T) {
	t.Parallel()

	s := NewSession(nil, "#define ADD(a,b) (a + b)\n")
	if _, err := s.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	m := newModel(context.Background(), s, NewHistory("", 0), testLogger())

	if hint := m.hintLine(); !strings.Contains(hint, "SQF statements") {
		t.Errorf("empty hint = %q", hint)
	}

	m.input.SetValue("ADD(1, ")
	m.input.SetCursor(7)

	if hint := m.hintLine(); !strings.Contains(hint, "ADD") || !strings.Contains(hint, "b") {
		t.Errorf("macro hint = %q", hint)
	}

	m.input.SetValue("hint")
	m.input.SetCursor(4)

	if hint := m.hintLine(); !strings.Contains(hint, "String") {
		t.Errorf("keyword hint = %q", hint)
	}
}

func TestFormatDiagnostics(t *testing.T) {
	t.Parallel()

	s := NewSession(nil, "")

	diags, err := s.Eval(context.Background(), "_a = 1; private 1;")
	if err != nil {
		t.Fatal(err)
	}

	out := formatDiagnostics(diags)
	if strings.Count(out, "\n") != len(diags)-1 || !strings.Contains(out, "private") {
		t.Errorf("formatDiagnostics() = %q", out)
	}
}

func TestLookupCommand(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"help", "h", "quit", "q", "exit", "e", "edit", "c"} {
		if _, ok := lookupCommand(name); !ok {
			t.Errorf("lookupCommand(%q) not found", name)
		}
	}

	for _, name := range []string{"", "hel", "x", "quitt"} {
		if _, ok := lookupCommand(name); ok {
			t.Errorf("lookupCommand(%q) found", name)
		}
	}
}

func TestModel_CommandHistoryDetour(t *testing.T) {
	t.Parallel()

	h := NewHistory("", 0)
	_ = h.Add("list", modeCtrl)
	_ = h.Add("private _a = 1;", modeEval)

	m := newModel(context.Background(), NewSession(nil, ""), h, testLogger())
	m = typeText(m, "hint")

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyUp, Alt: true})
	if m.mode != modeCtrl || m.input.Value() != "list" {
		t.Fatalf("Alt+Up = %q in mode %d, want list in ctrl", m.input.Value(), m.mode)
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyDown, Alt: true})
	if m.mode != modeEval || m.input.Value() != "hint" || m.detour != nil {
		t.Errorf("Alt+Down = %q in mode %d, want the original input", m.input.Value(), m.mode)
	}
}
