package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/sqfa/analysis"
	"github.com/ardnew/sqfa/log"
)

// editSourceMsg is sent when the editor produced new source that parses.
type editSourceMsg struct{ source string }

// editUnchangedMsg is sent when the editor left the source as it was.
type editUnchangedMsg struct{}

// editDeclinedMsg is sent when the edited source did not parse and the
// user chose not to edit again.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process fails.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

const helpText = `
: Commands (Esc switches between SQF and command input)

  help     Show this help
  list     List visible variables and their types
  source   Print the accumulated source
  reset    Discard the accumulated source
  edit     Edit the accumulated source in $VISUAL or $EDITOR
  clear    Clear the screen
  quit     Leave the REPL (also: exit)

  Commands may be abbreviated to their first letter.

Input:
  Enter             Append the statements to the source and analyze it;
                    only diagnostics not reported before are printed
  Tab, Shift+Tab    Cycle through completions
  Space             Accept the selected completion
  Up, Down          Browse history, switching input mode to match
  Shift+Up/Down     Browse history of the current mode only
  Alt+Up/Down       Browse command history, then return to your input
  Ctrl+C            Clear the line, or quit when it is empty
  Ctrl+D            Quit on an empty line
`

// inputMode selects what the input line is read as.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

var (
	promptStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warningStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))

	prompts = [...]string{
		modeEval: promptStyle.Render(evalPrompt),
		modeCtrl: ctrlPromptStyle.Render(ctrlPrompt),
	}
)

// echo prints a submitted line after its prompt.
func echo(mode inputMode, line string) tea.Cmd {
	return tea.Println(prompts[mode] + inputStyle.Render(line))
}

func failure(err error) tea.Cmd {
	return tea.Println(errorStyle.Render("error: " + err.Error()))
}

// formatDiagnostics renders one styled line per diagnostic.
func formatDiagnostics(diags []analysis.Diagnostic) string {
	lines := make([]string, len(diags))

	for i, d := range diags {
		style := warningStyle
		if d.Severity == analysis.SeverityError {
			style = errorStyle
		}

		lines[i] = style.Render(d.String())
	}

	return strings.Join(lines, "\n")
}

// model is the Bubble Tea model of the REPL. Methods take and return it
// by value.
type model struct {
	ctx     func() context.Context
	session *Session
	history *History
	logger  log.Logger
	detour  *detour
	input   textinput.Model
	comp    completion
	saved   [2]snapshot // input of the mode not shown
	pos     int         // history position; History.Len when not browsing
	width   int
	mode    inputMode
	quit    bool
}

// detour remembers where Alt+Up/Down browsing started.
type detour struct {
	origin snapshot
	mode   inputMode
}

// Run analyzes the session source, prints its diagnostics, and starts the
// interactive loop. History is kept in cacheDir when it is not empty.
func Run(
	ctx context.Context,
	session *Session,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if session == nil {
		return ErrNoSession
	}

	diags, err := session.Load(ctx)
	if err != nil {
		return err
	}

	if len(diags) > 0 {
		fmt.Println(formatDiagnostics(diags))
	}

	var path string
	if cacheDir != "" {
		path = filepath.Join(cacheDir, baseHistory)
	}

	history := NewHistory(path, DefaultHistoryLimit)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "history not loaded", slog.Any("error", err))
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("history", path),
		slog.Int("history_entries", history.Len()),
		slog.Int("source_bytes", len(session.Source())),
		slog.Int("diagnostics", len(diags)))

	_, err = tea.NewProgram(newModel(ctx, session, history, logger), tea.WithContext(ctx)).Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	session *Session,
	history *History,
	logger log.Logger,
) model {
	in := textinput.New()
	in.Prompt = prompts[modeEval]
	in.CharLimit = 1024
	in.Width = defaultWidth
	in.Focus()

	return model{
		ctx:     func() context.Context { return ctx },
		session: session,
		history: history,
		logger:  logger,
		input:   in,
		comp:    completion{sel: -1},
		pos:     history.Len(),
		width:   defaultWidth,
	}
}

func (m model) Init() tea.Cmd { return textinput.Blink }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editSourceMsg:
		diags, err := m.session.Replace(m.ctx(), msg.source)
		if err != nil {
			return m, failure(err)
		}

		m.logger.TraceContext(m.ctx(), "repl source replaced",
			slog.Int("diagnostics", len(diags)))

		out := resultStyle.Render("source updated")
		if len(diags) > 0 {
			out += "\n" + formatDiagnostics(diags)
		}

		return m, tea.Println(out)

	case editUnchangedMsg:
		return m, tea.Println(hintStyle.Render("source unchanged"))

	case editDeclinedMsg:
		return m, tea.Println(hintStyle.Render("edit discarded"))

	case editErrorMsg:
		return m, failure(msg.err)
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quit {
		return ""
	}

	return m.input.View() + "\n" + m.hintLine() + "\n"
}

// hintLine returns the line shown below the input: the history position
// while browsing, usage on an empty line, the parameters of the macro call
// or the forms of the keyword at the cursor, and otherwise the matches.
func (m model) hintLine() string {
	line, cursor := m.input.Value(), m.input.Position()

	switch {
	case m.pos < m.history.Len():
		return hintStyle.Render(lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.pos+1)) +
			"/" + strconv.Itoa(m.history.Len()))

	case strings.TrimSpace(line) == "" && m.mode == modeEval:
		return hintStyle.Render("Type SQF statements or press Esc for commands")

	case strings.TrimSpace(line) == "":
		return hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)")

	case m.mode == modeCtrl:
		return m.comp.bar(m.width)
	}

	if call := detectMacroCall(line, cursor); call.inCall {
		if sig, params := macroSignature(m.session, call.name); sig != "" {
			return renderSignatureHint(sig, params, call.argIndex)
		}
	}

	if !m.comp.cycling {
		word, _, _ := wordBounds(line, cursor)
		if hint := renderKeywordHint(keywordSignatures(m.session, word)); hint != "" {
			return hint
		}
	}

	return m.comp.bar(m.width)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctx(), "repl key",
		slog.String("key", msg.String()),
		slog.Int("mode", int(m.mode)))

	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quit = true

			return m, tea.Quit
		}

		if msg.Type == tea.KeyCtrlC {
			m.input.SetValue("")
			m.comp.cycling, m.detour, m.pos = false, nil, m.history.Len()

			return m.refresh(false), nil
		}

		return m, nil

	case tea.KeyEnter:
		m.detour = nil

		if m.comp.cycling && len(m.comp.matches) > 0 {
			m.comp.cycling = false

			return m.refresh(true), nil
		}

		return m.submit()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp, tea.KeyDown:
		dir := 1
		if msg.Type == tea.KeyUp {
			dir = -1
		}

		if msg.Alt {
			return m.browseCtrl(dir), nil
		}

		return m.browse(dir), nil

	case tea.KeyShiftUp:
		return m.browseMode(-1), nil

	case tea.KeyShiftDown:
		return m.browseMode(1), nil

	case tea.KeyEsc:
		if m.comp.cycling {
			return m.uncycle(), nil
		}

		m.detour = nil

		return m.enter(m.mode ^ 1), nil
	}

	// Typing keeps a cycle going and may auto-complete; any other key
	// ends both the cycle and a detour.
	typed := msg.Type == tea.KeyRunes
	if !typed {
		m.comp.cycling, m.detour = false, nil
	}

	var cmd tea.Cmd

	m.pos = m.history.Len()
	m.input, cmd = m.input.Update(msg)

	return m.refresh(typed), cmd
}

// submit records the input in history and runs it as SQF or a command.
func (m model) submit() (model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return m, nil
	}

	m.saved = [2]snapshot{}
	m.input.SetValue("")

	if err := m.history.Add(line, m.mode); err != nil {
		m.logger.DebugContext(m.ctx(), "history not saved", slog.Any("error", err))
	}

	m.pos = m.history.Len()
	m = m.refresh(false)

	if m.mode == modeCtrl {
		return m.command(line)
	}

	return m, tea.Sequence(echo(modeEval, line), m.eval(line))
}

// eval appends input to the session and prints the new diagnostics.
func (m model) eval(input string) tea.Cmd {
	diags, err := m.session.Eval(m.ctx(), input)

	m.logger.TraceContext(m.ctx(), "repl eval",
		slog.String("input", input),
		slog.Int("diagnostics", len(diags)))

	switch {
	case err != nil:
		return failure(err)
	case len(diags) == 0:
		return tea.Println(hintStyle.Render("ok"))
	default:
		return tea.Println(formatDiagnostics(diags))
	}
}

type commandFunc func(model) (model, tea.Cmd)

// commands maps each of [ctrlCommands] to its action.
var commands = map[string]commandFunc{
	"help": func(m model) (model, tea.Cmd) { return m, tea.Println(helpText) },
	"list": func(m model) (model, tea.Cmd) { return m, tea.Println(m.listVariables()) },
	"source": func(m model) (model, tea.Cmd) {
		src := m.session.Source()
		if src == "" {
			src = hintStyle.Render("(empty)")
		}

		return m, tea.Println(src)
	},
	"reset": func(m model) (model, tea.Cmd) {
		m.session.Reset()

		return m, tea.Println(hintStyle.Render("source cleared"))
	},
	"edit":  func(m model) (model, tea.Cmd) { return m, m.edit() },
	"clear": func(m model) (model, tea.Cmd) { return m, tea.ClearScreen },
	"quit": func(m model) (model, tea.Cmd) {
		m.quit = true

		return m, tea.Quit
	},
}

// lookupCommand resolves a command name or its first letter.
func lookupCommand(name string) (commandFunc, bool) {
	if name == "exit" {
		name = "quit"
	}

	for _, c := range ctrlCommands {
		if name == c || name == c[:1] {
			return commands[c], true
		}
	}

	return nil, false
}

func (m model) command(line string) (model, tea.Cmd) {
	name, args, _ := strings.Cut(line, " ")

	m.logger.TraceContext(m.ctx(), "repl command",
		slog.String("command", name),
		slog.String("args", strings.TrimSpace(args)))

	run, ok := lookupCommand(name)
	if !ok {
		return m, tea.Sequence(echo(modeCtrl, line),
			tea.Println(errorStyle.Render("Unknown command: "+name+" (try 'help')")))
	}

	m, cmd := run(m)

	return m, tea.Sequence(echo(modeCtrl, line), cmd)
}

func (m model) edit() tea.Cmd {
	cmd := &editSourceCommand{
		session: m.session,
		ctxFunc: m.ctx,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case !cmd.changed:
			return editUnchangedMsg{}
		default:
			return editSourceMsg{source: cmd.edited}
		}
	})
}

func (m model) listVariables() string {
	vars := m.session.Variables()
	if len(vars) == 0 {
		return hintStyle.Render("  (no variables)")
	}

	lines := make([]string, len(vars))
	for i, v := range vars {
		lines[i] = "  " + v.Name + " " + hintStyle.Render(v.Kind.String())
	}

	return strings.Join(lines, "\n")
}

// show loads history entry i into the input.
func (m model) show(i int, e HistoryEntry) model {
	m.pos = i
	m.restore(snapshot{e.Line, len(e.Line)})

	return m.refresh(false)
}

// leaveHistory stops browsing with an empty input.
func (m model) leaveHistory() model {
	m.pos = m.history.Len()
	m.input.SetValue("")

	return m.refresh(false)
}

// browse steps through all history, switching mode to match each entry.
func (m model) browse(dir int) model {
	i := m.pos + dir
	if i < 0 {
		return m
	}

	e, err := m.history.Entry(i)
	if err != nil {
		if dir > 0 {
			return m.leaveHistory()
		}

		return m
	}

	return m.enter(e.Mode).show(i, e)
}

// find returns the nearest entry in dir from the current position that was
// entered in mode.
func (m model) find(dir int, mode inputMode) (int, HistoryEntry, bool) {
	for i := m.pos + dir; i >= 0 && i < m.history.Len(); i += dir {
		if e, err := m.history.Entry(i); err == nil && e.Mode == mode {
			return i, e, true
		}
	}

	return 0, HistoryEntry{}, false
}

// browseMode steps through the history of the current mode.
func (m model) browseMode(dir int) model {
	if i, e, ok := m.find(dir, m.mode); ok {
		return m.show(i, e)
	}

	if dir > 0 && m.pos < m.history.Len() {
		return m.leaveHistory()
	}

	return m
}

// browseCtrl steps through command history from either mode. Running off
// either end returns to the mode and input from before.
func (m model) browseCtrl(dir int) model {
	if m.detour == nil {
		m.detour = &detour{origin: m.snapshot(), mode: m.mode}
		m = m.enter(modeCtrl)
	}

	if i, e, ok := m.find(dir, modeCtrl); ok {
		return m.show(i, e)
	}

	d := m.detour
	m.detour = nil
	m = m.enter(d.mode)
	m.pos = m.history.Len()
	m.restore(d.origin)

	return m.refresh(false)
}

// enter shows mode, keeping the input of the mode left.
func (m model) enter(mode inputMode) model {
	if mode == m.mode {
		return m
	}

	m.saved[m.mode] = m.snapshot()
	m.mode = mode
	m.input.Prompt = prompts[mode]
	m.restore(m.saved[mode])

	return m.refresh(false)
}
