package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/xyproto/env/v2"

	"github.com/ardnew/sqfa/log"
)

const defaultEditor = "vi"

// editSourceCommand implements [tea.ExecCommand]. It writes the session
// source to a temp file, opens the user's editor, and checks that the
// result parses. On a parse error the user is asked to edit again;
// declining returns [ErrEditDeclined].
type editSourceCommand struct {
	session *Session
	ctxFunc func() context.Context
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	edited  string
	changed bool
}

// SetStdin sets the stdin reader for the command.
func (c *editSourceCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editSourceCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editSourceCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-check-retry loop.
func (c *editSourceCommand) Run() error {
	ctx := c.ctxFunc()

	f, err := os.CreateTemp(os.TempDir(), "sqfa-repl-*.sqf")
	if err != nil {
		return err
	}

	path := f.Name()

	defer os.Remove(path)

	if err := f.Chmod(0o600); err != nil {
		f.Close()

		return err
	}

	f.Close()

	content := c.session.Source()

	for {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, path); err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		content = string(data)
		if content == c.session.Source() {
			return nil
		}

		res, err := c.session.Check(ctx, content)
		if err != nil {
			return err
		}

		c.logger.TraceContext(
			ctx,
			"editor check",
			slog.Int("content_length", len(content)),
			slog.Bool("parsed", res.ParseErr == nil),
		)

		if res.ParseErr == nil {
			c.edited, c.changed = content, true

			return nil
		}

		fmt.Fprintf(c.stderr, "\nParse error: %s\n", res.ParseErr)
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}
	}
}

// editorCommand returns the editor named by $VISUAL or $EDITOR.
func editorCommand() string {
	return env.Str("VISUAL", env.Str("EDITOR", defaultEditor))
}

func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	args := strings.Fields(editorCommand())
	if len(args) == 0 {
		args = []string{defaultEditor}
	}

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
