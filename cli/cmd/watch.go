package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/sqfa/log"
)

var headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

// Watch re-analyzes source files whenever they change.
type Watch struct {
	Analysis analysisFlags `embed:""`

	Format   string        `default:"text"           enum:"text,json,yaml" help:"Output format (${enum})" short:"o"`
	Filter   string        `help:"Report only diagnostics matching this expression" short:"F"`
	Ext      []string      `default:".sqf,.hpp,.inc" help:"Extensions of files analyzed in watched directories"`
	Debounce time.Duration `default:"100ms"          help:"Delay before re-analyzing a changed file"`

	Paths []string `arg:"" help:"Files or directories to watch" name:"path" type:"path"`
}

// watchSet records what a watcher observes.
type watchSet struct {
	files map[string]bool // explicitly named files
	dirs  map[string]bool // directories whose matching files are analyzed
	ext   []string
}

// Run executes the watch command. It returns when ctx is canceled.
func (w *Watch) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	lt, err := w.Analysis.linter(ctx, w.Filter)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrWatch.Wrap(err)
	}
	defer watcher.Close()

	set, err := w.track(watcher)
	if err != nil {
		return err
	}

	out := stdout(ctx)

	for _, file := range set.initial() {
		w.report(ctx, out, lt, file)
	}

	log.InfoContext(ctx, "watching",
		slog.Int("files", len(set.files)),
		slog.Int("dirs", len(set.dirs)))

	return w.loop(ctx, watcher, set, lt, out)
}

// track adds every path to watcher. Files are watched through their
// parent directory so that editors replacing a file are still seen.
func (w *Watch) track(watcher *fsnotify.Watcher) (*watchSet, error) {
	set := &watchSet{
		files: make(map[string]bool),
		dirs:  make(map[string]bool),
		ext:   w.Ext,
	}

	watched := make(map[string]bool)

	for _, path := range w.Paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, ErrWatch.Wrap(err).With(slog.String("path", path))
		}

		info, err := os.Stat(abs)
		if err != nil {
			return nil, ErrWatch.Wrap(err).With(slog.String("path", path))
		}

		dir := abs
		if info.IsDir() {
			set.dirs[abs] = true
		} else {
			set.files[abs] = true
			dir = filepath.Dir(abs)
		}

		if watched[dir] {
			continue
		}

		if err := watcher.Add(dir); err != nil {
			return nil, ErrWatch.Wrap(err).With(slog.String("path", dir))
		}

		watched[dir] = true
	}

	return set, nil
}

// initial returns the files analyzed when watching starts, sorted.
func (s *watchSet) initial() []string {
	files := maps.Clone(s.files)

	for dir := range s.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}

		for _, e := range entries {
			name := filepath.Join(dir, e.Name())
			if !e.IsDir() && s.matches(name) {
				files[name] = true
			}
		}
	}

	return slices.Sorted(maps.Keys(files))
}

// matches reports whether name is a file to analyze.
func (s *watchSet) matches(name string) bool {
	if s.files[name] {
		return true
	}

	if !s.dirs[filepath.Dir(name)] {
		return false
	}

	ext := filepath.Ext(name)

	return slices.ContainsFunc(s.ext, func(e string) bool {
		return strings.EqualFold(e, ext)
	})
}

func (w *Watch) loop(
	ctx context.Context,
	watcher *fsnotify.Watcher,
	set *watchSet,
	lt *linter,
	out io.Writer,
) error {
	var (
		pending = make(map[string]bool)
		timer   <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}

			if !set.matches(ev.Name) {
				continue
			}

			log.TraceContext(ctx, "file changed",
				slog.String("file", ev.Name),
				slog.String("op", ev.Op.String()))

			pending[ev.Name] = true
			timer = time.After(w.Debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			log.WarnContext(ctx, "watch error", slog.Any("error", err))

		case <-timer:
			for _, file := range slices.Sorted(maps.Keys(pending)) {
				w.report(ctx, out, lt, file)
			}

			clear(pending)

			timer = nil
		}
	}
}

// report analyzes file and writes a header followed by its diagnostics.
// Failures are logged; watching continues.
func (w *Watch) report(ctx context.Context, out io.Writer, lt *linter, file string) {
	name := file
	if wd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(wd, file); err == nil && !strings.HasPrefix(rel, "..") {
			name = rel
		}
	}

	diags, err := lt.lint(ctx, Source{Name: name, Path: file})
	if err != nil {
		log.WarnContext(ctx, "analysis failed",
			slog.String("file", name),
			slog.Any("error", err))

		return
	}

	if w.Format == formatText || w.Format == "" {
		header := fmt.Sprintf("%s %s: %d diagnostics",
			time.Now().Format(time.TimeOnly), name, len(diags))
		fmt.Fprintln(out, headerStyle.Render(header))
	}

	if err := writeDiagnostics(ctx, out, w.Format, diags); err != nil {
		log.WarnContext(ctx, "write diagnostics",
			slog.String("file", name),
			slog.Any("error", err))
	}
}
