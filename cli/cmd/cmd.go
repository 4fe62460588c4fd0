package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/klauspost/readahead"
	"golang.org/x/sys/unix"

	"github.com/ardnew/sqfa/log"
	"github.com/ardnew/sqfa/pkg"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// stdinName is the file name reported in diagnostics for stdin.
const stdinName = "<stdin>"

// Source is one input file named on the command line.
type Source struct {
	// Name is the path as given, or "<stdin>".
	Name string
	// Path is the resolved path, empty for stdin.
	Path string
}

// IsStdin reports whether s reads standard input.
func (s Source) IsStdin() bool { return s.Path == "" }

// Read returns the whole content of s.
func (s Source) Read(stdin io.Reader) (string, error) {
	var r io.Reader = stdin

	if !s.IsStdin() {
		f, err := os.Open(s.Path)
		if err != nil {
			return "", pkg.ErrReadInput.Wrap(err)
		}
		defer f.Close()

		r = f
	}

	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", pkg.ErrReadInput.Wrap(err)
	}

	return string(data), nil
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// sourceFiles resolves the given paths to distinct sources in order.
//
// Duplicates are detected by resolving symlinks and comparing device/inode
// pairs. All occurrences of "-" are replaced with a single stdin source,
// placed last so it reads after all regular files. Paths that cannot be
// resolved are logged and skipped; [pkg.ErrNoInput] is returned when no
// source remains.
func sourceFiles(ctx context.Context, paths []string) ([]Source, error) {
	var (
		srcs     = make([]Source, 0, len(paths))
		seen     = make(map[fileKey]struct{})
		hasStdin bool
	)

	stdinKey, stdinOK := statKey("/dev/stdin")

	for _, path := range paths {
		if path == stdinSource {
			hasStdin = true

			continue
		}

		src, key, err := resolveSource(path)
		if err != nil {
			log.WarnContext(ctx, "skipping input",
				slog.String("file", path),
				slog.Any("error", err))

			continue
		}

		// A path naming the terminal or pipe behind stdin reads stdin.
		if stdinOK && key == stdinKey {
			hasStdin = true

			continue
		}

		if _, dup := seen[key]; dup {
			log.DebugContext(ctx, "skipping duplicate input",
				slog.String("file", path))

			continue
		}

		seen[key] = struct{}{}
		srcs = append(srcs, src)
	}

	if hasStdin {
		srcs = append(srcs, Source{Name: stdinName})
	}

	if len(srcs) == 0 {
		return nil, pkg.ErrNoInput
	}

	return srcs, nil
}

// resolveSource resolves path to an absolute, symlink-free path and
// returns its device/inode key.
func resolveSource(path string) (Source, fileKey, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Source{}, fileKey{}, err
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return Source{}, fileKey{}, err
	}

	var st unix.Stat_t
	if err := unix.Stat(resolved, &st); err != nil {
		return Source{}, fileKey{}, err
	}

	if st.Mode&unix.S_IFMT == unix.S_IFDIR {
		return Source{}, fileKey{}, unix.EISDIR
	}

	return Source{Name: path, Path: resolved},
		fileKey{dev: uint64(st.Dev), ino: uint64(st.Ino)}, nil //nolint:unconvert
}

// statKey returns the device/inode key of path.
func statKey(path string) (fileKey, bool) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return fileKey{}, false
	}

	return fileKey{dev: uint64(st.Dev), ino: uint64(st.Ino)}, true //nolint:unconvert
}
