package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/sqfa/pkg"
)

// ErrVersion is returned when the running version does not satisfy the
// constraint given to version --check.
var ErrVersion = NewError("version constraint not satisfied")

// Version prints the semantic version of sqfa.
type Version struct {
	Check string `help:"Fail unless the version satisfies this constraint, e.g. '>= 0.1'" placeholder:"CONSTRAINT"`
}

// Run executes the version command.
func (v *Version) Run(ctx context.Context) error {
	version, err := pkg.SemVer()
	if err != nil {
		return ErrVersion.Wrap(err)
	}

	if v.Check != "" {
		ok, _, err := pkg.Satisfies(v.Check)
		if err != nil {
			return ErrVersion.Wrap(err).With(slog.String("constraint", v.Check))
		}

		if !ok {
			return ErrVersion.With(
				slog.String("constraint", v.Check),
				slog.String("version", version.String()))
		}
	}

	_, err = fmt.Fprintln(stdout(ctx), pkg.Name, version.String())

	return err
}
