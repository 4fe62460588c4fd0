// Package pkg holds the sqfa build metadata, platform paths and the error
// chain type shared by the other packages.
package pkg

import (
	_ "embed"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is the semantic version embedded from the VERSION file.
//
//go:embed VERSION
var Version string //nolint:gochecknoglobals

const (
	// Name is the command name. It also names the config and cache
	// directories and prefixes environment variables.
	Name = "sqfa"
	// Description is the one-line summary shown in help output.
	Description = "Static analyzer for SQF mission scripts"
)

// ErrBadVersion is returned when [Version] or a version constraint does
// not parse.
var ErrBadVersion = MakeErrorf("invalid version")

// SemVer returns [Version] parsed as a semantic version.
func SemVer() (*semver.Version, error) {
	v, err := semver.NewVersion(strings.TrimSpace(Version))
	if err != nil {
		return nil, ErrBadVersion.Wrap(err)
	}

	return v, nil
}

// Satisfies reports whether [Version] meets constraint, e.g. ">= 0.1, < 2".
// The parsed version is returned with the result.
func Satisfies(constraint string) (bool, *semver.Version, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, nil, ErrBadVersion.Wrap(err)
	}

	v, err := SemVer()
	if err != nil {
		return false, nil, err
	}

	return c.Check(v), v, nil
}
