package pkg

import (
	"fmt"
	"strings"
)

// Error is an error chain ordered from the innermost cause outward. Each
// element is matched by [errors.Is], so a sentinel is tested against its
// first element:
//
//	errors.Is(err, pkg.ErrNoInput[0])
type Error []error

var (
	// ErrReadInput is wrapped around the I/O error of an unreadable source.
	ErrReadInput = MakeErrorf("failed to read input")

	// ErrNoInput is returned when none of the given sources could be opened.
	ErrNoInput = MakeErrorf("no input files")

	// ErrInvalidFormat is wrapped with the rejected name and the valid ones.
	ErrInvalidFormat = MakeErrorf("invalid format")

	// ErrDiagnostics is returned when analysis reported diagnostics at or
	// above the failing severity. They have been printed already.
	ErrDiagnostics = MakeErrorf("analysis reported problems")
)

// MakeError flattens errs into one chain, skipping nil values. Nested
// chains are expanded in place.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		e = append(e, UnwrapErrors(err)...)
	}

	return e
}

// MakeErrorf returns a single-element chain holding a formatted error.
func MakeErrorf(format string, args ...any) Error {
	return Error{fmt.Errorf(format, args...)}
}

// Error joins the messages of the chain with ": ".
func (e Error) Error() string {
	msg := make([]string, len(e))
	for i, err := range e {
		msg[i] = err.Error()
	}

	return strings.Join(msg, ": ")
}

// Wrap returns a new chain with err appended. The receiver is not
// modified, so sentinels can be wrapped concurrently.
func (e Error) Wrap(err ...error) Error {
	return append(e[:len(e):len(e)], err...)
}

// Wrapf is [Error.Wrap] with a formatted error.
func (e Error) Wrapf(format string, args ...any) Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

func (e Error) Unwrap() []error { return e }

// UnwrapErrors expands err and everything it wraps into a chain, innermost
// first. It returns nil for a nil err.
func UnwrapErrors(err error) Error {
	var chain Error

	switch u := err.(type) {
	case nil:
		return nil
	case interface{ Unwrap() []error }:
		for _, inner := range u.Unwrap() {
			chain = append(chain, UnwrapErrors(inner)...)
		}
	case interface{ Unwrap() error }:
		chain = UnwrapErrors(u.Unwrap())
	}

	return append(chain, err)
}
