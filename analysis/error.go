package analysis

import (
	"errors"
	"log/slog"
	"strings"
)

// Failures of signature loading and diagnostic filtering.
var (
	ErrSignatureFile = NewError("invalid signature file")
	ErrSignature     = NewError("invalid signature")
	ErrVersion       = NewError("signature file requires a different version")
	ErrFilter        = NewError("invalid diagnostic filter")
	ErrSeverity      = NewError("unknown severity")
)

// Error represents an error with structured logging attributes. It
// implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError returns a sentinel error.
func NewError(msg string) *Error { return &Error{msg: msg} }

// Error implements the error interface.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel this error was derived from.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return e.msg != "" && e.msg == t.msg
}

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)
	attrs = append(attrs, slog.String("msg", e.msg))

	if e.err != nil {
		attrs = append(attrs, slog.String("err", e.err.Error()))
	}

	attrs = append(attrs, e.attrs...)

	return slog.GroupValue(attrs...)
}

// Wrap returns a copy of e that wraps err.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: e.attrs}
}

// With returns a copy of e with additional attributes.
func (e *Error) With(attrs ...slog.Attr) *Error {
	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: append(append([]slog.Attr(nil), e.attrs...), attrs...),
	}
}
