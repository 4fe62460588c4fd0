package lang

import (
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/sqfa/lang/token"
)

// Parse failures. Derived errors match these under [errors.Is].
var (
	ErrParse           = NewError("parse error")
	ErrReadInput       = NewError("failed to read input")
	ErrUnterminated    = NewError("unterminated literal")
	ErrUnexpectedClose = NewError("unexpected closing bracket")
	ErrUnclosed        = NewError("bracket not closed")
	ErrEmptyElement    = NewError("Array cannot have an empty element")
	ErrArrayStatement  = NewError("statement cannot be in an array")
	ErrMacroDepth      = NewError("macro expansion too deep")
	ErrMacroSyntax     = NewError("malformed macro")
)

// Error represents an error with an optional source position and
// structured logging attributes. It implements both error and
// slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error
	pos   token.Position
	attrs []slog.Attr
}

// NewError returns a sentinel error.
func NewError(msg string) *Error { return &Error{msg: msg} }

// WrapError returns the *Error in the chain of err, or a new one caused
// by err.
func WrapError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return &Error{err: err}
}

// Error has the form "line:col: <msg>: <detail>: <cause>", omitting
// any part that is not set.
func (e *Error) Error() string {
	part := make([]string, 0, 4)

	if e.pos.IsValid() {
		part = append(part, e.pos.String())
	}

	if e.msg != "" {
		part = append(part, e.msg)
	}

	for _, a := range e.attrs {
		if a.Key == "detail" {
			part = append(part, a.Value.String())
		}
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel this error was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg == e.msg && t.msg != ""
}

// Position returns the source position of the error, if any.
func (e *Error) Position() token.Position { return e.pos }

// Message returns the error text without the position prefix.
func (e *Error) Message() string { return e.WithPosition(token.Position{}).Error() }

// DetailText returns the detail attached with [Error.Detail].
func (e *Error) DetailText() string {
	for _, a := range e.attrs {
		if a.Key == "detail" {
			return a.Value.String()
		}
	}

	return ""
}

// LogValue groups the message, position, cause and attributes.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+3)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.pos.IsValid() {
		attrs = append(attrs, slog.String("pos", e.pos.String()))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(slices.Concat(attrs, e.attrs)...)
}

// Wrap returns a copy of e caused by err.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		pos:   e.pos,
		attrs: e.attrs,
	}
}

// WithPosition returns a copy of e located at pos.
func (e *Error) WithPosition(pos token.Position) *Error {
	return &Error{
		msg:   e.msg,
		err:   e.err,
		pos:   pos,
		attrs: e.attrs,
	}
}

// Detail attaches a human readable detail that is included in the
// error message.
func (e *Error) Detail(detail string) *Error {
	return e.With(slog.String("detail", detail))
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	return &Error{
		msg:   e.msg,
		err:   e.err,
		pos:   e.pos,
		attrs: slices.Concat(e.attrs, attrs),
	}
}
