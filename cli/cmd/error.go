package cmd

import (
	"errors"
	"log/slog"
	"slices"
)

// Error is a command failure carrying structured attributes. Sentinels are
// created with [NewError]; [Error.Wrap] and [Error.With] derive values that
// still match their sentinel under [errors.Is].
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError returns a sentinel error with the given message.
func NewError(msg string) *Error { return &Error{msg: msg} }

var (
	ErrJSONMarshal = NewError("marshal JSON")
	ErrYAMLMarshal = NewError("marshal YAML")
	ErrWriteConfig = NewError("write configuration file")
	ErrFileExists  = NewError("file exists (use --force to overwrite)")
	ErrSignatures  = NewError("load signature overrides")
	ErrDefine      = NewError("invalid macro definition")
	ErrQuery       = NewError("query syntax tree")
	ErrWatch       = NewError("watch files")
)

// Error joins the message and the cause with ": ", omitting either when
// empty.
func (e *Error) Error() string {
	switch {
	case e.err == nil:
		return e.msg
	case e.msg == "":
		return e.err.Error()
	default:
		return e.msg + ": " + e.err.Error()
	}
}

func (e *Error) Unwrap() error { return e.err }

// Is matches any *Error with the same message.
func (e *Error) Is(target error) bool {
	var t *Error

	return errors.As(target, &t) && e.msg == t.msg
}

// LogValue groups the message, the cause and the attributes.
func (e *Error) LogValue() slog.Value {
	var head []slog.Attr

	if e.msg != "" {
		head = append(head, slog.String("error", e.msg))
	}

	if e.err != nil {
		head = append(head, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(slices.Concat(head, e.attrs)...)
}

// Wrap returns a copy of e caused by err.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: e.attrs}
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	return &Error{msg: e.msg, err: e.err, attrs: slices.Concat(e.attrs, attrs)}
}
