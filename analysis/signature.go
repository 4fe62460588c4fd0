package analysis

import (
	"log/slog"
	"strings"

	"github.com/ardnew/sqfa/lang/token"
)

// Form is the number of operands a keyword takes.
type Form int

const (
	Nular Form = iota
	Unary
	Binary
)

var formNames = [...]string{Nular: "nular", Unary: "unary", Binary: "binary"}

// String returns the form name.
func (f Form) String() string {
	if f < 0 || int(f) >= len(formNames) {
		return "invalid"
	}

	return formNames[f]
}

// Arity returns the keyword table flag for f.
func (f Form) Arity() token.Arity {
	switch f {
	case Unary:
		return token.Unary
	case Binary:
		return token.Binary
	default:
		return token.Nular
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f Form) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Form) UnmarshalText(b []byte) error {
	for i, name := range formNames {
		if strings.EqualFold(name, string(b)) {
			*f = Form(i)

			return nil
		}
	}

	return ErrSignature.With(slog.String("form", string(b)))
}

// Interpreter is the view of the analyzer available to signature hooks.
type Interpreter interface {
	// ExecuteCode analyzes the body of code in a new scope holding _this
	// and locals, and returns the value of its last statement.
	ExecuteCode(code, this *Value, locals map[string]*Value) *Value
	// AddPrivates declares the named variables in the current scope. Each
	// name is a string value; names without a known literal are ignored.
	AddPrivates(names ...*Value)
	// Namespace makes the named namespace current and returns a function
	// restoring the previous one.
	Namespace(name string) (restore func())
	// Report records a diagnostic.
	Report(pos token.Position, severity Severity, msg string)
}

// Signature describes one form of a keyword.
type Signature struct {
	Keyword string `yaml:"keyword" json:"keyword"`
	Form    Form   `yaml:"form"    json:"form"`
	Left    Kind   `yaml:"left"    json:"left,omitempty"`
	Right   Kind   `yaml:"right"   json:"right,omitempty"`
	Return  Kind   `yaml:"return"  json:"return"`

	// Locals returns the implicit variables visible in code operands.
	Locals func(ops []*Value) map[string]*Value `yaml:"-" json:"-"`
	// Execute computes the result. When nil the result is a value of kind
	// Return and code operands of kind Code are analyzed with Locals.
	Execute func(in Interpreter, ops []*Value) *Value `yaml:"-" json:"-"`
}

// Params returns the operand kinds: none, [right] or [left, right].
func (s *Signature) Params() []Kind {
	switch s.Form {
	case Unary:
		return []Kind{s.Right}
	case Binary:
		return []Kind{s.Left, s.Right}
	default:
		return nil
	}
}

// Loose reports whether ops could match s: the count agrees and every
// operand either has the declared kind or is of unknown kind.
func (s *Signature) Loose(ops []*Value) bool {
	params := s.Params()
	if len(params) != len(ops) {
		return false
	}

	for i, p := range params {
		if p != Any && ops[i].Kind != Nothing && ops[i].Kind != p {
			return false
		}
	}

	return true
}

// Strict reports whether every operand has exactly the declared kind.
func (s *Signature) Strict(ops []*Value) bool {
	params := s.Params()
	if len(params) != len(ops) {
		return false
	}

	for i, p := range params {
		if p != Any && ops[i].Kind != p {
			return false
		}
	}

	return true
}

// same reports whether s and o describe the same form of a keyword.
func (s *Signature) same(o *Signature) bool {
	return strings.EqualFold(s.Keyword, o.Keyword) && s.Form == o.Form &&
		s.Left == o.Left && s.Right == o.Right
}

// String renders the signature as "left keyword right -> return".
func (s *Signature) String() string {
	var sb strings.Builder

	if s.Form == Binary {
		sb.WriteString(s.Left.String() + " ")
	}

	sb.WriteString(s.Keyword)

	if s.Form != Nular {
		sb.WriteString(" " + s.Right.String())
	}

	sb.WriteString(" -> " + s.Return.String())

	return sb.String()
}
