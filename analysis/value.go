package analysis

import (
	"log/slog"
	"strings"

	"github.com/ardnew/sqfa/lang"
	"github.com/ardnew/sqfa/lang/token"
)

// Kind identifies the symbolic type of a value.
type Kind int

const (
	Nothing Kind = iota
	Number
	String
	Boolean
	Array
	Code
	Object
	Private // pending "private _x" declaration
	For     // partially applied for loop

	// Any appears only in signatures, where it accepts every kind.
	Any
)

var kindNames = [...]string{
	Nothing: "Nothing",
	Number:  "Number",
	String:  "String",
	Boolean: "Boolean",
	Array:   "Array",
	Code:    "Code",
	Object:  "Object",
	Private: "Private",
	For:     "For",
	Any:     "Anything",
}

// String returns the kind name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Invalid"
	}

	return kindNames[k]
}

// ParseKind returns the kind named s, case-insensitively.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if strings.EqualFold(name, s) {
			return Kind(k), true
		}
	}

	if strings.EqualFold(s, "any") {
		return Any, true
	}

	return Nothing, false
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, ok := ParseKind(string(b))
	if !ok {
		return ErrSignature.With(slog.String("kind", string(b)))
	}

	*k = v

	return nil
}

// Helper returns whether values of this kind exist only to be consumed by
// a later keyword.
func (k Kind) Helper() bool { return k == Private || k == For }

// Value is the result of evaluating a node over symbolic types.
type Value struct {
	Kind Kind
	Pos  token.Position

	// Elements holds array elements. A nil element is an expression whose
	// value is unknown.
	Elements []*Value
	// Code is the body of a code value, when known.
	Code *lang.Code
	// Content is the literal text of a string, or the name of a namespace.
	Content string
	// Known reports whether Content is a literal.
	Known bool
	// Variable is the variable of a pending private declaration.
	Variable token.Token
	// Iterator is the loop variable of a for helper.
	Iterator string
	// Tag marks objects produced by control keywords ("while", "with",
	// "switch", "case", "try", "namespace").
	Tag string

	keyword string // keyword that did not evaluate to a value
}

func nothing(pos token.Position) *Value { return &Value{Kind: Nothing, Pos: pos} }

func kindOf(k Kind, pos token.Position) *Value { return &Value{Kind: k, Pos: pos} }

func stringOf(s string, pos token.Position) *Value {
	return &Value{Kind: String, Pos: pos, Content: s, Known: true}
}

// IsKeyword reports whether v is a keyword that did not evaluate to a
// value, such as an operator missing its operands.
func (v *Value) IsKeyword() bool { return v != nil && v.keyword != "" }

// String describes the value for diagnostics and the repl.
func (v *Value) String() string {
	if v == nil {
		return "undefined"
	}

	switch {
	case v.keyword != "":
		return "Keyword " + v.keyword
	case v.Kind == String && v.Known:
		return `String "` + v.Content + `"`
	case v.Kind == Array && v.Elements != nil:
		part := make([]string, len(v.Elements))
		for i, e := range v.Elements {
			part[i] = e.String()
		}

		return "Array [" + strings.Join(part, ", ") + "]"
	case v.Kind == Private:
		return "Private " + v.Variable.Text
	case v.Kind == For && v.Iterator != "":
		return `For "` + v.Iterator + `"`
	case v.Tag != "":
		return v.Kind.String() + " (" + v.Tag + ")"
	default:
		return v.Kind.String()
	}
}

// typeOnly returns a value of the same kind without literal content, as
// stored in scopes.
func (v *Value) typeOnly() *Value {
	if v == nil {
		return &Value{}
	}

	return &Value{Kind: v.Kind}
}

// at returns a copy of v positioned at pos.
func (v *Value) at(pos token.Position) *Value {
	c := *v
	c.Pos = pos

	return &c
}
