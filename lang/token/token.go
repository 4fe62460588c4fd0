// Package token defines the lexical tokens of SQF source and the keyword
// tables used to classify them.
package token

import (
	"strconv"
	"strings"
)

// Kind identifies the lexical class of a token.
type Kind int

const (
	Invalid Kind = iota
	Keyword
	Variable
	Number
	String
	Boolean
	Comment
	Space
	Tab
	EndOfLine
	BrokenEndOfLine
	Preprocessor
	Namespace
	EndOfFile
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case Keyword:
		return "Keyword"
	case Variable:
		return "Variable"
	case Number:
		return "Number"
	case String:
		return "String"
	case Boolean:
		return "Boolean"
	case Comment:
		return "Comment"
	case Space:
		return "Space"
	case Tab:
		return "Tab"
	case EndOfLine:
		return "EndOfLine"
	case BrokenEndOfLine:
		return "BrokenEndOfLine"
	case Preprocessor:
		return "Preprocessor"
	case Namespace:
		return "Namespace"
	case EndOfFile:
		return "EndOfFile"
	default:
		return "Invalid"
	}
}

// Trivia reports whether tokens of this kind carry no meaning for
// evaluation (whitespace, comments and line markers).
func (k Kind) Trivia() bool {
	switch k {
	case Comment, Space, Tab, EndOfLine, BrokenEndOfLine, EndOfFile:
		return true
	default:
		return false
	}
}

// Position locates a token in its source text.
type Position struct {
	Offset int `json:"offset" yaml:"offset"`
	Line   int `json:"line"   yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// String returns "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// IsValid reports whether the position refers to a real source location.
func (p Position) IsValid() bool { return p.Line > 0 }

// Origin records the macro call that produced an expanded token.
type Origin struct {
	Macro string
	Call  string // source text of the call, e.g. "ADD(1,2)"
	Pos   Position
}

// Token is a single lexical unit.
type Token struct {
	Kind Kind
	Text string
	Pos  Position

	// Origin is set on tokens substituted by macro expansion; Depth counts
	// the nested expansions that produced the token.
	Origin *Origin
	Depth  int
}

// String returns the token text.
func (t Token) String() string { return t.Text }

// Is reports whether t is a keyword or preprocessor token spelled word,
// ignoring case.
func (t Token) Is(word string) bool {
	switch t.Kind {
	case Keyword, Preprocessor, Namespace:
		return strings.EqualFold(t.Text, word)
	default:
		return false
	}
}

// IsLocal reports whether t is a variable with a local (underscore) name.
func (t Token) IsLocal() bool {
	return t.Kind == Variable && strings.HasPrefix(t.Text, "_")
}

// IsGlobal reports whether t is a variable with a global name.
func (t Token) IsGlobal() bool {
	return t.Kind == Variable && !strings.HasPrefix(t.Text, "_")
}

// Content returns the unquoted content of a string token, with doubled
// quotes collapsed. Other tokens return their text.
func (t Token) Content() string {
	if t.Kind != String || len(t.Text) < 2 {
		return t.Text
	}

	q := t.Text[:1]

	return strings.ReplaceAll(t.Text[1:len(t.Text)-1], q+q, q)
}
