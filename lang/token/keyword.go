package token

import (
	"maps"
	"slices"
	"strings"
)

// Arity is a bit set of the forms a keyword may take.
type Arity uint8

const (
	Nular Arity = 1 << iota
	Unary
	Binary
)

// Binary operator priorities, lowest first.
const (
	PriorityCase = iota + 1
	PriorityOr
	PriorityAnd
	PriorityCompare
	PriorityCommand
	PriorityElse
	PriorityAdd
	PriorityMultiply
	PriorityPower
	PrioritySelect
)

// Structural keywords are punctuation handled by the parser itself.
var structural = []string{
	"(", ")", "[", "]", "{", "}", ";", ",", "=", "private",
}

var preprocessors = []string{
	"#define", "#include", "#ifdef", "#ifndef", "#else", "#endif",
	"#undef", "#if",
}

var namespaces = []string{
	"missionnamespace", "uinamespace", "parsingnamespace",
	"profilenamespace",
}

var priorities = map[string]int{
	":":  PriorityCase,
	"||": PriorityOr, "or": PriorityOr,
	"&&": PriorityAnd, "and": PriorityAnd,
	"==": PriorityCompare, "!=": PriorityCompare, ">": PriorityCompare,
	"<": PriorityCompare, ">=": PriorityCompare, "<=": PriorityCompare,
	">>":   PriorityCompare,
	"else": PriorityElse,
	"+":    PriorityAdd, "-": PriorityAdd, "max": PriorityAdd,
	"min": PriorityAdd,
	"*":   PriorityMultiply, "/": PriorityMultiply, "%": PriorityMultiply,
	"mod": PriorityMultiply, "atan2": PriorityMultiply,
	"^": PriorityPower,
	"#": PrioritySelect,
}

// builtins lists the arity of every keyword the default signature table
// knows about.
var builtins = map[string]Arity{
	"+": Unary | Binary, "-": Unary | Binary, "*": Binary, "/": Binary,
	"%": Binary, "mod": Binary, "^": Binary, "atan2": Binary,
	"max": Binary, "min": Binary, "#": Binary,
	"==": Binary, "!=": Binary, ">": Binary, "<": Binary, ">=": Binary,
	"<=": Binary, ">>": Binary,
	"!": Unary, "not": Unary, "&&": Binary, "and": Binary, "||": Binary,
	"or": Binary,
	"if": Unary, "then": Binary, "else": Binary, "exitwith": Binary,
	"while": Unary, "do": Binary, "waituntil": Unary,
	"for": Unary, "from": Binary, "to": Binary, "step": Binary,
	"foreach": Binary, "count": Unary | Binary, "select": Binary,
	"apply": Binary, "findif": Binary,
	"call": Unary | Binary, "spawn": Binary, "execvm": Unary | Binary,
	"try": Unary, "catch": Binary, "throw": Unary,
	"switch": Unary, "case": Unary, "default": Unary, ":": Binary,
	"with": Unary, "params": Unary | Binary, "isnil": Unary,
	"hint": Unary, "diag_log": Unary, "systemchat": Unary,
	"format": Unary, "str": Unary, "typename": Unary,
	"pushback": Binary, "append": Binary, "in": Binary, "find": Binary,
	"isequalto": Binary, "resize": Binary, "deleteat": Binary,
	"getvariable": Binary, "setvariable": Binary,
	"player": Nular, "objnull": Nular, "time": Nular, "nil": Nular,
	"sleep": Unary, "random": Unary, "floor": Unary, "round": Unary,
	"ceil": Unary, "abs": Unary, "sqrt": Unary,
	"compile": Unary, "alive": Unary, "getpos": Unary, "setpos": Binary,
	"isserver": Nular, "hasinterface": Nular, "allunits": Nular,
	"tostring": Unary, "parsenumber": Unary, "tolower": Unary,
	"toupper": Unary,
}

// Keywords classifies words as keywords and reports their arity and
// binary priority. Lookups are case-insensitive. The zero value is empty.
type Keywords struct {
	arity map[string]Arity
}

// DefaultKeywords returns a table holding the built-in keywords.
func DefaultKeywords() *Keywords {
	return &Keywords{arity: maps.Clone(builtins)}
}

// Clone returns an independent copy of k.
func (k *Keywords) Clone() *Keywords {
	if k == nil {
		return &Keywords{}
	}

	return &Keywords{arity: maps.Clone(k.arity)}
}

// Add registers word with the given forms, merged with any already known.
func (k *Keywords) Add(word string, a Arity) {
	if k.arity == nil {
		k.arity = make(map[string]Arity)
	}

	w := strings.ToLower(word)
	k.arity[w] |= a
}

// Arity returns the forms known for word.
func (k *Keywords) Arity(word string) Arity {
	if k == nil {
		return 0
	}

	return k.arity[strings.ToLower(word)]
}

// Words returns every known keyword, lowercased, in no particular order.
func (k *Keywords) Words() []string {
	if k == nil {
		return nil
	}

	words := make([]string, 0, len(k.arity))
	for w := range k.arity {
		words = append(words, w)
	}

	return words
}

// IsKeyword reports whether word is a keyword or structural punctuation.
func (k *Keywords) IsKeyword(word string) bool {
	return k.Arity(word) != 0 || IsStructural(word)
}

// Priority returns the binary priority of word. Binary keywords without an
// explicit priority bind as commands.
func Priority(word string) int {
	if p, ok := priorities[strings.ToLower(word)]; ok {
		return p
	}

	return PriorityCommand
}

// IsStructural reports whether word is parser punctuation.
func IsStructural(word string) bool {
	return slices.Contains(structural, strings.ToLower(word))
}

// IsPreprocessor reports whether word is a preprocessor directive.
func IsPreprocessor(word string) bool {
	return slices.Contains(preprocessors, strings.ToLower(word))
}

// IsNamespace reports whether word names a global namespace.
func IsNamespace(word string) bool {
	return slices.Contains(namespaces, strings.ToLower(word))
}

// Namespaces returns the names of the known global namespaces.
func Namespaces() []string { return append([]string(nil), namespaces...) }
