// Package lang parses SQF mission scripts into a syntax tree.
//
// Parsing runs in two stages. The lexer (package lexer) turns source text
// into tokens, merging string and comment literals. The block parser then
// consumes the token stream, nesting "[]", "()" and "{}" groups into
// [Array], parenthesized [Statement] and [Code] nodes, splitting
// statements at ";" and ",", and grouping each statement into a binary
// expression tree by operator priority.
//
// # Preprocessor
//
// Directive lines ("#define", "#include", "#ifdef", ...) are parsed to the
// end of the line. A "#define" registers a [Macro] keyed by name and
// arity; later occurrences of the name are replaced by the macro body,
// with parameters substituted by the call's arguments:
//
//	#define ADD(a,b) (a + b)
//	_x = ADD(1,2);     // parsed as _x = (1 + 2);
//
// Expanded tokens keep the position of the call they replace, and
// [Node.String] renders them as the original call. Nested expansion stops
// with [ErrMacroDepth] after [DefaultMaxExpansion] levels.
//
// # Grouping
//
// Binary keywords bind by priority, loosest first:
//
//	:  ||  &&  comparisons  commands  else  + -  * / %  ^  #
//
// so "if (a) then {b} else {c}" groups as [[if (a)] then [{b} else {c}]].
// A leading unary keyword binds to everything after it.
package lang
