// Package lexer converts SQF source text into tokens.
//
// Tokenization classifies character runs (words, numbers, operators,
// whitespace) and merges multi-character literals: strings delimited by
// single or double quotes, where a doubled quote escapes itself, and
// line or block comments.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/sqfa/lang/token"
)

// Error reports a lexical error at a source position.
type Error struct {
	Msg string
	Pos token.Position
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Pos.String() + ": " + e.Msg }

// operators lists multi-character operators, longest first.
var operators = []string{"==", "!=", ">=", "<=", "&&", "||", ">>"}

// Tokenize splits src into tokens, classifying words with kw. The result
// always ends with an EndOfFile token. A nil kw uses the default keywords.
func Tokenize(src string, kw *token.Keywords) ([]token.Token, error) {
	if kw == nil {
		kw = token.DefaultKeywords()
	}

	s := &scanner{input: []byte(src), line: 1, col: 1, kw: kw}

	if err := s.run(); err != nil {
		return nil, err
	}

	return s.tokens, nil
}

type scanner struct {
	input  []byte
	pos    int
	line   int
	col    int
	kw     *token.Keywords
	tokens []token.Token
}

func (s *scanner) run() error {
	for !s.eof() {
		start := s.position()
		r := s.peek()

		switch {
		case r == '\n':
			s.advance()
			s.emit(token.EndOfLine, start)

		case r == '\r':
			s.advance()
			s.expect('\n')
			s.emit(token.EndOfLine, start)

		case r == ' ':
			s.skipWhile(func(r rune) bool { return r == ' ' })
			s.emit(token.Space, start)

		case r == '\t':
			s.skipWhile(func(r rune) bool { return r == '\t' })
			s.emit(token.Tab, start)

		case r == '\\' && (s.peekN(2) == "\\\n" || s.peekN(3) == "\\\r\n"):
			s.advance()
			s.expect('\r')
			s.advance()
			s.emit(token.BrokenEndOfLine, start)

		case r == '"' || r == '\'':
			if err := s.scanString(r); err != nil {
				return err
			}

			s.emit(token.String, start)

		case s.peekN(2) == "//":
			s.skipWhile(func(r rune) bool { return r != '\n' })
			s.expect('\n')
			s.emit(token.Comment, start)

		case s.peekN(2) == "/*":
			if err := s.scanBlockComment(); err != nil {
				return err
			}

			s.emit(token.Comment, start)

		case isDigit(r) || (r == '.' && isDigit(s.peekAt(1))):
			s.scanNumber()
			s.emit(token.Number, start)

		case r == '$' && isHexDigit(s.peekAt(1)):
			s.advance()
			s.skipWhile(isHexDigit)
			s.emit(token.Number, start)

		case r == '#' && isIdentifierStart(s.peekAt(1)):
			s.scanDirective(start)

		case isIdentifierStart(r):
			s.skipWhile(isIdentifierContinue)
			s.emit(s.classify(s.text(start)), start)

		default:
			s.scanOperator()
			s.emit(token.Keyword, start)
		}
	}

	s.emit(token.EndOfFile, s.position())

	return nil
}

// classify returns the kind of a scanned word.
func (s *scanner) classify(word string) token.Kind {
	switch lower := strings.ToLower(word); {
	case lower == "true" || lower == "false":
		return token.Boolean
	case token.IsNamespace(lower):
		return token.Namespace
	case s.kw.IsKeyword(lower):
		return token.Keyword
	default:
		return token.Variable
	}
}

// scanDirective scans "#word". Unknown directives split into the "#"
// operator followed by the word.
func (s *scanner) scanDirective(start token.Position) {
	mark := *s

	s.advance()
	s.skipWhile(isIdentifierContinue)

	if token.IsPreprocessor(s.text(start)) {
		s.emit(token.Preprocessor, start)

		return
	}

	*s = mark
	s.advance()
	s.emit(token.Keyword, start)
}

func (s *scanner) scanString(quote rune) error {
	start := s.position()

	s.advance() // opening quote

	for !s.eof() {
		if s.peek() == quote {
			s.advance()

			if s.peek() != quote {
				return nil
			}
		}

		s.advance()
	}

	return &Error{Msg: "string is not closed", Pos: start}
}

func (s *scanner) scanBlockComment() error {
	start := s.position()

	s.advance()
	s.advance()

	for !s.eof() {
		if s.peekN(2) == "*/" {
			s.advance()
			s.advance()

			return nil
		}

		s.advance()
	}

	return &Error{Msg: "comment is not closed", Pos: start}
}

func (s *scanner) scanNumber() {
	if lower := strings.ToLower(s.peekN(2)); lower == "0x" {
		s.advance()
		s.advance()
		s.skipWhile(isHexDigit)

		return
	}

	s.skipWhile(isDigit)

	if s.peek() == '.' {
		s.advance()
		s.skipWhile(isDigit)
	}

	if r := s.peek(); r == 'e' || r == 'E' {
		next := s.peekAt(1)
		if isDigit(next) ||
			((next == '+' || next == '-') && isDigit(s.peekAt(2))) {
			s.advance()
			s.expect('+')
			s.expect('-')
			s.skipWhile(isDigit)
		}
	}
}

func (s *scanner) scanOperator() {
	for _, op := range operators {
		if s.peekN(len(op)) == op {
			for range op {
				s.advance()
			}

			return
		}
	}

	s.advance()
}

func (s *scanner) emit(kind token.Kind, start token.Position) {
	s.tokens = append(s.tokens, token.Token{
		Kind: kind,
		Text: s.text(start),
		Pos:  start,
	})
}

func (s *scanner) text(start token.Position) string {
	return string(s.input[start.Offset:s.pos])
}

func (s *scanner) peek() rune {
	if s.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(s.input[s.pos:])

	return r
}

// peekAt returns the rune n runes ahead of the current one.
func (s *scanner) peekAt(n int) rune {
	off := s.pos

	for ; n > 0 && off < len(s.input); n-- {
		_, size := utf8.DecodeRune(s.input[off:])
		off += size
	}

	if off >= len(s.input) {
		return 0
	}

	r, _ := utf8.DecodeRune(s.input[off:])

	return r
}

func (s *scanner) peekN(n int) string {
	if s.pos+n > len(s.input) {
		return string(s.input[s.pos:])
	}

	return string(s.input[s.pos : s.pos+n])
}

func (s *scanner) advance() {
	if s.eof() {
		return
	}

	r, size := utf8.DecodeRune(s.input[s.pos:])

	s.pos += size
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
}

func (s *scanner) expect(ch rune) bool {
	if s.peek() == ch {
		s.advance()

		return true
	}

	return false
}

func (s *scanner) skipWhile(f func(rune) bool) {
	for !s.eof() && f(s.peek()) {
		s.advance()
	}
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.input)
}

func (s *scanner) position() token.Position {
	return token.Position{
		Offset: s.pos,
		Line:   s.line,
		Column: s.col,
	}
}

// Character classification

func isDigit(r rune) bool { return '0' <= r && r <= '9' }

func isHexDigit(r rune) bool {
	return isDigit(r) || ('a' <= r && r <= 'f') || ('A' <= r && r <= 'F')
}

func isIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentifierContinue(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
