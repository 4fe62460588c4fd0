package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// signatureHintStyle styles for parameter hints.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
	signatureSeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// macroCall represents a detected macro call in the input.
type macroCall struct {
	name     string // macro name
	argIndex int    // current argument index (0-based)
	inCall   bool   // true if cursor is inside the argument list
}

// detectMacroCall analyzes the input to determine if the cursor is inside
// the argument list of a function-like macro call such as "ADD(1, ".
func detectMacroCall(input string, cursor int) macroCall {
	if cursor > len(input) {
		cursor = len(input)
	}

	// Scan backward from cursor to find the opening paren of the call.
	// Track nested brackets so we find the correct one.
	depth := 0
	openParenPos := -1

scan:
	for i := cursor - 1; i >= 0; i-- {
		switch input[i] {
		case ')', ']', '}':
			depth++
		case '[', '{':
			depth--
		case '(':
			if depth == 0 {
				openParenPos = i

				break scan
			}

			depth--
		}
	}

	if openParenPos == -1 {
		return macroCall{}
	}

	// Extract the macro name immediately before the '('.
	nameStart := openParenPos

	for nameStart > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:nameStart])
		if !isWordRune(r) || r == '#' {
			break
		}

		nameStart -= size
	}

	name := input[nameStart:openParenPos]
	if name == "" {
		return macroCall{}
	}

	// Count arguments by counting commas at depth 0 in the argument list.
	argIndex := 0
	depth = 0

	for i := openParenPos + 1; i < cursor; i++ {
		switch input[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				argIndex++
			}
		}
	}

	return macroCall{name: name, argIndex: argIndex, inCall: true}
}

// macroSignature returns the signature of the named function-like macro
// defined in the session, e.g. "ADD(a, b)".
func macroSignature(s *Session, name string) (signature string, params []string) {
	m, ok := s.Macro(name)
	if !ok || !m.Function {
		return "", nil
	}

	return name + "(" + strings.Join(m.Params, ", ") + ")", m.Params
}

// keywordSignatures returns one line per form of keyword, e.g.
// "Boolean then Code -> Nothing".
func keywordSignatures(s *Session, keyword string) []string {
	sigs := s.Database().Signatures(keyword)

	lines := make([]string, len(sigs))
	for i, sig := range sigs {
		lines[i] = sig.String()
	}

	return lines
}

// renderKeywordHint renders the forms of a keyword on one line.
func renderKeywordHint(lines []string) string {
	if len(lines) == 0 {
		return ""
	}

	return signatureStyle.Render(strings.Join(lines, "  |  "))
}

// renderSignatureHint renders the macro signature with the current
// parameter highlighted.
func renderSignatureHint(
	signature string,
	params []string,
	currentArgIdx int,
) string {
	if signature == "" {
		return ""
	}

	// Parse signature: "NAME(param1, param2, ...)"
	openParen := strings.Index(signature, "(")
	if openParen == -1 {
		return signatureStyle.Render(signature)
	}

	name := signature[:openParen]

	// If no parameters, just render the signature
	if len(params) == 0 {
		return signatureNameStyle.Render(name) +
			signatureStyle.Render("()")
	}

	// Build the signature with highlighted current parameter
	var b strings.Builder
	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureSeparatorStyle.Render(", "))
		}

		if currentArgIdx == i {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
