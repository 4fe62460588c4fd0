package analysis

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/sqfa/lang/token"
)

// Severity ranks a diagnostic.
type Severity int

const (
	// SeverityWarning marks a semantic finding.
	SeverityWarning Severity = iota
	// SeverityError marks a structural problem in the source.
	SeverityError
)

// String returns "warning" or "error".
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}

	return "warning"
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	default:
		return ErrSeverity.With(slog.String("severity", string(b)))
	}

	return nil
}

// Diagnostic is a finding located in the source.
type Diagnostic struct {
	File     string         `json:"file,omitempty" yaml:"file,omitempty"`
	Pos      token.Position `json:"pos"            yaml:"pos"`
	Severity Severity       `json:"severity"       yaml:"severity"`
	Message  string         `json:"message"        yaml:"message"`
}

// String formats d as "file:line:col: severity: message".
func (d Diagnostic) String() string {
	var sb strings.Builder

	if d.File != "" {
		sb.WriteString(d.File + ":")
	}

	fmt.Fprintf(&sb, "%s: %s: %s", d.Pos, d.Severity, d.Message)

	return sb.String()
}

// SortDiagnostics orders diagnostics by file and position, keeping the
// emission order of diagnostics at the same position.
func SortDiagnostics(diags []Diagnostic) {
	slices.SortStableFunc(diags, func(a, b Diagnostic) int {
		return cmp.Or(
			cmp.Compare(a.File, b.File),
			cmp.Compare(a.Pos.Line, b.Pos.Line),
			cmp.Compare(a.Pos.Column, b.Pos.Column),
		)
	})
}

// HasErrors reports whether any diagnostic has severity Error, or any at
// all when strict is set.
func HasErrors(diags []Diagnostic, strict bool) bool {
	return slices.ContainsFunc(diags, func(d Diagnostic) bool {
		return strict || d.Severity == SeverityError
	})
}
