package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/sqfa/analysis"
	"github.com/ardnew/sqfa/pkg"
)

// Output formats of diagnostic reports.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	locationStyle = lipgloss.NewStyle().Bold(true)
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// stdout returns the output writer of the parsed command line.
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Kong != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// styleDiagnostic renders d as "file:line:col: severity: message" with the
// location and severity highlighted.
func styleDiagnostic(d analysis.Diagnostic) string {
	loc := d.Pos.String()
	if d.File != "" {
		loc = d.File + ":" + loc
	}

	sev := warningStyle
	if d.Severity == analysis.SeverityError {
		sev = errorStyle
	}

	return locationStyle.Render(loc+":") + " " + sev.Render(d.Severity.String()+":") +
		" " + d.Message
}

// writeDiagnostics writes diags to w in format.
func writeDiagnostics(
	ctx context.Context,
	w io.Writer,
	format string,
	diags []analysis.Diagnostic,
) error {
	switch format {
	case formatText, "":
		for _, d := range diags {
			if _, err := fmt.Fprintln(w, styleDiagnostic(d)); err != nil {
				return err
			}
		}

		return nil

	case formatJSON:
		if diags == nil {
			diags = []analysis.Diagnostic{}
		}

		data, err := json.MarshalIndent(diags, "", "  ")
		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		_, err = fmt.Fprintln(w, string(data))

		return err

	case formatYAML:
		if diags == nil {
			diags = []analysis.Diagnostic{}
		}

		data, err := yaml.MarshalContext(ctx, diags)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = w.Write(data)

		return err

	default:
		return pkg.ErrInvalidFormat.Wrapf("%q (want one of %s, %s, %s)",
			format, formatText, formatJSON, formatYAML)
	}
}
