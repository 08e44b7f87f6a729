// Package diagfmt renders build issues for CLI consumption.
// It never mutates or reorders the issues it is given; emission order is
// part of the parser contract and survives rendering.
package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"dubserve/internal/diag"
)

// PrettyOpts controls human-readable rendering.
type PrettyOpts struct {
	// Color toggles ANSI severity colors.
	Color bool
	// Max caps the number of rendered issues; the rest is summarised.
	// <= 0 renders everything.
	Max int
}

var (
	errorColor       = color.New(color.FgRed, color.Bold)
	warningColor     = color.New(color.FgYellow)
	deprecationColor = color.New(color.FgMagenta)
)

// Pretty writes one aligned line per issue:
// <file>(<line>[,<column>]): <Severity>: <message>
func Pretty(w io.Writer, issues []diag.BuildIssue, opts PrettyOpts) {
	max := len(issues)
	if opts.Max > 0 && opts.Max < max {
		max = opts.Max
	}

	width := 0
	for _, issue := range issues[:max] {
		if l := runewidth.StringWidth(location(issue)); l > width {
			width = l
		}
	}

	for _, issue := range issues[:max] {
		loc := runewidth.FillRight(location(issue)+":", width+1)
		sev := issue.Severity.String()
		if opts.Color {
			sev = severityColor(issue.Severity).Sprint(sev)
		}
		fmt.Fprintf(w, "%s %s: %s\n", loc, sev, issue.Message)
	}
	if max < len(issues) {
		fmt.Fprintf(w, "... and %d more issues\n", len(issues)-max)
	}
}

func location(issue diag.BuildIssue) string {
	if issue.Column > 0 {
		return fmt.Sprintf("%s(%d,%d)", issue.File, issue.Line, issue.Column)
	}
	return fmt.Sprintf("%s(%d)", issue.File, issue.Line)
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errorColor
	case diag.SevWarning:
		return warningColor
	default:
		return deprecationColor
	}
}
