package diagfmt

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"dubserve/internal/diag"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Faint(true)
)

// Summary renders a one-line build verdict with per-severity counts.
func Summary(issues []diag.BuildIssue, styled bool) string {
	var errs, warns, deps int
	for _, issue := range issues {
		switch issue.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		default:
			deps++
		}
	}

	if len(issues) == 0 {
		if styled {
			return okStyle.Render("check passed") + dimStyle.Render(" (no issues)")
		}
		return "check passed (no issues)"
	}

	var parts []string
	if errs > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", errs, plural("error", errs)))
	}
	if warns > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", warns, plural("warning", warns)))
	}
	if deps > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", deps, plural("deprecation", deps)))
	}
	counts := strings.Join(parts, ", ")

	verdict := "check passed"
	style := okStyle
	if errs > 0 {
		verdict = "check failed"
		style = failStyle
	}
	if styled {
		return style.Render(verdict) + dimStyle.Render(": "+counts)
	}
	return verdict + ": " + counts
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
