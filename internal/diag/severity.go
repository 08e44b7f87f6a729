package diag

import "strings"

// Severity defines the importance of a build issue.
type Severity uint8

const (
	// SevDeprecation marks usage of a symbol scheduled for removal.
	SevDeprecation Severity = iota
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevDeprecation:
		return "Deprecation"
	case SevWarning:
		return "Warning"
	case SevError:
		return "Error"
	}
	return "Unknown"
}

// severityFromToken maps the severity word captured from a compiler line.
// Compilers are not consistent about casing, so the match is case-insensitive.
func severityFromToken(tok string) (Severity, bool) {
	switch strings.ToLower(tok) {
	case "deprecation":
		return SevDeprecation, true
	case "warning":
		return SevWarning, true
	case "error":
		return SevError, true
	}
	return SevError, false
}
