package diag

import (
	"regexp"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

var (
	primaryRe      = regexp.MustCompile(`^(.+?)\((\d+)(?:,(\d+))?\): ((?i:deprecation|warning|error)): (.*)$`)
	continuationRe = regexp.MustCompile(`^(.+?)\((\d+)(?:,(\d+))?\): (.*)$`)
	deprecationRe  = regexp.MustCompile(`^(.+?)\((\d+)(?:,(\d+))?\): (.+?) is deprecated, use (.+?) instead\.?\s*$`)
)

// Parser accumulates issues from compiler output lines, honouring a limit.
// The zero value is not usable; construct with NewParser.
type Parser struct {
	issues []BuildIssue
	max    int
}

// NewParser returns a parser that keeps at most max issues.
// max <= 0 removes the limit.
func NewParser(max int) *Parser {
	capHint := max
	if capHint <= 0 || capHint > 64 {
		capHint = 64
	}
	return &Parser{
		issues: make([]BuildIssue, 0, capHint),
		max:    max,
	}
}

// Parse scans raw compiler output and returns the extracted issues in
// emission order. Equivalent to feeding every line to ConsumeLine.
func Parse(raw string) []BuildIssue {
	p := NewParser(0)
	for _, line := range strings.Split(raw, "\n") {
		p.ConsumeLine(line)
	}
	return p.Issues()
}

// ConsumeLine classifies one output line and records any issues it yields.
// Rules are tried in priority order: a primary match consumes the line;
// otherwise the continuation and deprecation checks each run on their own
// marker substring and are not exclusive of each other.
func (p *Parser) ConsumeLine(line string) {
	line = strings.TrimSuffix(line, "\r")

	if m := primaryRe.FindStringSubmatch(line); m != nil {
		sev, _ := severityFromToken(m[4])
		p.add(BuildIssue{
			File:     m[1],
			Line:     parseNum(m[2]),
			Column:   parseNum(m[3]),
			Severity: sev,
			Message:  m[5],
		})
		return
	}

	if strings.Contains(line, "from") {
		if m := continuationRe.FindStringSubmatch(line); m != nil {
			// Continuation lines carry no severity token; they elaborate a
			// preceding error, so they are reported as errors themselves.
			p.add(BuildIssue{
				File:     m[1],
				Line:     parseNum(m[2]),
				Column:   defaultNum(m[3], 1),
				Severity: SevError,
				Message:  m[4],
			})
		}
	}

	if strings.Contains(line, "is deprecated") {
		if m := deprecationRe.FindStringSubmatch(line); m != nil {
			p.add(BuildIssue{
				File:     m[1],
				Line:     parseNum(m[2]),
				Column:   defaultNum(m[3], 1),
				Severity: SevDeprecation,
				Message:  m[4] + " is deprecated, use " + m[5] + " instead.",
			})
		}
	}
}

// Issues returns the collected issues in emission order.
// The returned slice aliases the parser's buffer; do not modify it.
func (p *Parser) Issues() []BuildIssue {
	return p.issues
}

// Len reports the number of collected issues.
func (p *Parser) Len() int {
	return len(p.issues)
}

// HasErrors reports whether at least one issue has error severity.
func (p *Parser) HasErrors() bool {
	for i := range p.issues {
		if p.issues[i].Severity == SevError {
			return true
		}
	}
	return false
}

func (p *Parser) add(issue BuildIssue) bool {
	if p.max > 0 && len(p.issues) >= p.max {
		return false
	}
	p.issues = append(p.issues, issue)
	return true
}

func parseNum(s string) int {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	n, err := safecast.Conv[int](v)
	if err != nil {
		return 0
	}
	return n
}

func defaultNum(s string, def int) int {
	if s == "" {
		return def
	}
	return parseNum(s)
}
