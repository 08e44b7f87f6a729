package diagfmt

import (
	"encoding/json"
	"io"

	"dubserve/internal/diag"
)

// IssueJSON is the wire form of one build issue, shared by the JSON CLI
// output and the service's build responses.
type IssueJSON struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// IssuesOutput is the root structure of the JSON CLI output.
type IssuesOutput struct {
	Issues []IssueJSON `json:"issues"`
	Count  int         `json:"count"`
}

// IssuesJSON converts issues to their wire form, preserving order.
func IssuesJSON(issues []diag.BuildIssue) []IssueJSON {
	out := make([]IssueJSON, len(issues))
	for i, issue := range issues {
		out[i] = IssueJSON{
			File:     issue.File,
			Line:     issue.Line,
			Column:   issue.Column,
			Severity: issue.Severity.String(),
			Message:  issue.Message,
		}
	}
	return out
}

// JSON writes the indented JSON rendering of issues.
func JSON(w io.Writer, issues []diag.BuildIssue) error {
	output := IssuesOutput{
		Issues: IssuesJSON(issues),
		Count:  len(issues),
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
