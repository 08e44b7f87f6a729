package diag

// BuildIssue is one diagnostic extracted from compiler output.
//
// File is the path exactly as the compiler printed it, not normalised.
// Column is 0 when a primary line carried no column and 1 when a
// continuation or deprecation line carried none.
type BuildIssue struct {
	File     string
	Line     int
	Column   int
	Severity Severity
	Message  string
}
