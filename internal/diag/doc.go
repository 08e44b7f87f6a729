// Package diag defines the build-issue model and the compiler-output parser.
//
// # Purpose
//
//   - Provide a deterministic, serialisable record (BuildIssue) for one
//     diagnostic extracted from raw compiler text.
//   - Classify each output line independently, without cross-line parser
//     state. A reordered or truncated log can misattribute a continuation
//     line but never breaks the scan.
//
// # Line classification
//
// Compiler output mixes three line shapes with incidental log noise:
//
//   - primary:      <file>(<line>[,<column>]): <Severity>: <message>
//   - continuation: <file>(<line>[,<column>]): <message>   (no severity token,
//     recognised only when the line contains "from", e.g. instantiation traces)
//   - deprecation:  <file>(<line>[,<column>]): <old> is deprecated, use <new> instead.
//
// A primary match consumes the line. The continuation and deprecation checks
// are independent of each other; a line carrying both markers yields two
// issues. Lines matching nothing are dropped.
//
// Column defaults differ on purpose: a primary line without a column reports
// column 0, while continuation and deprecation lines report column 1. Editor
// clients depend on these exact values.
//
// # Scope
//
// Package diag performs no IO and no formatting. Rendering lives in
// internal/diagfmt; running the compiler and feeding lines into a Parser is
// the job of internal/buildctl and internal/dub.
package diag
