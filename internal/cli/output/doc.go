// Package output provides output formatting for the sessiondx CLI.
//
// This package handles all CLI output rendering:
//
//   - formatter.go: Formatter interface, factory, and JSON output
//   - table.go: tabular rendering with tabwriter
//   - context.go: the human-readable diagnostic context report
//   - probe.go: probe report rendering
//   - spinner.go: progress animation for long-running gateway walks
//
// Every renderer writes to an io.Writer so commands and tests control the
// destination.
//
// @design DS-0601
package output
