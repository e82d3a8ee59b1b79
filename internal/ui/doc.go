// Package ui provides terminal styling for CLI output.
//
// The [Palette] groups the named [lipgloss.Style] values used by command
// output: headers, success and failure markers, warnings, and help text.
package ui
