// Package ui provides terminal UI components for the ringscope CLI.
//
// This package uses Bubble Tea and Lipgloss to render polished terminal
// output for debug-session commands. Most components follow a "render once"
// pattern: commands print a header, step lines as the attach sequence
// advances, and a result box when they finish. The live monitor view
// (LiveModel) is the exception: it stays up for the duration of a session
// and repaints as events arrive.
//
// # Components
//
//   - Header: command banner showing the operation name and parameters
//   - Step / RenderStepLine: one-line status for each attach phase
//   - Result: success/failure/warning boxes with details or troubleshooting
//   - GDBOutput: raw GDB console box for verbose mode and backtraces
//   - Trace report and session summary renderers (report.go)
//   - LiveModel: full-screen live session view (live.go)
//
// Commands print these through the package-level helpers in print.go
// (PrintCommandHeader, PrintStep, PrintSuccess, ...), which render at the
// current terminal width.
//
// # Logging Integration
//
// This package expects logging to be controlled via the RINGSCOPE_LOG_LEVEL
// environment variable. When unset or empty, zap logging is silent, allowing
// the curated UI output to be displayed cleanly. Set RINGSCOPE_LOG_LEVEL to
// "debug", "info", "warn", or "error" to enable logging output.
//
// # Verbose Mode
//
// When --verbose is passed, the GDBOutput component displays the recent GDB
// transcript in a styled box after the result. This is useful for seeing
// exactly what commands were sent to the target.
package ui
