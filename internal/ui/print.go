package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Package-level print helpers. Commands compose their output from these;
// each renders one component at the current terminal width and writes it to
// stdout.

// PrintCommandHeader prints a styled command header.
func PrintCommandHeader(title, command string, params map[string]string) {
	header := NewHeader(title, command, params)
	fmt.Println(header.Render())
	fmt.Println()
}

// PrintSuccess prints a styled success result.
func PrintSuccess(title string, details map[string]string) {
	fmt.Println()
	fmt.Println(NewSuccessResult(title, details).Render())
}

// PrintFailure prints a styled failure result.
func PrintFailure(title string, err error, troubleshooting []string) {
	fmt.Println()
	fmt.Println(NewFailureResult(title, err, troubleshooting).Render())
}

// PrintWarning prints a styled warning result.
func PrintWarning(title string, details map[string]string) {
	fmt.Println()
	fmt.Println(NewWarningResult(title, details).Render())
}

// PrintGDBOutput prints the raw GDB transcript box for verbose mode.
func PrintGDBOutput(output string) {
	fmt.Println()
	fmt.Println(NewGDBOutput(output).Render())
}

// PrintStep prints one step line of a multi-step operation.
func PrintStep(step Step) {
	fmt.Println(RenderStepLine(step))
}

// PrintStyledLine prints pre-rendered styled content with a newline.
func PrintStyledLine(content string) {
	fmt.Println(content)
}

// PrintPleaseWait prints a notice before a long-running operation. The
// duration hint sets expectations, e.g. "up to 60 seconds".
func PrintPleaseWait(message string, durationHint string) {
	style := lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true).
		PaddingLeft(2)
	hintStyle := lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)

	line := style.Render("⏳ " + message)
	if durationHint != "" {
		line += " " + hintStyle.Render("("+durationHint+")")
	}
	line += style.Render("...")

	fmt.Println()
	fmt.Println(line)
	fmt.Println()
}
