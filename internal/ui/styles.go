package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette shared by all ringscope output.
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // purple: headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // green: success, head slot
	ErrorColor   = lipgloss.Color("#FF5555") // red: errors, unreadable slots
	WarningColor = lipgloss.Color("#FFA500") // orange: warnings, confirmations
	MutedColor   = lipgloss.Color("#626262") // gray: secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // white: main content
)

// Layout constants.
const (
	MinTerminalWidth = 60  // narrower terminals get this width anyway
	MaxContentWidth  = 100 // caps box width on wide terminals
)

// Status markers.
const (
	StepMarkerComplete = "✓"
	StepMarkerRunning  = "●"
	StepMarkerPending  = "·"
	StepMarkerSkipped  = "⊘"
	SuccessMarker      = "✓"
	FailureMarker      = "✗"
)

// Text styles. Grouped by the component that introduced them; several are
// shared across the report, live view, and result boxes.
var (
	HeaderTitleStyle      = lipgloss.NewStyle().Foreground(TextColor).Bold(true).PaddingLeft(2)
	HeaderCommandStyle    = lipgloss.NewStyle().Foreground(MutedColor).PaddingLeft(2)
	HeaderParamKeyStyle   = lipgloss.NewStyle().Foreground(MutedColor).PaddingLeft(2)
	HeaderParamValueStyle = lipgloss.NewStyle().Foreground(TextColor)

	StepCompleteStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	StepRunningStyle  = lipgloss.NewStyle().Foreground(WarningColor)
	StepPendingStyle  = lipgloss.NewStyle().Foreground(MutedColor)
	StepNoteStyle     = lipgloss.NewStyle().Foreground(MutedColor).Italic(true)

	SuccessTitleStyle = lipgloss.NewStyle().Foreground(SuccessColor).Bold(true)
	WarningTitleStyle = lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
	ErrorTitleStyle   = lipgloss.NewStyle().Foreground(ErrorColor).Bold(true)
	ErrorMessageStyle = lipgloss.NewStyle().Foreground(ErrorColor)

	ResultKeyStyle   = lipgloss.NewStyle().Foreground(MutedColor).Width(15)
	ResultValueStyle = lipgloss.NewStyle().Foreground(TextColor)

	TroubleshootingTitleStyle = lipgloss.NewStyle().Foreground(MutedColor).Bold(true)
	TroubleshootingItemStyle  = lipgloss.NewStyle().Foreground(MutedColor)

	GDBOutputTitleStyle   = lipgloss.NewStyle().Foreground(MutedColor).Bold(true)
	GDBOutputContentStyle = lipgloss.NewStyle().Foreground(TextColor)
)

// GetTerminalWidth returns the usable terminal width, clamped to the
// supported range. Non-terminal stdout gets the minimum.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth
	}
	return clampWidth(width)
}

// GetTerminalSize returns the terminal width (clamped) and height.
func GetTerminalSize() (int, int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth, 24
	}
	return clampWidth(width), height
}

func clampWidth(width int) int {
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// Box styles. Each takes the full terminal width and accounts for its own
// border characters.

// HeaderBorderStyle frames command headers and the live view header.
func HeaderBorderStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2)
}

// SuccessBoxStyle frames success result boxes.
func SuccessBoxStyle(width int) lipgloss.Style {
	return resultBoxStyle(width, SuccessColor)
}

// ErrorBoxStyle frames failure result boxes.
func ErrorBoxStyle(width int) lipgloss.Style {
	return resultBoxStyle(width, ErrorColor)
}

// WarningBoxStyle frames warning result boxes and confirmation prompts.
func WarningBoxStyle(width int) lipgloss.Style {
	return resultBoxStyle(width, WarningColor)
}

func resultBoxStyle(width int, border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(border).
		Width(width - 2).
		Padding(0, 2)
}

// GDBOutputBoxStyle frames secondary content: GDB transcripts, trace report
// tables, hit tables, and live view panels.
func GDBOutputBoxStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(width - 4).
		Padding(0, 1)
}

// TroubleshootingBoxStyle frames the tip list nested inside a failure box.
func TroubleshootingBoxStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(width - 12).
		Padding(0, 1).
		MarginLeft(3)
}
