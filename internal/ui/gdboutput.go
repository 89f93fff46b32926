package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// GDBOutput is a box for raw GDB console content: the verbose-mode transcript
// and panic backtraces in session summaries.
type GDBOutput struct {
	Title    string
	Lines    []string
	Width    int
	MaxLines int // 0 means unlimited
}

// NewGDBOutput creates a GDB output box with the default title.
func NewGDBOutput(content string) *GDBOutput {
	return &GDBOutput{
		Title: "GDB Output",
		Lines: strings.Split(strings.TrimRight(content, "\n"), "\n"),
		Width: GetTerminalWidth(),
	}
}

// SetTitle overrides the box title.
func (g *GDBOutput) SetTitle(title string) *GDBOutput {
	g.Title = title
	return g
}

// SetWidth overrides the terminal width for responsive rendering.
func (g *GDBOutput) SetWidth(width int) *GDBOutput {
	g.Width = width
	return g
}

// SetMaxLines caps the number of lines displayed; the rest is elided.
func (g *GDBOutput) SetMaxLines(max int) *GDBOutput {
	g.MaxLines = max
	return g
}

// Render returns the styled output box as a string.
func (g *GDBOutput) Render() string {
	width := g.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	lines := g.Lines
	if g.MaxLines > 0 && len(lines) > g.MaxLines {
		lines = append(lines[:g.MaxLines:g.MaxLines], "... (output truncated)")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		GDBOutputTitleStyle.Render(g.Title),
		"",
		GDBOutputContentStyle.Render(strings.Join(lines, "\n")),
	)
	return GDBOutputBoxStyle(width).Render(content)
}

// String implements fmt.Stringer.
func (g *GDBOutput) String() string {
	return g.Render()
}
