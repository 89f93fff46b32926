package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Header is the banner printed at the start of each command: the operation
// name, the invocation, and the parameters the run will use.
type Header struct {
	Title   string
	Command string
	Params  map[string]string
	Width   int
}

// NewHeader creates a header with the given values.
func NewHeader(title, command string, params map[string]string) *Header {
	return &Header{
		Title:   title,
		Command: command,
		Params:  params,
		Width:   GetTerminalWidth(),
	}
}

// SetWidth overrides the terminal width for responsive rendering.
func (h *Header) SetWidth(width int) *Header {
	h.Width = width
	return h
}

// Render returns the styled header as a string.
func (h *Header) Render() string {
	width := h.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	top := lipgloss.JoinVertical(lipgloss.Left,
		HeaderTitleStyle.Render(strings.ToUpper(h.Title)),
		HeaderCommandStyle.Render(h.Command),
	)

	content := top
	if len(h.Params) > 0 {
		dividerWidth := width - 6
		if dividerWidth < 10 {
			dividerWidth = 10
		}
		divider := lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Render(strings.Repeat("─", dividerWidth))

		var paramLines []string
		for _, key := range sortedKeys(h.Params) {
			keyStyled := HeaderParamKeyStyle.Render(key + ":")
			paramLines = append(paramLines, keyStyled+" "+HeaderParamValueStyle.Render(h.Params[key]))
		}

		content = lipgloss.JoinVertical(lipgloss.Left,
			top, divider, strings.Join(paramLines, "\n"))
	}

	return HeaderBorderStyle(width).Render(content)
}

// String implements fmt.Stringer.
func (h *Header) String() string {
	return h.Render()
}
