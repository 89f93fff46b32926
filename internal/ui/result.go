package ui

import (
	"sort"
	"strings"
)

// ResultType selects the result box variant.
type ResultType int

const (
	ResultSuccess ResultType = iota
	ResultFailure
	ResultWarning
)

// Result is the box printed when a command finishes: a banner line, optional
// key/value details, and for failures an error with troubleshooting tips.
type Result struct {
	Type            ResultType
	Title           string
	Details         map[string]string
	Error           error
	Troubleshooting []string
	Width           int
}

// NewSuccessResult creates a success result box.
func NewSuccessResult(title string, details map[string]string) *Result {
	return &Result{
		Type:    ResultSuccess,
		Title:   title,
		Details: details,
		Width:   GetTerminalWidth(),
	}
}

// NewFailureResult creates a failure result box.
func NewFailureResult(title string, err error, troubleshooting []string) *Result {
	return &Result{
		Type:            ResultFailure,
		Title:           title,
		Error:           err,
		Troubleshooting: troubleshooting,
		Width:           GetTerminalWidth(),
	}
}

// NewWarningResult creates a warning result box.
func NewWarningResult(title string, details map[string]string) *Result {
	return &Result{
		Type:    ResultWarning,
		Title:   title,
		Details: details,
		Width:   GetTerminalWidth(),
	}
}

// SetWidth overrides the terminal width for responsive rendering.
func (r *Result) SetWidth(width int) *Result {
	r.Width = width
	return r
}

// Render returns the styled result box as a string.
func (r *Result) Render() string {
	width := r.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	var lines []string
	lines = append(lines, "")
	lines = append(lines, r.banner())
	lines = append(lines, "")

	if r.Type == ResultFailure {
		if r.Error != nil {
			lines = append(lines, ErrorMessageStyle.Render("   Error: "+r.Error.Error()))
			lines = append(lines, "")
		}
		if len(r.Troubleshooting) > 0 {
			lines = append(lines, r.renderTroubleshooting(width))
			lines = append(lines, "")
		}
	} else {
		for _, key := range sortedKeys(r.Details) {
			keyStyled := ResultKeyStyle.Render("   " + key + ":")
			lines = append(lines, keyStyled+" "+ResultValueStyle.Render(r.Details[key]))
		}
		lines = append(lines, "")
	}

	content := strings.Join(lines, "\n")
	switch r.Type {
	case ResultFailure:
		return ErrorBoxStyle(width).Render(content)
	case ResultWarning:
		return WarningBoxStyle(width).Render(content)
	default:
		return SuccessBoxStyle(width).Render(content)
	}
}

func (r *Result) banner() string {
	switch r.Type {
	case ResultFailure:
		return ErrorTitleStyle.Render("   " + FailureMarker + "  FAILED  -  " + r.Title)
	case ResultWarning:
		return WarningTitleStyle.Render("   ⚠  WARNING  -  " + r.Title)
	default:
		return SuccessTitleStyle.Render("   " + SuccessMarker + "  SUCCESS  -  " + r.Title)
	}
}

func (r *Result) renderTroubleshooting(width int) string {
	lines := []string{TroubleshootingTitleStyle.Render("Troubleshooting:"), ""}
	for _, tip := range r.Troubleshooting {
		lines = append(lines, TroubleshootingItemStyle.Render("  • "+tip))
	}
	return TroubleshootingBoxStyle(width).Render(strings.Join(lines, "\n"))
}

// String implements fmt.Stringer.
func (r *Result) String() string {
	return r.Render()
}

// sortedKeys keeps detail output stable between runs.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
