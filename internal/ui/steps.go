package ui

import "strings"

// StepStatus is the display state of one step in a multi-step operation.
type StepStatus int

const (
	StepPending StepStatus = iota
	StepRunning
	StepComplete
	StepFailed
	StepSkipped
)

// Step is one line in a step list, e.g. one phase of the attach sequence.
type Step struct {
	Name    string
	Status  StepStatus
	Message string // optional note, rendered in parentheses
}

// RenderStepLine renders one step as a status line: styled name, status
// marker, and the optional note.
func RenderStepLine(step Step) string {
	marker := StepMarkerPending
	style := StepPendingStyle
	switch step.Status {
	case StepComplete:
		marker = StepMarkerComplete
		style = StepCompleteStyle
	case StepRunning:
		marker = StepMarkerRunning
		style = StepRunningStyle
	case StepFailed:
		marker = FailureMarker
		style = ErrorTitleStyle
	case StepSkipped:
		marker = StepMarkerSkipped
	}

	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(style.Render(step.Name))
	b.WriteString("  ")
	b.WriteString(style.Render(marker))
	if step.Message != "" {
		b.WriteString("  ")
		b.WriteString(StepNoteStyle.Render("(" + step.Message + ")"))
	}
	return b.String()
}
