package gdb

import (
	"fmt"

	"github.com/ringscope/ringscope/internal/urls"
)

// GDBExecutionError represents a failure of the GDB process itself: it could
// not be started, died mid-session, or rejected a command outright.
type GDBExecutionError struct {
	// Command is the GDB command that was in flight, if any
	Command string
	// Stderr is accumulated GDB stderr output
	Stderr string
	// Underlying error if any
	Err error
}

func (e *GDBExecutionError) Error() string {
	if e.Command != "" {
		return fmt.Sprintf("gdb failed while running %q: %v\nstderr: %s", e.Command, e.Err, e.Stderr)
	}
	return fmt.Sprintf("gdb process failed: %v\nstderr: %s", e.Err, e.Stderr)
}

func (e *GDBExecutionError) Unwrap() error {
	return e.Err
}

// GDBConnectionError represents a failure to connect to OpenOCD.
// This typically means OpenOCD is not running, the port is wrong, or the
// probe is not wired to the target.
type GDBConnectionError struct {
	// Host is the OpenOCD host that failed to connect
	Host string
	// Port is the OpenOCD port that failed to connect
	Port int
	// Underlying error
	Err error
}

func (e *GDBConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to OpenOCD at %s:%d: %v\n"+
		"Hint: Ensure OpenOCD is running and the target is connected via JTAG/SWD.\n"+
		"Start OpenOCD with: openocd -f <your-config.cfg>\n"+
		"See: %s",
		e.Host, e.Port, e.Err, urls.ConnectingAProbe)
}

func (e *GDBConnectionError) Unwrap() error {
	return e.Err
}

// GDBParseError represents GDB output that matched no expected shape.
type GDBParseError struct {
	// Command is the GDB command whose output failed to parse
	Command string
	// Field is the specific value that failed to parse
	Field string
	// Output is the GDB output that failed to parse
	Output string
	// Underlying error
	Err error
}

func (e *GDBParseError) Error() string {
	return fmt.Sprintf("failed to parse GDB output for %q, field %q: %v\n"+
		"Output: %s",
		e.Command, e.Field, e.Err, e.Output)
}

func (e *GDBParseError) Unwrap() error {
	return e.Err
}

// PrerequisiteError represents a missing prerequisite (GDB binary, OpenOCD).
type PrerequisiteError struct {
	// Prerequisite is the name of the missing prerequisite
	Prerequisite string
	// Details provides additional context
	Details string
	// Underlying error
	Err error
}

func (e *PrerequisiteError) Error() string {
	msg := fmt.Sprintf("missing prerequisite: %s", e.Prerequisite)
	if e.Details != "" {
		msg += "\n" + e.Details
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\nError: %v", e.Err)
	}
	return msg
}

func (e *PrerequisiteError) Unwrap() error {
	return e.Err
}

// TemplateError represents an attach-sequence template rendering error.
type TemplateError struct {
	// Template is the name of the template that failed to render
	Template string
	// Underlying error
	Err error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("failed to render template %q: %v", e.Template, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

// TimeoutError represents a synchronous GDB command exceeding the configured
// command timeout. The session is not usable afterwards.
type TimeoutError struct {
	// Command is the GDB command that timed out
	Command string
	// Timeout is the duration that was exceeded
	Timeout string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("gdb command %q timed out after %s\n"+
		"Hint: Increase the timeout with --timeout or check the probe connection",
		e.Command, e.Timeout)
}
