package gdb

import (
	"bytes"
	"strings"
	"text/template"
)

// AttachSpec describes how a session attaches to the target: the remote
// stub endpoint, an optional symbol file, and the breakpoints to arm before
// the first continue.
type AttachSpec struct {
	// OpenOCDHost and OpenOCDPort locate the GDB remote stub.
	OpenOCDHost string
	OpenOCDPort int

	// SymbolFile is the ELF image with symbols, or empty when the stub's
	// symbols are already loaded.
	SymbolFile string

	// Breakpoints are the function names to break on (test entries and
	// panic handlers).
	Breakpoints []string

	// Reset requests a "monitor reset halt" so the session observes the
	// firmware from boot.
	Reset bool

	// OnProgress, when set, receives one AttachStep per attach phase.
	OnProgress func(AttachStep)
}

// AttachStep reports progress through the attach sequence.
type AttachStep struct {
	Name    string
	Status  string // "in_progress", "success", or "failed"
	Message string
}

// describeAttachCommand maps an attach command to a step name for progress
// reporting. Console setup commands return "" and are not reported.
func describeAttachCommand(command string) string {
	switch {
	case strings.HasPrefix(command, "file "):
		return "Load symbols"
	case strings.HasPrefix(command, "target "):
		return "Connect to remote stub"
	case strings.HasPrefix(command, "monitor reset"):
		return "Reset and halt"
	case strings.HasPrefix(command, "break "):
		return "Set breakpoint on " + strings.TrimPrefix(command, "break ")
	default:
		return ""
	}
}

// attachTemplate is the command sequence that prepares a session. Rendered
// with text/template and sent line by line; blank lines are skipped.
const attachTemplate = `set pagination off
set confirm off
set width 0
{{if .SymbolFile}}file {{.SymbolFile}}
{{end}}target extended-remote {{.OpenOCDHost}}:{{.OpenOCDPort}}
{{if .Reset}}monitor reset halt
{{end}}{{range .Breakpoints}}break {{.}}
{{end}}`

// renderAttach renders the attach command sequence for the given spec.
func renderAttach(spec AttachSpec) ([]string, error) {
	tmpl, err := template.New("attach").Parse(attachTemplate)
	if err != nil {
		return nil, &TemplateError{Template: "attach", Err: err}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, spec); err != nil {
		return nil, &TemplateError{Template: "attach", Err: err}
	}

	var commands []string
	for _, line := range strings.Split(buf.String(), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			commands = append(commands, line)
		}
	}
	return commands, nil
}
