package gdb

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ringscope/ringscope/internal/target"
)

// Parser extracts structured values from GDB console output. It uses
// compiled regex patterns for the output shapes the session produces and
// never assumes a fixed radix: the examine command reports values in decimal
// or hex depending on format and GDB version.
type Parser struct {
	examinePattern    *regexp.Regexp // Matches: 0x6e000:	1234  (value after the colon)
	numberPattern     *regexp.Regexp // Matches: bare decimal or 0x-prefixed tokens
	counterPattern    *regexp.Regexp // Matches: $1 = 42
	breakpointPattern *regexp.Regexp // Matches: Breakpoint 2, func_name (args) at file:line
	framePattern      *regexp.Regexp // Matches: 0x0800abcd in func_name (args)
	signalPattern     *regexp.Regexp // Matches: Program received signal SIGxxx
}

// NewParser creates a parser with compiled patterns.
func NewParser() *Parser {
	return &Parser{
		examinePattern:    regexp.MustCompile(`(?:0x[0-9a-fA-F]+|\d+)\s*(?:<[^>]*>)?\s*:\s*(.+)$`),
		numberPattern:     regexp.MustCompile(`^(?:0[xX][0-9a-fA-F]+|\d+)$`),
		counterPattern:    regexp.MustCompile(`\$\d+\s*=\s*(-?\d+)`),
		breakpointPattern: regexp.MustCompile(`Breakpoint\s+\d+(?:\.\d+)?,\s+(?:0x[0-9a-fA-F]+\s+in\s+)?([\w:~$<>.]+)\s*\(`),
		framePattern:      regexp.MustCompile(`0x[0-9a-fA-F]+\s+in\s+([\w:~$<>.]+)\s*\(`),
		signalPattern:     regexp.MustCompile(`Program received signal \w+`),
	}
}

// ExamineValue extracts the value from a memory-examine result such as:
//
//	0x6e000:	12
//	0x6e000 <spdm_resp::__RINGBUF>:	0x0c
//	0x6e004:	0x4d2	(hex output from some GDB builds)
//
// The value token may be decimal or hexadecimal; base is auto-detected.
func (p *Parser) ExamineValue(output string) (uint64, error) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		m := p.examinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		// The tail after the colon may carry several fields; take the
		// first token that parses as a number, falling back to the
		// last token.
		fields := strings.Fields(m[1])
		if len(fields) == 0 {
			continue
		}
		candidate := fields[len(fields)-1]
		for _, f := range fields {
			if p.numberPattern.MatchString(f) {
				candidate = f
				break
			}
		}
		v, err := strconv.ParseUint(candidate, 0, 64)
		if err != nil {
			return 0, &GDBParseError{
				Command: "x",
				Field:   "value",
				Output:  line,
				Err:     err,
			}
		}
		return v, nil
	}
	return 0, &GDBParseError{
		Command: "x",
		Field:   "value",
		Output:  output,
		Err:     fmt.Errorf("no examine result line found"),
	}
}

// CounterValue extracts the integer from a counter print such as "$3 = 42".
// A missing-symbol response reports ok=false with no error: absent counters
// are a valid outcome, not a failure.
func (p *Parser) CounterValue(output string) (int64, bool, error) {
	if strings.Contains(output, "No symbol") ||
		strings.Contains(output, "There is no member") ||
		strings.Contains(output, "has unknown type") {
		return 0, false, nil
	}
	m := p.counterPattern.FindStringSubmatch(output)
	if m == nil {
		return 0, false, &GDBParseError{
			Command: "print",
			Field:   "counter",
			Output:  output,
			Err:     fmt.Errorf("no value print found"),
		}
	}
	v, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false, &GDBParseError{
			Command: "print",
			Field:   "counter",
			Output:  output,
			Err:     err,
		}
	}
	return v, true, nil
}

// ClassifyStop interprets the output of a continue command: either the
// target stopped somewhere nameable, or it terminated, or the connection to
// the probe is gone.
func (p *Parser) ClassifyStop(output string) (target.StopEvent, error) {
	if err := p.DetectChannelError(output); err != nil {
		return target.StopEvent{}, err
	}

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if m := p.breakpointPattern.FindStringSubmatch(line); m != nil {
			return target.StopEvent{Location: m[1], Raw: output}, nil
		}
	}
	// Signal stops and plain halts report the frame without a breakpoint
	// header.
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if m := p.framePattern.FindStringSubmatch(line); m != nil {
			return target.StopEvent{Location: m[1], Raw: output}, nil
		}
	}
	// A stop we cannot name is still a stop; the classifier maps an empty
	// location to Other and the session moves on.
	return target.StopEvent{Raw: output}, nil
}

// DetectChannelError scans output for target termination or connection loss.
// Returns nil when the output shows neither.
func (p *Parser) DetectChannelError(output string) error {
	lower := strings.ToLower(output)

	switch {
	case strings.Contains(lower, "remote connection closed"),
		strings.Contains(lower, "remote communication error"),
		strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "connection timed out"),
		strings.Contains(lower, "the remote target has gone away"):
		return &target.TargetLostError{Detail: firstMatchingLine(output, lower, "remote", "connection")}
	case strings.Contains(lower, "program exited"),
		strings.Contains(lower, "program terminated"),
		strings.Contains(lower, "the program is not being run"):
		return &target.TargetExitedError{Detail: firstMatchingLine(output, lower, "program")}
	}
	return nil
}

// firstMatchingLine returns the first line whose lowercase form contains any
// of the given needles, for error detail text.
func firstMatchingLine(output, lower string, needles ...string) string {
	lowerLines := strings.Split(lower, "\n")
	lines := strings.Split(output, "\n")
	for i, ll := range lowerLines {
		for _, n := range needles {
			if strings.Contains(ll, n) {
				return strings.TrimSpace(lines[i])
			}
		}
	}
	return ""
}

// Backtrace trims a backtrace dump to its frame lines, capped at limit.
func (p *Parser) Backtrace(output string, limit int) string {
	var frames []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			frames = append(frames, line)
			if len(frames) >= limit {
				break
			}
		}
	}
	return strings.Join(frames, "\n")
}
