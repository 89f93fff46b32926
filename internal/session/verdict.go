package session

import "time"

// Verdict is the terminal outcome of a session. Produced exactly once.
type Verdict int

const (
	// VerdictSucceeded means every expected test ran the configured
	// number of rounds with the failed counter at zero (or unknown).
	VerdictSucceeded Verdict = iota

	// VerdictFailed means the target panicked, exited, or reported a
	// non-zero failed counter.
	VerdictFailed

	// VerdictTimedOut means the wall-clock deadline passed before a
	// terminal state was reached.
	VerdictTimedOut

	// VerdictTargetLost means the debug connection was severed.
	VerdictTargetLost

	// VerdictInterrupted means the operator cancelled the session.
	VerdictInterrupted
)

// String returns the display name of the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictSucceeded:
		return "SUCCEEDED"
	case VerdictFailed:
		return "FAILED"
	case VerdictTimedOut:
		return "TIMED OUT"
	case VerdictTargetLost:
		return "TARGET LOST"
	case VerdictInterrupted:
		return "INTERRUPTED"
	default:
		return "UNKNOWN"
	}
}

// CounterUnknown marks a counter that could not be read during the session.
const CounterUnknown int64 = -1

// Outcome is the session's final state: the verdict plus everything the
// report renders.
type Outcome struct {
	// Verdict is the terminal classification.
	Verdict Verdict

	// Reason is the human-readable explanation accompanying the verdict.
	Reason string

	// Rounds is the number of fully completed rounds. A partial round in
	// progress at timeout is not counted.
	Rounds int

	// MaxRounds is the configured round target, kept for display.
	MaxRounds int

	// Hits maps each observed test name to its hit count.
	Hits map[string]int

	// Passed and Failed are the last-known exported counters, or
	// CounterUnknown when they were never readable.
	Passed int64
	Failed int64

	// Backtrace holds the panic backtrace when the target panicked and
	// one could be retrieved. Best effort; empty otherwise.
	Backtrace string

	// Elapsed is the session wall-clock duration.
	Elapsed time.Duration
}

// Success reports whether the outcome gates automation as passing. This is
// the only outcome mapped to process exit code 0.
func (o Outcome) Success() bool {
	return o.Verdict == VerdictSucceeded
}
