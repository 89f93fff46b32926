package target

import "context"

// MemoryReader reads unsigned integers out of target memory. Width is in
// bytes and is 1, 2, or 4 for every caller in this module; implementations
// may support more. Values are returned in the target's native (little
// endian) byte order.
type MemoryReader interface {
	ReadUint(addr uint64, width int) (uint64, error)
}

// StopEvent describes one observed pause of target execution.
type StopEvent struct {
	// Location is the symbol name associated with the stop, empty when
	// the stop could not be attributed to a named location.
	Location string

	// Raw is the unparsed debugger output the event was extracted from,
	// kept for verbose diagnostics.
	Raw string
}

// Target is the full observation channel for a live session: memory reads
// plus the stop/continue execution model. Continue is the sole blocking
// call; it returns when the target next stops, or fails with
// TargetExitedError or TargetLostError when it never will again.
type Target interface {
	MemoryReader

	// Continue resumes execution and blocks until the next stop event.
	Continue(ctx context.Context) (StopEvent, error)

	// StepOver advances one source line past the current stop so the
	// same location is not immediately re-reported on the next resume.
	StepOver(ctx context.Context) error

	// ReadCounter reads a named counter exported by the given task.
	// Absence of the counter is a valid outcome, reported via the bool,
	// not an error.
	ReadCounter(ctx context.Context, task, counter string) (int64, bool, error)

	// Backtrace returns up to limit frames of the current stack,
	// rendered as text. Best effort.
	Backtrace(ctx context.Context, limit int) (string, error)
}

// ReadU8 reads one byte at addr.
func ReadU8(r MemoryReader, addr uint64) (uint8, error) {
	v, err := r.ReadUint(addr, 1)
	if err != nil {
		return 0, err
	}
	return uint8(v), nil
}

// ReadU16 reads a 2-byte value at addr.
func ReadU16(r MemoryReader, addr uint64) (uint16, error) {
	v, err := r.ReadUint(addr, 2)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

// ReadU32 reads a 4-byte value at addr.
func ReadU32(r MemoryReader, addr uint64) (uint32, error) {
	v, err := r.ReadUint(addr, 4)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}
