package target

import "fmt"

// ReadError represents a single failed memory or counter read. It degrades
// the specific value being read and nothing else; callers record it inline
// and keep going.
type ReadError struct {
	// Addr is the target address the read was issued against
	Addr uint64
	// Width is the requested read width in bytes
	Width int
	// Underlying error if any
	Err error
}

func (e *ReadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("read of %d bytes at 0x%08x failed: %v", e.Width, e.Addr, e.Err)
	}
	return fmt.Sprintf("read of %d bytes at 0x%08x failed", e.Width, e.Addr)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// TargetLostError represents a severed observation channel: the remote
// connection closed, timed out, or the debugger session died under us.
// Fatal to a session.
type TargetLostError struct {
	// Detail is a short description of how the channel was lost
	Detail string
	// Underlying error if any
	Err error
}

func (e *TargetLostError) Error() string {
	if e.Detail != "" {
		return "target connection lost: " + e.Detail
	}
	return "target connection lost"
}

func (e *TargetLostError) Unwrap() error {
	return e.Err
}

// TargetExitedError represents the target running to completion while a
// session still expected stops. Distinct from TargetLostError so callers
// can tell "ran to the end incorrectly" from "connection severed".
type TargetExitedError struct {
	// Detail is the debugger's own description of the exit
	Detail string
}

func (e *TargetExitedError) Error() string {
	if e.Detail != "" {
		return "target exited: " + e.Detail
	}
	return "target exited"
}
