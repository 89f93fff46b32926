// Package gdb drives an interactive arm-none-eabi-gdb session against an
// OpenOCD-attached firmware target and exposes it through the target
// observation interfaces.
//
// Unlike one-shot batch scripts, trace inspection and test monitoring need a
// live stop/continue loop, so the package keeps a single GDB process alive
// for the session and synchronizes on an echo sentinel after every command:
//
//	┌─────────────────┐
//	│ CLI Command     │
//	│ (ringscope)     │
//	└────────┬────────┘
//	         │
//	         v
//	┌─────────────────┐
//	│ Driver          │  Launches gdb, renders the attach sequence,
//	│ (one session)   │  serializes commands over stdin
//	└────────┬────────┘
//	         │
//	         v
//	┌─────────────────┐
//	│ Parser          │  Tolerant extraction of examine values, counter
//	│ (regex-based)   │  prints, and stop-event classification
//	└────────┬────────┘
//	         │
//	         v
//	┌─────────────────┐
//	│ target.Target   │  Memory reads, continue/step, counters, backtrace
//	└─────────────────┘
//
// # Attach sequence
//
// The attach command sequence is a Go text template rendered from the
// session parameters (remote endpoint, symbol file, breakpoints):
//
//	target extended-remote {{.OpenOCDHost}}:{{.OpenOCDPort}}
//	{{range .Breakpoints}}break {{.}}
//	{{end}}
//
// # Output parsing
//
// GDB's console output is not machine-stable; memory examine results arrive
// in decimal or hex, sometimes annotated with symbol names:
//
//	0x6e000:        1234
//	0x6e000 <spdm_resp::__RINGBUF>: 0x4d2
//
// The Parser never assumes a fixed radix and finds the value token wherever
// it lands on the line.
//
// # Error handling
//
// Failure modes carry typed errors: GDBExecutionError (process died or a
// command failed), GDBConnectionError (OpenOCD unreachable), GDBParseError
// (output matched no known shape), TimeoutError (a command exceeded the
// configured command timeout), PrerequisiteError (missing binary). Memory
// read failures surface as target.ReadError so the decoder degrades a single
// slot instead of aborting.
//
// # Thread safety
//
// One Driver owns one GDB process and assumes exclusive use of the debug
// connection. Calls are serialized by the session loop; the package adds no
// locking of its own.
package gdb
