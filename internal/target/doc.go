// Package target defines the observation boundary between ringscope's
// analysis logic and whatever is actually talking to the firmware.
//
// Everything upstream (the trace decoder, the session monitor) sees the
// target only through the interfaces here: a MemoryReader for raw word
// reads, and a Target for the stop/continue execution model. The gdb and
// rsp packages provide the real implementations; tests provide scripted
// ones.
//
// Errors are typed per failure class. A ReadError degrades one value and is
// always recoverable by the caller; TargetLostError and TargetExitedError
// end a session.
package target
