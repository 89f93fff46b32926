// Package rsp implements the subset of the GDB Remote Serial Protocol needed
// to read target memory directly from an OpenOCD or J-Link GDB stub, without
// a GDB binary in between.
//
// The protocol frames each command as $<payload>#<checksum>, where the
// checksum is the modulo-256 sum of the payload bytes in two lowercase hex
// digits. The receiver acknowledges every well-formed frame with '+' and
// requests retransmission with '-'. Replies to memory reads ('m' packets)
// are hex-encoded bytes, optionally run-length encoded, or an Exx error
// code.
//
// The direct path exists for environments where installing a cross-GDB is
// impractical: it can dump a trace buffer, but it cannot drive a test
// session (no symbol resolution, no breakpoints by name).
package rsp
