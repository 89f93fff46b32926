// Package trace decodes tagged trace-record ring buffers from raw target
// memory.
//
// Hubris-style firmware keeps an in-memory circular buffer of discriminated
// enum records: a u16 "next write" index followed by a fixed array of
// fixed-stride entries, each starting with a one-byte discriminant. The
// record layout is fixed by the firmware build but cannot always be verified
// from the debugger side (StaticCell wrappers add padding), so the decoder
// probes an ordered list of candidate layouts and falls back gracefully.
//
// Decoding is a pure function of memory contents: the same snapshot always
// yields the same report, per-slot read failures degrade only that slot, and
// unknown discriminants render as Unknown(<n>) rather than aborting the
// sweep.
package trace
