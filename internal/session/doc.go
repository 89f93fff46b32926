// Package session drives a bounded test-execution session against a remote
// firmware target and converges on a verdict.
//
// The monitor repeatedly resumes execution, classifies each stop event
// (ordinary breakpoint, test entry, panic, exit, connection loss), tallies
// hits of the expected test functions, and polls exported pass/fail counters
// whenever a full round of the test battery completes. The session ends with
// exactly one Verdict: success after the configured number of rounds with no
// failures, or failure/timeout/loss otherwise.
//
// The loop is single-threaded and synchronous; the Continue call on the
// target is the sole suspension point. Cancellation is cooperative through
// the context, checked between iterations.
package session
