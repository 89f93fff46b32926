package session

import (
	"context"
	"testing"
	"time"

	"github.com/ringscope/ringscope/internal/target"
)

// scriptedTarget replays a fixed sequence of stop events. After the script
// is exhausted, Continue reports the target as exited so a runaway loop
// terminates instead of hanging the test.
type scriptedTarget struct {
	stops    []target.StopEvent
	errs     []error
	pos      int
	steps    int
	counters map[string]int64
	// counterReads lets a test vary counter values over time.
	counterReads func(call int, counter string) (int64, bool)
	counterCalls int
	backtrace    string
	backtraceErr error
}

func (s *scriptedTarget) ReadUint(addr uint64, width int) (uint64, error) {
	return 0, &target.ReadError{Addr: addr, Width: width}
}

func (s *scriptedTarget) Continue(ctx context.Context) (target.StopEvent, error) {
	if s.pos >= len(s.stops) {
		return target.StopEvent{}, &target.TargetExitedError{Detail: "script exhausted"}
	}
	i := s.pos
	s.pos++
	if s.errs != nil && s.errs[i] != nil {
		return target.StopEvent{}, s.errs[i]
	}
	return s.stops[i], nil
}

func (s *scriptedTarget) StepOver(ctx context.Context) error {
	s.steps++
	return nil
}

func (s *scriptedTarget) ReadCounter(ctx context.Context, task, counter string) (int64, bool, error) {
	s.counterCalls++
	if s.counterReads != nil {
		v, ok := s.counterReads(s.counterCalls, counter)
		return v, ok, nil
	}
	if s.counters == nil {
		return 0, false, nil
	}
	v, ok := s.counters[counter]
	return v, ok, nil
}

func (s *scriptedTarget) Backtrace(ctx context.Context, limit int) (string, error) {
	return s.backtrace, s.backtraceErr
}

func stopsAt(names ...string) []target.StopEvent {
	stops := make([]target.StopEvent, len(names))
	for i, n := range names {
		stops[i] = target.StopEvent{Location: n}
	}
	return stops
}

func testOptions(expected []string, maxRounds int) Options {
	return Options{
		Expected:  expected,
		MaxRounds: maxRounds,
		Timeout:   time.Minute,
		Counters:  Counters{Task: "task_hmac_client", Passed: "TestsPassed", Failed: "TestsFailed"},
	}
}

func newTestMonitor(t *testing.T, opts Options) *Monitor {
	t.Helper()
	m, err := New(opts, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return m
}

func TestMonitorSucceedsAfterMaxRounds(t *testing.T) {
	tgt := &scriptedTarget{
		stops:    stopsAt("test_a", "test_b", "test_a", "test_b", "test_a", "test_b"),
		counters: map[string]int64{"TestsPassed": 6, "TestsFailed": 0},
	}
	m := newTestMonitor(t, testOptions([]string{"test_a", "test_b"}, 3))

	out := m.Run(context.Background(), tgt)

	if out.Verdict != VerdictSucceeded {
		t.Fatalf("expected SUCCEEDED, got %s (%s)", out.Verdict, out.Reason)
	}
	if out.Rounds != 3 {
		t.Errorf("expected 3 completed rounds, got %d", out.Rounds)
	}
	if out.Hits["test_a"] != 3 || out.Hits["test_b"] != 3 {
		t.Errorf("unexpected hit counts: %v", out.Hits)
	}
	if out.Failed != 0 || out.Passed != 6 {
		t.Errorf("unexpected counters: passed=%d failed=%d", out.Passed, out.Failed)
	}
	if !out.Success() {
		t.Error("Success() must gate exit code 0 for SUCCEEDED")
	}
}

func TestMonitorRoundRequiresAllExpectedNames(t *testing.T) {
	// test_c never fires: rounds must stay at 0 no matter how often the
	// others hit.
	tgt := &scriptedTarget{
		stops: stopsAt("test_a", "test_b", "test_a", "test_b"),
	}
	m := newTestMonitor(t, testOptions([]string{"test_a", "test_b", "test_c"}, 1))

	out := m.Run(context.Background(), tgt)

	if out.Rounds != 0 {
		t.Errorf("rounds must remain 0 with an absent expected test, got %d", out.Rounds)
	}
	if out.Verdict != VerdictFailed {
		t.Errorf("exhausted target should fail, got %s", out.Verdict)
	}
}

func TestMonitorSubstringMatchesMangledNames(t *testing.T) {
	tgt := &scriptedTarget{
		stops:    stopsAt("app::test_a::h1a2b3c", "app::test_b::h9f8e7d"),
		counters: map[string]int64{"TestsFailed": 0},
	}
	m := newTestMonitor(t, testOptions([]string{"test_a", "test_b"}, 1))

	out := m.Run(context.Background(), tgt)

	if out.Verdict != VerdictSucceeded {
		t.Fatalf("expected SUCCEEDED, got %s (%s)", out.Verdict, out.Reason)
	}
	if out.Hits["test_a"] != 1 || out.Hits["test_b"] != 1 {
		t.Errorf("mangled names must tally under canonical names: %v", out.Hits)
	}
}

func TestMonitorFailsOnNonZeroFailedCounter(t *testing.T) {
	tgt := &scriptedTarget{
		stops:    stopsAt("test_a", "test_b"),
		counters: map[string]int64{"TestsPassed": 1, "TestsFailed": 2},
	}
	m := newTestMonitor(t, testOptions([]string{"test_a", "test_b"}, 5))

	out := m.Run(context.Background(), tgt)

	if out.Verdict != VerdictFailed {
		t.Fatalf("expected FAILED, got %s", out.Verdict)
	}
	if out.Rounds != 1 {
		t.Errorf("failure fired at round 1, got rounds=%d", out.Rounds)
	}
	if out.Failed != 2 {
		t.Errorf("last-known failed counter should be 2, got %d", out.Failed)
	}
}

func TestMonitorUnknownFailedCounterDoesNotBlockSuccess(t *testing.T) {
	tgt := &scriptedTarget{
		stops: stopsAt("test_a"),
		// No counters readable at all.
	}
	m := newTestMonitor(t, testOptions([]string{"test_a"}, 1))

	out := m.Run(context.Background(), tgt)

	if out.Verdict != VerdictSucceeded {
		t.Fatalf("unknown counters must not block success, got %s (%s)", out.Verdict, out.Reason)
	}
	if out.Failed != CounterUnknown || out.Passed != CounterUnknown {
		t.Errorf("counters should be unknown, got passed=%d failed=%d", out.Passed, out.Failed)
	}
}

func TestMonitorPanicFailsWithoutTallying(t *testing.T) {
	tgt := &scriptedTarget{
		stops:     stopsAt("test_a", "rust_panic_handler"),
		backtrace: "#0 rust_panic_handler\n#1 core::panicking::panic",
	}
	m := newTestMonitor(t, testOptions([]string{"test_a", "test_b"}, 3))

	out := m.Run(context.Background(), tgt)

	if out.Verdict != VerdictFailed {
		t.Fatalf("expected FAILED, got %s", out.Verdict)
	}
	if out.Reason != "target panicked at rust_panic_handler" {
		t.Errorf("unexpected reason: %q", out.Reason)
	}
	if out.Backtrace == "" {
		t.Error("panic should capture a backtrace when one is available")
	}
	if out.Hits["rust_panic_handler"] != 0 {
		t.Error("a panic stop must not increment any hit counter")
	}
	// The panic stop must not be stepped over either; only test_a was.
	if tgt.steps != 1 {
		t.Errorf("expected exactly 1 step-over, got %d", tgt.steps)
	}
}

func TestMonitorPanicBacktraceFailureIsSwallowed(t *testing.T) {
	tgt := &scriptedTarget{
		stops:        stopsAt("panic"),
		backtraceErr: &target.ReadError{Addr: 0, Width: 4},
	}
	m := newTestMonitor(t, testOptions([]string{"test_a"}, 1))

	out := m.Run(context.Background(), tgt)

	if out.Verdict != VerdictFailed {
		t.Fatalf("expected FAILED, got %s", out.Verdict)
	}
	if out.Backtrace != "" {
		t.Error("backtrace must stay empty when retrieval fails")
	}
}

func TestMonitorTargetLost(t *testing.T) {
	tgt := &scriptedTarget{
		stops: stopsAt("test_a", ""),
		errs:  []error{nil, &target.TargetLostError{Detail: "remote closed"}},
	}
	m := newTestMonitor(t, testOptions([]string{"test_a", "test_b"}, 3))

	out := m.Run(context.Background(), tgt)

	if out.Verdict != VerdictTargetLost {
		t.Fatalf("expected TARGET LOST, got %s", out.Verdict)
	}
}

func TestMonitorTargetExitFails(t *testing.T) {
	tgt := &scriptedTarget{
		stops: stopsAt(""),
		errs:  []error{&target.TargetExitedError{Detail: "exited normally"}},
	}
	m := newTestMonitor(t, testOptions([]string{"test_a"}, 1))

	out := m.Run(context.Background(), tgt)

	if out.Verdict != VerdictFailed {
		t.Fatalf("an exited target is a failure, got %s", out.Verdict)
	}
}

func TestMonitorTimeoutReportsCompletedRounds(t *testing.T) {
	tgt := &scriptedTarget{
		// One full round, then a partial one.
		stops:    stopsAt("test_a", "test_b", "test_a", "test_a", "test_a"),
		counters: map[string]int64{"TestsFailed": 0},
	}
	m := newTestMonitor(t, testOptions([]string{"test_a", "test_b"}, 5))

	// Fixed-step clock: each check advances time so the deadline passes
	// partway through the script.
	base := time.Now()
	tick := 0
	m.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * 10 * time.Second)
	}
	m.opts.Timeout = 60 * time.Second

	out := m.Run(context.Background(), tgt)

	if out.Verdict != VerdictTimedOut {
		t.Fatalf("expected TIMED OUT, got %s (%s)", out.Verdict, out.Reason)
	}
	if out.Rounds != 1 {
		t.Errorf("timeout must report the last fully completed round, got %d", out.Rounds)
	}
}

func TestMonitorInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tgt := &scriptedTarget{stops: stopsAt("test_a")}
	m := newTestMonitor(t, testOptions([]string{"test_a"}, 1))

	out := m.Run(ctx, tgt)

	if out.Verdict != VerdictInterrupted {
		t.Fatalf("expected INTERRUPTED, got %s", out.Verdict)
	}
}

func TestMonitorPublishesEvents(t *testing.T) {
	events := make(chan Event, 32)
	opts := testOptions([]string{"test_a"}, 1)
	opts.Events = events
	tgt := &scriptedTarget{
		stops:    stopsAt("test_a"),
		counters: map[string]int64{"TestsPassed": 1, "TestsFailed": 0},
	}
	m := newTestMonitor(t, opts)

	out := m.Run(context.Background(), tgt)
	if out.Verdict != VerdictSucceeded {
		t.Fatalf("expected SUCCEEDED, got %s", out.Verdict)
	}
	close(events)

	var types []EventType
	for ev := range events {
		types = append(types, ev.Type)
	}
	want := []EventType{EventStop, EventHit, EventRound, EventCounters, EventVerdict}
	if len(types) != len(want) {
		t.Fatalf("expected %d events, got %d (%v)", len(want), len(types), types)
	}
	for i, w := range want {
		if types[i] != w {
			t.Errorf("event %d: expected %s, got %s", i, w, types[i])
		}
	}
}

func TestMonitorFullEventChannelDoesNotBlock(t *testing.T) {
	events := make(chan Event) // unbuffered, never drained
	opts := testOptions([]string{"test_a"}, 1)
	opts.Events = events
	tgt := &scriptedTarget{stops: stopsAt("test_a")}
	m := newTestMonitor(t, opts)

	done := make(chan Outcome, 1)
	go func() { done <- m.Run(context.Background(), tgt) }()

	select {
	case out := <-done:
		if out.Verdict != VerdictSucceeded {
			t.Fatalf("expected SUCCEEDED, got %s", out.Verdict)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("session blocked on an undrained event channel")
	}
}

func TestNewValidatesOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"no expected tests", Options{MaxRounds: 3, Timeout: time.Minute}},
		{"zero rounds", Options{Expected: []string{"a"}, Timeout: time.Minute}},
		{"zero timeout", Options{Expected: []string{"a"}, MaxRounds: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opts, nil); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
