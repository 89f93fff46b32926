package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ringscope/ringscope/internal/logging"
	"github.com/ringscope/ringscope/internal/target"
)

// backtraceFrames is how many frames the panic diagnostic captures.
const backtraceFrames = 10

// Counters names the exported pass/fail counters the monitor polls at each
// round boundary.
type Counters struct {
	// Task is the firmware task exporting the counters,
	// e.g. "task_hmac_client".
	Task string

	// Passed and Failed are the counter names, e.g. "TestsPassed".
	Passed string
	Failed string
}

// Options configures a Monitor. Expected, MaxRounds, and Timeout are
// required; the zero Classifier defaults to the conventional substring
// classifier over Expected.
type Options struct {
	// Expected is the set of test function names forming one round.
	Expected []string

	// MaxRounds is how many full rounds constitute success.
	MaxRounds int

	// Timeout bounds the session wall-clock time.
	Timeout time.Duration

	// Classifier maps stop locations to panic/test-entry/other.
	Classifier Classifier

	// Counters identifies the exported pass/fail counters. Zero value
	// disables counter polling (counters stay unknown, which never
	// blocks success).
	Counters Counters

	// Events, when non-nil, receives progress events. Sends never block;
	// a full channel drops the event.
	Events chan<- Event
}

// EventType tags a session progress event.
type EventType string

const (
	EventStop     EventType = "stop"
	EventHit      EventType = "hit"
	EventRound    EventType = "round"
	EventCounters EventType = "counters"
	EventVerdict  EventType = "verdict"
)

// Event is one observable step of a running session, consumed by the live
// view and the feed server.
type Event struct {
	Type     EventType `json:"type"`
	Time     time.Time `json:"time"`
	Location string    `json:"location,omitempty"`
	Test     string    `json:"test,omitempty"`
	Hits     int       `json:"hits,omitempty"`
	Rounds   int       `json:"rounds,omitempty"`
	Passed   int64     `json:"passed,omitempty"`
	Failed   int64     `json:"failed,omitempty"`
	Outcome  *Outcome  `json:"outcome,omitempty"`
}

// Monitor owns the session state machine. Construct with New; one Monitor
// drives one session at a time and assumes exclusive ownership of the target
// connection for the session's lifetime.
type Monitor struct {
	opts   Options
	logger *zap.Logger

	// now is wall-clock time, replaceable in tests.
	now func() time.Time
}

// New creates a Monitor with explicit expectations; there is no implicit
// registry of sessions.
func New(opts Options, logger *zap.Logger) (*Monitor, error) {
	if len(opts.Expected) == 0 {
		return nil, fmt.Errorf("at least one expected test name is required")
	}
	if opts.MaxRounds <= 0 {
		return nil, fmt.Errorf("max rounds must be positive, got %d", opts.MaxRounds)
	}
	if opts.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", opts.Timeout)
	}
	if opts.Classifier == nil {
		opts.Classifier = NewSubstringClassifier(opts.Expected, nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{opts: opts, logger: logger, now: time.Now}, nil
}

// Run executes the session loop until a terminal verdict. The target's
// Continue call is the only suspension point; cancellation is observed
// between iterations and yields VerdictInterrupted.
func (m *Monitor) Run(ctx context.Context, tgt target.Target) Outcome {
	start := m.now()
	deadline := start.Add(m.opts.Timeout)

	out := Outcome{
		MaxRounds: m.opts.MaxRounds,
		Hits:      make(map[string]int),
		Passed:    CounterUnknown,
		Failed:    CounterUnknown,
	}

	for {
		if ctx.Err() != nil {
			return m.finish(out, start, VerdictInterrupted, "session cancelled by operator")
		}
		if !m.now().Before(deadline) {
			return m.finish(out, start, VerdictTimedOut,
				fmt.Sprintf("timed out after %s with %d/%d rounds completed",
					m.opts.Timeout, out.Rounds, m.opts.MaxRounds))
		}

		stop, err := tgt.Continue(ctx)
		if err != nil {
			return m.classifyContinueError(ctx, out, start, err)
		}

		m.logger.Debug("stop event", zap.String("location", stop.Location))
		m.publish(Event{Type: EventStop, Location: stop.Location})

		cls := m.opts.Classifier(stop.Location)
		logging.LogStop(stop.Location, cls.Kind.String())
		if cls.Kind == KindPanic {
			// Diagnostics are best effort; a failed backtrace
			// retrieval never masks the verdict.
			if bt, btErr := tgt.Backtrace(ctx, backtraceFrames); btErr == nil {
				out.Backtrace = bt
			} else {
				m.logger.Debug("backtrace unavailable", zap.Error(btErr))
			}
			return m.finish(out, start, VerdictFailed, "target panicked at "+stop.Location)
		}

		// Advance past the stop point so the same breakpoint is not
		// re-counted on the next resume.
		if err := tgt.StepOver(ctx); err != nil {
			m.logger.Warn("step past stop failed", zap.Error(err))
		}

		if cls.Kind != KindTestEntry {
			continue
		}

		out.Hits[cls.Test]++
		m.logger.Info("test function hit",
			zap.String("test", cls.Test),
			zap.Int("count", out.Hits[cls.Test]),
		)
		m.publish(Event{Type: EventHit, Test: cls.Test, Hits: out.Hits[cls.Test]})

		if done, verdict, reason := m.checkRound(ctx, tgt, &out); done {
			return m.finish(out, start, verdict, reason)
		}
	}
}

// checkRound advances the round counter when every expected test has been
// hit at least rounds+1 times, then polls the exported counters. Returns a
// terminal verdict when the counters report failures or the round target is
// reached.
func (m *Monitor) checkRound(ctx context.Context, tgt target.Target, out *Outcome) (bool, Verdict, string) {
	minHits := 0
	for i, name := range m.opts.Expected {
		n, ok := out.Hits[name]
		if !ok {
			// A round needs every expected test present, not just
			// a high count on some of them.
			return false, 0, ""
		}
		if i == 0 || n < minHits {
			minHits = n
		}
	}
	if minHits <= out.Rounds {
		return false, 0, ""
	}

	out.Rounds = minHits
	m.logger.Info("test round completed",
		zap.Int("round", out.Rounds),
		zap.Int("max_rounds", m.opts.MaxRounds),
	)
	m.publish(Event{Type: EventRound, Rounds: out.Rounds})

	m.pollCounters(ctx, tgt, out)

	if out.Failed != CounterUnknown && out.Failed > 0 {
		return true, VerdictFailed, fmt.Sprintf("exported failed counter is %d", out.Failed)
	}
	if out.Rounds >= m.opts.MaxRounds {
		return true, VerdictSucceeded, fmt.Sprintf("completed %d test rounds", out.Rounds)
	}
	return false, 0, ""
}

// pollCounters reads the exported pass/fail counters, best effort. An absent
// or unreadable counter leaves the last-known value in place; unknown is
// non-blocking for success, it just never confirms anything.
func (m *Monitor) pollCounters(ctx context.Context, tgt target.Target, out *Outcome) {
	c := m.opts.Counters
	if c.Task == "" {
		return
	}
	if v, ok, err := tgt.ReadCounter(ctx, c.Task, c.Passed); err == nil && ok {
		out.Passed = v
	} else if err != nil {
		m.logger.Debug("passed counter unreadable", zap.Error(err))
	}
	if v, ok, err := tgt.ReadCounter(ctx, c.Task, c.Failed); err == nil && ok {
		out.Failed = v
	} else if err != nil {
		m.logger.Debug("failed counter unreadable", zap.Error(err))
	}
	m.publish(Event{Type: EventCounters, Passed: out.Passed, Failed: out.Failed})
}

func (m *Monitor) classifyContinueError(ctx context.Context, out Outcome, start time.Time, err error) Outcome {
	var exited *target.TargetExitedError
	var lost *target.TargetLostError
	switch {
	case ctx.Err() != nil:
		return m.finish(out, start, VerdictInterrupted, "session cancelled by operator")
	case errors.As(err, &exited):
		return m.finish(out, start, VerdictFailed, "target exited before the session completed: "+exited.Error())
	case errors.As(err, &lost):
		return m.finish(out, start, VerdictTargetLost, lost.Error())
	default:
		return m.finish(out, start, VerdictTargetLost, "observation channel failed: "+err.Error())
	}
}

func (m *Monitor) finish(out Outcome, start time.Time, v Verdict, reason string) Outcome {
	out.Verdict = v
	out.Reason = reason
	out.Elapsed = m.now().Sub(start)
	m.logger.Info("session finished",
		zap.String("verdict", v.String()),
		zap.String("reason", reason),
		zap.Int("rounds", out.Rounds),
	)
	m.publish(Event{Type: EventVerdict, Rounds: out.Rounds, Outcome: &out})
	return out
}

// publish sends an event without ever blocking the session loop.
func (m *Monitor) publish(ev Event) {
	if m.opts.Events == nil {
		return
	}
	ev.Time = m.now()
	select {
	case m.opts.Events <- ev:
	default:
		m.logger.Debug("event channel full, dropping event", zap.String("type", string(ev.Type)))
	}
}
