package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ringscope/ringscope/internal/session"
)

// liveLogCapacity is how many recent events the activity log keeps on screen.
const liveLogCapacity = 8

// Message types for async session events
type sessionEventMsg struct {
	event session.Event
}

type sessionClosedMsg struct{}

type liveTickMsg time.Time

// waitForSessionEvent blocks on the session event channel and delivers the
// next event as a message. Re-issued after every event until the channel
// closes.
func waitForSessionEvent(events <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return sessionClosedMsg{}
		}
		return sessionEventMsg{event: ev}
	}
}

// liveTick drives the elapsed-time clock once per second.
func liveTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return liveTickMsg(t)
	})
}

// LiveModel is the full-screen live session view. It consumes session.Event
// values published by a running monitor and renders round progress, per-test
// hit counts, counters, and a rolling activity log. The model quits on its
// own when the verdict event arrives; the caller renders the final summary
// after the program exits.
type LiveModel struct {
	events <-chan session.Event

	// Session identity shown in the header
	Profile   string
	Probe     string
	Expected  []string
	MaxRounds int

	Spinner spinner.Model
	bar     progress.Model
	Width   int
	Height  int

	started  time.Time
	rounds   int
	hits     map[string]int
	passed   int64
	failed   int64
	lastStop string
	log      []string

	outcome     *session.Outcome
	interrupted bool
}

// NewLiveModel creates a live view reading from the given event channel. The
// channel should be buffered; the monitor drops events rather than block on
// a full channel.
func NewLiveModel(profile, probe string, expected []string, maxRounds int, events <-chan session.Event) LiveModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	width, height := GetTerminalSize()

	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(barWidth(width)),
	)

	return LiveModel{
		events:    events,
		Profile:   profile,
		Probe:     probe,
		Expected:  expected,
		MaxRounds: maxRounds,
		Spinner:   s,
		bar:       bar,
		Width:     width,
		Height:    height,
		started:   time.Now(),
		hits:      make(map[string]int),
		passed:    session.CounterUnknown,
		failed:    session.CounterUnknown,
	}
}

// Outcome returns the final outcome once the verdict event has been seen,
// or nil if the view exited before the session finished.
func (m LiveModel) Outcome() *session.Outcome {
	return m.outcome
}

// Interrupted reports whether the operator quit the view before a verdict.
func (m LiveModel) Interrupted() bool {
	return m.interrupted
}

// Init implements tea.Model
func (m LiveModel) Init() tea.Cmd {
	return tea.Batch(m.Spinner.Tick, waitForSessionEvent(m.events), liveTick())
}

// Update implements tea.Model
func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		if m.Width > MaxContentWidth {
			m.Width = MaxContentWidth
		}
		m.bar.Width = barWidth(m.Width)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.interrupted = true
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case liveTickMsg:
		return m, liveTick()

	case sessionEventMsg:
		m.applyEvent(msg.event)
		if msg.event.Type == session.EventVerdict {
			return m, tea.Quit
		}
		return m, waitForSessionEvent(m.events)

	case sessionClosedMsg:
		// Channel closed without a verdict: the session loop is gone.
		return m, tea.Quit
	}

	return m, nil
}

// applyEvent folds one session event into the view state.
func (m *LiveModel) applyEvent(ev session.Event) {
	switch ev.Type {
	case session.EventStop:
		m.lastStop = ev.Location
		m.appendLog(ev.Time, "stop at "+ev.Location)

	case session.EventHit:
		m.hits[ev.Test] = ev.Hits
		m.appendLog(ev.Time, fmt.Sprintf("hit %s (count %d)", ev.Test, ev.Hits))

	case session.EventRound:
		m.rounds = ev.Rounds
		m.appendLog(ev.Time, fmt.Sprintf("round %d of %d complete", ev.Rounds, m.MaxRounds))

	case session.EventCounters:
		m.passed = ev.Passed
		m.failed = ev.Failed
		m.appendLog(ev.Time, fmt.Sprintf("counters: passed=%s failed=%s",
			formatCounter(ev.Passed), formatCounter(ev.Failed)))

	case session.EventVerdict:
		m.outcome = ev.Outcome
		if ev.Outcome != nil {
			m.appendLog(ev.Time, "verdict: "+ev.Outcome.Verdict.String())
		}
	}
}

func (m *LiveModel) appendLog(at time.Time, line string) {
	if at.IsZero() {
		at = time.Now()
	}
	entry := StepNoteStyle.Render(at.Format("15:04:05")) + "  " + line
	m.log = append(m.log, entry)
	if len(m.log) > liveLogCapacity {
		m.log = m.log[len(m.log)-liveLogCapacity:]
	}
}

// View implements tea.Model
func (m LiveModel) View() string {
	var sections []string

	sections = append(sections, m.renderHeader())
	sections = append(sections, "")
	sections = append(sections, m.renderProgress())
	sections = append(sections, "")
	sections = append(sections, m.renderLog())
	sections = append(sections, "")
	sections = append(sections, StepNoteStyle.Render("  q: quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader shows the spinner, session identity, and elapsed time.
func (m LiveModel) renderHeader() string {
	elapsed := time.Since(m.started).Round(time.Second)

	title := lipgloss.NewStyle().Foreground(TextColor).Bold(true).
		Render("MONITORING " + m.Profile)
	probe := HeaderParamKeyStyle.Render("probe:") + " " +
		HeaderParamValueStyle.Render(m.Probe)
	clock := HeaderParamKeyStyle.Render("elapsed:") + " " +
		HeaderParamValueStyle.Render(elapsed.String())

	top := m.Spinner.View() + " " + title
	content := lipgloss.JoinVertical(lipgloss.Left, top, probe, clock)

	return HeaderBorderStyle(m.Width).Render(content)
}

// renderProgress shows round progress, per-test hit counts, and counters.
func (m LiveModel) renderProgress() string {
	var lines []string

	round := fmt.Sprintf("Round %d of %d", m.rounds, m.MaxRounds)
	lines = append(lines, GDBOutputTitleStyle.Render(round))
	if m.MaxRounds > 0 {
		lines = append(lines, "  "+m.bar.ViewAs(float64(m.rounds)/float64(m.MaxRounds)))
	}
	lines = append(lines, "")

	names := make([]string, len(m.Expected))
	copy(names, m.Expected)
	sort.Strings(names)

	for _, name := range names {
		count := m.hits[name]
		marker := StepMarkerPending
		style := StepPendingStyle
		switch {
		case count > m.rounds:
			// Hit in the round currently in progress.
			marker = StepMarkerComplete
			style = StepCompleteStyle
		case count > 0:
			marker = StepMarkerRunning
			style = StepRunningStyle
		}
		lines = append(lines, style.Render(fmt.Sprintf("  %s %s", marker, name))+
			StepNoteStyle.Render(fmt.Sprintf("  (%d)", count)))
	}

	counters := fmt.Sprintf("passed: %s  failed: %s",
		formatCounter(m.passed), formatCounter(m.failed))
	lines = append(lines, "")
	lines = append(lines, ResultValueStyle.Render("  "+counters))

	content := strings.Join(lines, "\n")
	return GDBOutputBoxStyle(m.Width).Render(content)
}

// renderLog shows the rolling activity log.
func (m LiveModel) renderLog() string {
	var lines []string
	lines = append(lines, GDBOutputTitleStyle.Render("Activity"))
	if len(m.log) == 0 {
		lines = append(lines, StepNoteStyle.Render("  waiting for the first stop..."))
	} else {
		for _, entry := range m.log {
			lines = append(lines, "  "+entry)
		}
	}
	content := strings.Join(lines, "\n")
	return GDBOutputBoxStyle(m.Width).Render(content)
}

// barWidth sizes the round progress bar within the panel box.
func barWidth(width int) int {
	w := width - 12
	if w < 20 {
		w = 20
	}
	if w > 50 {
		w = 50
	}
	return w
}

// RunLive runs the live view until the session produces a verdict or the
// operator quits. Returns the final model so the caller can read Outcome
// and Interrupted.
func RunLive(model LiveModel) (LiveModel, error) {
	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return model, err
	}
	if m, ok := final.(LiveModel); ok {
		return m, nil
	}
	return model, nil
}
