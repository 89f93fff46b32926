package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ringscope/ringscope/internal/session"
	"github.com/ringscope/ringscope/internal/trace"
)

// RenderTraceReport renders a decoded ring buffer as a slot table. The head
// slot (most recently written entry) is marked; slots that could not be read
// render their error in place of a variant.
func RenderTraceReport(report trace.Report, width int) string {
	var lines []string

	title := GDBOutputTitleStyle.Render(fmt.Sprintf(
		"Trace ring @ 0x%x  (%d entries x %d bytes)",
		report.Layout.Base, report.Layout.EntryCount, report.Layout.EntryStride))
	lines = append(lines, title)

	if report.HeadKnown {
		lines = append(lines, HeaderParamKeyStyle.Render(
			fmt.Sprintf("head slot: %d", report.Head)))
	} else {
		lines = append(lines, StepNoteStyle.Render(
			"head slot unknown (no layout candidate yielded a valid head); slot order is raw"))
	}
	lines = append(lines, "")

	slotStyle := lipgloss.NewStyle().Foreground(MutedColor).Width(6)
	currentStyle := lipgloss.NewStyle().Foreground(SuccessColor).Bold(true)
	errStyle := lipgloss.NewStyle().Foreground(ErrorColor)

	for _, rec := range report.Records {
		slot := slotStyle.Render(fmt.Sprintf("[%2d]", rec.Slot))
		body := rec.String()
		switch {
		case rec.Err != "":
			body = errStyle.Render(body)
		case rec.Current:
			body = currentStyle.Render(body)
		default:
			body = ResultValueStyle.Render(body)
		}
		lines = append(lines, "  "+slot+" "+body)
	}

	content := strings.Join(lines, "\n")
	return GDBOutputBoxStyle(width).Render(content)
}

// RenderSessionSummary renders the final session outcome: verdict banner,
// per-test hit counts, counters, and backtrace if one was captured.
func RenderSessionSummary(out session.Outcome, width int) string {
	details := map[string]string{
		"Rounds":  fmt.Sprintf("%d / %d", out.Rounds, out.MaxRounds),
		"Elapsed": out.Elapsed.Round(time.Millisecond).String(),
		"Passed":  formatCounter(out.Passed),
		"Failed":  formatCounter(out.Failed),
	}
	if out.Reason != "" {
		details["Reason"] = out.Reason
	}

	var sections []string

	if out.Success() {
		result := NewSuccessResult("Session "+out.Verdict.String(), details)
		result.SetWidth(width)
		sections = append(sections, result.Render())
	} else {
		result := NewFailureResult("Session "+out.Verdict.String(),
			fmt.Errorf("%s", out.Reason), verdictTips(out.Verdict))
		result.SetWidth(width)
		sections = append(sections, result.Render())

		var statLines []string
		for _, key := range []string{"Rounds", "Elapsed", "Passed", "Failed"} {
			keyStyled := ResultKeyStyle.Render("  " + key + ":")
			statLines = append(statLines, keyStyled+" "+ResultValueStyle.Render(details[key]))
		}
		sections = append(sections, strings.Join(statLines, "\n"))
	}

	if len(out.Hits) > 0 {
		sections = append(sections, renderHitTable(out.Hits, width))
	}

	if out.Backtrace != "" {
		bt := NewGDBOutput(out.Backtrace)
		bt.SetTitle("Panic backtrace")
		bt.SetWidth(width)
		sections = append(sections, bt.Render())
	}

	return strings.Join(sections, "\n")
}

// renderHitTable lists per-test hit counts in name order.
func renderHitTable(hits map[string]int, width int) string {
	names := make([]string, 0, len(hits))
	for name := range hits {
		names = append(names, name)
	}
	sort.Strings(names)

	var lines []string
	lines = append(lines, GDBOutputTitleStyle.Render("Test entry hits"))
	for _, name := range names {
		key := ResultKeyStyle.Render("  " + name + ":")
		val := ResultValueStyle.Render(fmt.Sprintf("%d", hits[name]))
		lines = append(lines, key+" "+val)
	}

	content := strings.Join(lines, "\n")
	return GDBOutputBoxStyle(width).Render(content)
}

// formatCounter renders a counter value, showing "?" for unknown.
func formatCounter(v int64) string {
	if v == session.CounterUnknown {
		return "?"
	}
	return fmt.Sprintf("%d", v)
}

// verdictTips returns troubleshooting tips for failed session verdicts.
func verdictTips(v session.Verdict) []string {
	switch v {
	case session.VerdictTimedOut:
		return []string{
			"Increase the session timeout with --session-timeout",
			"Check the firmware is actually running its test suite",
			"Run with --verbose to see each stop as it happens",
		}
	case session.VerdictTargetLost:
		return []string{
			"Verify OpenOCD is still connected",
			"Check the probe wiring and target power",
			"Try: ringscope check",
		}
	default:
		return []string{
			"Inspect the panic backtrace above, if any",
			"Dump the trace ring with: ringscope dump",
			"Run with --verbose for full GDB output",
		}
	}
}
