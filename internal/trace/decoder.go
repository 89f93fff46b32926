package trace

import (
	"fmt"

	"github.com/ringscope/ringscope/internal/target"
)

// Record is one decoded ring buffer entry. Immutable once produced.
type Record struct {
	// Slot is the entry's index in the ring buffer.
	Slot int

	// Discriminant is the tag byte read at the entry address. Only valid
	// when Err is empty or the failure happened after the tag read.
	Discriminant uint8

	// Variant is the decoded variant name, or Unknown(<n>) for tags
	// missing from the table.
	Variant string

	// Payload is the rendered payload value for variants that carry one.
	Payload string

	// Err describes a read failure local to this slot. A non-empty Err
	// never aborts the sweep.
	Err string

	// Current marks the slot the head index points at: the next write
	// position, i.e. the boundary between newest and oldest entries.
	Current bool
}

// String renders the record the way the dump report displays it.
func (rec Record) String() string {
	s := rec.Variant
	switch {
	case rec.Err != "" && rec.Variant == "":
		s = fmt.Sprintf("<error reading entry: %s>", rec.Err)
	case rec.Err != "":
		s = fmt.Sprintf("%s(?)", rec.Variant)
	case rec.Payload != "":
		s = fmt.Sprintf("%s(%s)", rec.Variant, rec.Payload)
	}
	if rec.Current {
		s += " <- current"
	}
	return s
}

// Report is the outcome of one decode pass.
type Report struct {
	// Head is the resolved head index, or 0 when no candidate's head
	// read succeeded.
	Head int

	// HeadKnown reports whether Head was actually read from memory.
	// When false, the current-slot marker is placed at slot 0 on a
	// guess and should be presented accordingly.
	HeadKnown bool

	// Layout is the candidate that was adopted.
	Layout Layout

	// Records holds one entry per declared slot, ordered by slot index.
	Records []Record
}

// Decode reconstructs a trace ring buffer from target memory.
//
// Candidates are probed in order: the first layout whose head-index read
// succeeds is adopted. A failed head read is non-fatal; if every candidate
// fails, the first candidate is used with head 0 and decoding proceeds, since
// the head only drives marker placement, not record decoding.
//
// The sweep always covers the full declared entry count. Unknown
// discriminants and unreadable slots surface inline on the affected Record.
func Decode(r target.MemoryReader, candidates []Layout, table VariantTable) (Report, error) {
	if len(candidates) == 0 {
		return Report{}, fmt.Errorf("no layout candidates supplied")
	}
	for _, c := range candidates {
		if err := c.Validate(); err != nil {
			return Report{}, fmt.Errorf("invalid layout candidate: %w", err)
		}
	}

	layout, head, headKnown := resolveHead(r, candidates)

	report := Report{
		Head:      head,
		HeadKnown: headKnown,
		Layout:    layout,
		Records:   make([]Record, 0, layout.EntryCount),
	}

	for i := 0; i < layout.EntryCount; i++ {
		rec := decodeSlot(r, layout, table, i)
		rec.Current = i == head
		report.Records = append(report.Records, rec)
	}

	return report, nil
}

// resolveHead probes each candidate's head address and adopts the first that
// reads successfully. The head index is reduced modulo the entry count since
// some builds let it run free.
func resolveHead(r target.MemoryReader, candidates []Layout) (Layout, int, bool) {
	for _, c := range candidates {
		v, err := target.ReadU16(r, c.HeadAddr())
		if err != nil {
			continue
		}
		return c, int(v) % c.EntryCount, true
	}
	return candidates[0], 0, false
}

func decodeSlot(r target.MemoryReader, layout Layout, table VariantTable, i int) Record {
	rec := Record{Slot: i}
	addr := layout.EntryAddr(i)

	disc, err := target.ReadU8(r, addr)
	if err != nil {
		rec.Err = err.Error()
		return rec
	}
	rec.Discriminant = disc

	variant, ok := table[disc]
	if !ok {
		rec.Variant = fmt.Sprintf("Unknown(%d)", disc)
		return rec
	}
	rec.Variant = variant.Name

	if variant.Payload != nil {
		payload, err := variant.Payload(r, addr)
		if err != nil {
			// Variant name is retained so the report still shows
			// which event this slot held.
			rec.Err = err.Error()
			return rec
		}
		rec.Payload = payload
	}

	return rec
}
