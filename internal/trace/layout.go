package trace

import "fmt"

// Layout describes one candidate geometry for a trace ring buffer: where the
// head ("next write") index lives relative to the base address and where the
// entry array begins.
type Layout struct {
	// Base is the address of the ring buffer structure.
	Base uint64

	// EntryCount is the declared number of slots. Must be > 0.
	EntryCount int

	// EntryStride is the size in bytes of one entry. Must be > 0.
	EntryStride int

	// HeadOffset is the offset of the u16 head index from Base.
	HeadOffset uint64

	// DataOffset is the offset of slot 0 from Base.
	DataOffset uint64
}

// HeadAddr returns the address of the head index.
func (l Layout) HeadAddr() uint64 {
	return l.Base + l.HeadOffset
}

// EntryAddr returns the address of slot i.
func (l Layout) EntryAddr(i int) uint64 {
	return l.Base + l.DataOffset + uint64(i)*uint64(l.EntryStride)
}

// Validate checks that the layout describes a decodable buffer.
func (l Layout) Validate() error {
	if l.EntryCount <= 0 {
		return fmt.Errorf("entry count must be positive, got %d", l.EntryCount)
	}
	if l.EntryStride <= 0 {
		return fmt.Errorf("entry stride must be positive, got %d", l.EntryStride)
	}
	return nil
}

// DefaultCandidates returns the layout candidates the firmware's build is
// known to produce, in probe order.
//
// The first is the plain ringbuf shape: u16 head at +0, entries at +2. The
// second compensates for StaticCell wrapper padding observed in the field:
// head at +8, entries at +10. A caller with exact knowledge of the build can
// pass its own single-candidate list instead.
func DefaultCandidates(base uint64, entryCount, entryStride int) []Layout {
	return []Layout{
		{Base: base, EntryCount: entryCount, EntryStride: entryStride, HeadOffset: 0, DataOffset: 2},
		{Base: base, EntryCount: entryCount, EntryStride: entryStride, HeadOffset: 8, DataOffset: 10},
	}
}
