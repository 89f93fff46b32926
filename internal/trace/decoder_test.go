package trace

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ringscope/ringscope/internal/target"
)

// fakeMemory is a sparse byte-addressable snapshot. Reads outside the
// populated range fail with a target.ReadError, like a real probe hitting
// unmapped memory.
type fakeMemory struct {
	bytes map[uint64]byte
	reads int
}

func newFakeMemory() *fakeMemory {
	return &fakeMemory{bytes: make(map[uint64]byte)}
}

func (m *fakeMemory) put(addr uint64, data ...byte) {
	for i, b := range data {
		m.bytes[addr+uint64(i)] = b
	}
}

// putU16 and putU32 store little-endian values, matching the ARM target.
func (m *fakeMemory) putU16(addr uint64, v uint16) {
	m.put(addr, byte(v), byte(v>>8))
}

func (m *fakeMemory) putU32(addr uint64, v uint32) {
	m.put(addr, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func (m *fakeMemory) ReadUint(addr uint64, width int) (uint64, error) {
	m.reads++
	var v uint64
	for i := 0; i < width; i++ {
		b, ok := m.bytes[addr+uint64(i)]
		if !ok {
			return 0, &target.ReadError{Addr: addr, Width: width}
		}
		v |= uint64(b) << (8 * i)
	}
	return v, nil
}

const testBase = 0x0006e000

func testTable() VariantTable {
	return VariantTable{
		0: {Name: "None"},
		1: {Name: "TaskStart"},
		3: {Name: "EidSet", Payload: U8At(4)},
		12: {Name: "MessageReceived", Payload: U32At(8)},
		16: {Name: "IpcErrorMctpRecv", Payload: EnumAt(4, map[uint32]string{
			1: "InternalError",
			4: "TimedOut",
		})},
	}
}

// buildBuffer populates a well-formed buffer under the first default
// candidate: head at +0, data at +2.
func buildBuffer(m *fakeMemory, head uint16, discriminants []byte, stride int) {
	m.putU16(testBase, head)
	for i, d := range discriminants {
		m.put(testBase+2+uint64(i*stride), d)
		// Zero the rest of the slot so payload reads succeed.
		for off := 1; off < stride; off++ {
			if _, ok := m.bytes[testBase+2+uint64(i*stride+off)]; !ok {
				m.put(testBase+2+uint64(i*stride+off), 0)
			}
		}
	}
}

func TestDecodeFullSweep(t *testing.T) {
	m := newFakeMemory()
	buildBuffer(m, 2, []byte{1, 0, 3, 0}, 16)
	m.put(testBase+2+2*16+4, 42) // EidSet payload in slot 2

	report, err := Decode(m, DefaultCandidates(testBase, 4, 16), testTable())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if len(report.Records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(report.Records))
	}
	if report.Head != 2 || !report.HeadKnown {
		t.Errorf("expected head 2 (known), got %d (known=%v)", report.Head, report.HeadKnown)
	}
	if got := report.Records[0].Variant; got != "TaskStart" {
		t.Errorf("slot 0: expected TaskStart, got %q", got)
	}
	if got := report.Records[2].Payload; got != "42" {
		t.Errorf("slot 2: expected payload 42, got %q", got)
	}
	if !report.Records[2].Current {
		t.Error("slot 2 should carry the current marker")
	}
	for i, rec := range report.Records {
		if i != 2 && rec.Current {
			t.Errorf("slot %d should not carry the current marker", i)
		}
	}
}

func TestDecodeHeadFallbackToSecondCandidate(t *testing.T) {
	m := newFakeMemory()
	// Only the second candidate's geometry is populated: head at +8,
	// data at +10.
	m.putU16(testBase+8, 1)
	for i := 0; i < 3; i++ {
		m.put(testBase+10+uint64(i*16), 1)
	}

	report, err := Decode(m, DefaultCandidates(testBase, 3, 16), testTable())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if report.Layout.HeadOffset != 8 || report.Layout.DataOffset != 10 {
		t.Errorf("expected second candidate adopted, got head@+%d data@+%d",
			report.Layout.HeadOffset, report.Layout.DataOffset)
	}
	if report.Head != 1 || !report.HeadKnown {
		t.Errorf("expected recovered head 1, got %d (known=%v)", report.Head, report.HeadKnown)
	}
}

func TestDecodeAllHeadReadsFailIsNonFatal(t *testing.T) {
	m := newFakeMemory()
	// No head words, but slot data under the first candidate is present.
	for i := 0; i < 2; i++ {
		m.put(testBase+2+uint64(i*16), 0)
	}

	report, err := Decode(m, DefaultCandidates(testBase, 2, 16), testTable())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if report.HeadKnown {
		t.Error("head should be unknown when every candidate read fails")
	}
	if report.Head != 0 {
		t.Errorf("head should default to 0, got %d", report.Head)
	}
	if len(report.Records) != 2 {
		t.Fatalf("sweep must still cover all slots, got %d records", len(report.Records))
	}
	if report.Records[0].Variant != "None" {
		t.Errorf("slot 0: expected None, got %q", report.Records[0].Variant)
	}
}

func TestDecodeUnknownDiscriminant(t *testing.T) {
	m := newFakeMemory()
	buildBuffer(m, 0, []byte{99, 1}, 16)

	report, err := Decode(m, DefaultCandidates(testBase, 2, 16), testTable())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got := report.Records[0].Variant; got != "Unknown(99)" {
		t.Errorf("expected Unknown(99), got %q", got)
	}
	if report.Records[0].Err != "" {
		t.Errorf("unknown discriminant must not be an error, got %q", report.Records[0].Err)
	}
}

func TestDecodeUnreadableSlotDegradesLocally(t *testing.T) {
	m := newFakeMemory()
	// Three slots declared, only slots 0 and 2 mapped: simulates a
	// declared count running past the readable region.
	m.putU16(testBase, 0)
	m.put(testBase+2, 1)
	m.put(testBase+2+2*16, 1)

	report, err := Decode(m, DefaultCandidates(testBase, 3, 16), testTable())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(report.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(report.Records))
	}
	if report.Records[1].Err == "" {
		t.Error("unmapped slot 1 should carry a decode error")
	}
	if report.Records[2].Variant != "TaskStart" {
		t.Errorf("sweep must continue past a bad slot, slot 2 got %q", report.Records[2].Variant)
	}
}

func TestDecodePayloadReadFailureKeepsVariantName(t *testing.T) {
	m := newFakeMemory()
	m.putU16(testBase, 0)
	// Slot 0 has discriminant 12 (MessageReceived) but no payload bytes
	// at +8.
	m.put(testBase+2, 12)

	report, err := Decode(m, DefaultCandidates(testBase, 1, 16), testTable())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	rec := report.Records[0]
	if rec.Variant != "MessageReceived" {
		t.Errorf("variant name must be retained, got %q", rec.Variant)
	}
	if rec.Err == "" {
		t.Error("payload read failure should surface as a decode error")
	}
	if got := rec.String(); got != "MessageReceived(?) <- current" {
		t.Errorf("unexpected rendering: %q", got)
	}
}

func TestDecodeEnumPayload(t *testing.T) {
	m := newFakeMemory()
	buildBuffer(m, 0, []byte{16, 16}, 16)
	m.putU32(testBase+2+4, 4)      // TimedOut
	m.putU32(testBase+2+16+4, 77)  // unmapped code

	report, err := Decode(m, DefaultCandidates(testBase, 2, 16), testTable())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got := report.Records[0].Payload; got != "TimedOut" {
		t.Errorf("expected TimedOut, got %q", got)
	}
	if got := report.Records[1].Payload; got != "Code77" {
		t.Errorf("expected Code77, got %q", got)
	}
}

func TestDecodeIdempotent(t *testing.T) {
	m := newFakeMemory()
	buildBuffer(m, 3, []byte{1, 3, 12, 16, 0, 42}, 16)
	m.put(testBase+2+1*16+4, 7)
	m.putU32(testBase+2+2*16+8, 1024)
	m.putU32(testBase+2+3*16+4, 1)

	candidates := DefaultCandidates(testBase, 6, 16)
	table := testTable()

	first, err := Decode(m, candidates, table)
	if err != nil {
		t.Fatalf("first Decode failed: %v", err)
	}
	second, err := Decode(m, candidates, table)
	if err != nil {
		t.Fatalf("second Decode failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("decoding the same snapshot twice must yield identical reports")
	}
}

func TestDecodeHeadWrapsModuloEntryCount(t *testing.T) {
	m := newFakeMemory()
	buildBuffer(m, 10, []byte{0, 0, 0, 0}, 16)

	report, err := Decode(m, DefaultCandidates(testBase, 4, 16), testTable())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if report.Head != 2 {
		t.Errorf("head 10 over 4 entries should mark slot 2, got %d", report.Head)
	}
}

func TestDecodeNoCandidates(t *testing.T) {
	m := newFakeMemory()
	if _, err := Decode(m, nil, testTable()); err == nil {
		t.Fatal("expected an error for an empty candidate list")
	}
}

func TestDecodeInvalidLayout(t *testing.T) {
	m := newFakeMemory()
	bad := []Layout{{Base: testBase, EntryCount: 0, EntryStride: 16}}
	_, err := Decode(m, bad, testTable())
	if err == nil {
		t.Fatal("expected an error for a zero entry count")
	}
}

func TestReadErrorIsTyped(t *testing.T) {
	m := newFakeMemory()
	_, err := m.ReadUint(0xdead, 1)
	var re *target.ReadError
	if !errors.As(err, &re) {
		t.Fatalf("expected *target.ReadError, got %T", err)
	}
}
