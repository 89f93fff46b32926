package profile

import (
	_ "embed"
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ringscope/ringscope/internal/session"
	"github.com/ringscope/ringscope/internal/trace"
)

//go:embed profiles/profiles.yaml
var profilesYAML []byte

// Profile describes one firmware image: its trace ring buffer and/or its
// on-target test suite.
type Profile struct {
	// Name is the profile identifier (e.g., "spdm-responder")
	Name string `yaml:"name"`

	// Description is the human-readable summary
	Description string `yaml:"description"`

	// Verified indicates whether this profile has been tested on hardware
	Verified bool `yaml:"verified"`

	// Trace describes the image's trace ring buffer, if it has one
	Trace *TraceSpec `yaml:"trace,omitempty"`

	// Session describes the image's test suite, if it has one
	Session *SessionSpec `yaml:"session,omitempty"`

	// Notes contains additional information about this profile
	Notes string `yaml:"notes,omitempty"`
}

// TraceSpec locates and describes a trace ring buffer.
type TraceSpec struct {
	// Base is the buffer's base address in target memory
	Base uint64 `yaml:"base"`

	// EntryCount is the number of slots in the ring
	EntryCount int `yaml:"entry_count"`

	// EntryStride is the size of one slot in bytes
	EntryStride int `yaml:"entry_stride"`

	// Candidates are the head/data offset pairs to probe, in order
	Candidates []LayoutCandidate `yaml:"candidates"`

	// Variants maps discriminant values to names and payload decoders
	Variants []VariantSpec `yaml:"variants"`
}

// LayoutCandidate is one head/data offset pairing to probe.
type LayoutCandidate struct {
	HeadOffset uint64 `yaml:"head_offset"`
	DataOffset uint64 `yaml:"data_offset"`
}

// VariantSpec names one trace discriminant and its optional payload.
type VariantSpec struct {
	Discriminant uint8        `yaml:"discriminant"`
	Name         string       `yaml:"name"`
	Payload      *PayloadSpec `yaml:"payload,omitempty"`
}

// PayloadSpec describes how to decode a variant's payload field.
type PayloadSpec struct {
	// Kind is one of "u8", "u32", or "enum"
	Kind string `yaml:"kind"`

	// Offset is the payload's byte offset within the entry
	Offset uint64 `yaml:"offset"`

	// Values names enum codes; only used when Kind is "enum"
	Values map[uint32]string `yaml:"values,omitempty"`
}

// SessionSpec describes a test suite and how to monitor it.
type SessionSpec struct {
	// Tests are the expected test entry names (matched by substring)
	Tests []string `yaml:"tests"`

	// PanicBreakpoints are extra symbols to break on for panic capture
	PanicBreakpoints []string `yaml:"panic_breakpoints,omitempty"`

	// PanicPatterns are substrings identifying a panic stop location
	PanicPatterns []string `yaml:"panic_patterns,omitempty"`

	// Counters names the pass/fail counters in the firmware
	Counters CounterSpec `yaml:"counters"`

	// Rounds is the number of completed test rounds required for success
	Rounds int `yaml:"rounds"`

	// Timeout bounds the whole session (Go duration string, e.g. "60s")
	Timeout string `yaml:"timeout"`
}

// CounterSpec names the firmware's test counters.
type CounterSpec struct {
	Task   string `yaml:"task"`
	Passed string `yaml:"passed"`
	Failed string `yaml:"failed"`
}

// Catalog holds all known profiles.
type Catalog struct {
	Profiles []*Profile

	index map[string]*Profile
}

// catalogContainer is for YAML unmarshaling
type catalogContainer struct {
	Profiles []*Profile `yaml:"profiles"`
}

var (
	globalCatalog     *Catalog
	globalCatalogOnce sync.Once
	globalCatalogErr  error
)

// Load loads the embedded profile catalog. Safe to call multiple times; the
// catalog is parsed only once.
func Load() (*Catalog, error) {
	globalCatalogOnce.Do(func() {
		globalCatalog, globalCatalogErr = loadInternal()
	})
	return globalCatalog, globalCatalogErr
}

func loadInternal() (*Catalog, error) {
	var container catalogContainer
	if err := yaml.Unmarshal(profilesYAML, &container); err != nil {
		return nil, fmt.Errorf("failed to parse profiles.yaml: %w", err)
	}

	catalog := &Catalog{
		Profiles: container.Profiles,
		index:    make(map[string]*Profile),
	}
	for _, p := range catalog.Profiles {
		catalog.index[p.Name] = p
	}
	return catalog, nil
}

// LoadFile loads a catalog from a profile file on disk, for firmware images
// the embedded catalog does not know about. The file uses the same schema as
// the embedded profiles.yaml.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	var container catalogContainer
	if err := yaml.Unmarshal(data, &container); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(container.Profiles) == 0 {
		return nil, fmt.Errorf("%s contains no profiles", path)
	}

	catalog := &Catalog{
		Profiles: container.Profiles,
		index:    make(map[string]*Profile),
	}
	for _, p := range catalog.Profiles {
		catalog.index[p.Name] = p
	}
	return catalog, nil
}

// Get retrieves a profile by name. Returns nil, false if not found.
func (c *Catalog) Get(name string) (*Profile, bool) {
	p, ok := c.index[name]
	return p, ok
}

// Names returns all profile names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		names = append(names, p.Name)
	}
	return names
}

// String returns a human-readable representation of the profile.
func (p *Profile) String() string {
	verifiedStr := ""
	if p.Verified {
		verifiedStr = " (verified)"
	}
	return fmt.Sprintf("%s - %s%s", p.Name, p.Description, verifiedStr)
}

// LayoutCandidates builds the trace layouts to probe, in catalog order.
func (t *TraceSpec) LayoutCandidates() []trace.Layout {
	candidates := make([]trace.Layout, 0, len(t.Candidates))
	for _, c := range t.Candidates {
		candidates = append(candidates, trace.Layout{
			Base:        t.Base,
			EntryCount:  t.EntryCount,
			EntryStride: t.EntryStride,
			HeadOffset:  c.HeadOffset,
			DataOffset:  c.DataOffset,
		})
	}
	return candidates
}

// VariantTable builds the decode table from the variant specs.
func (t *TraceSpec) VariantTable() (trace.VariantTable, error) {
	table := make(trace.VariantTable, len(t.Variants))
	for _, v := range t.Variants {
		variant := trace.Variant{Name: v.Name}
		if v.Payload != nil {
			switch v.Payload.Kind {
			case "u8":
				variant.Payload = trace.U8At(v.Payload.Offset)
			case "u32":
				variant.Payload = trace.U32At(v.Payload.Offset)
			case "enum":
				variant.Payload = trace.EnumAt(v.Payload.Offset, v.Payload.Values)
			default:
				return nil, fmt.Errorf("variant %s: unknown payload kind %q", v.Name, v.Payload.Kind)
			}
		}
		table[v.Discriminant] = variant
	}
	return table, nil
}

// MonitorOptions builds session options from the spec. The Classifier and
// Counters fields are fully populated; callers may still override them.
func (s *SessionSpec) MonitorOptions() (session.Options, error) {
	timeout, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return session.Options{}, fmt.Errorf("invalid session timeout %q: %w", s.Timeout, err)
	}

	patterns := s.PanicPatterns
	if len(patterns) == 0 {
		patterns = session.DefaultPanicPatterns
	}

	return session.Options{
		Expected:   s.Tests,
		MaxRounds:  s.Rounds,
		Timeout:    timeout,
		Classifier: session.NewSubstringClassifier(s.Tests, patterns),
		Counters: session.Counters{
			Task:   s.Counters.Task,
			Passed: s.Counters.Passed,
			Failed: s.Counters.Failed,
		},
	}, nil
}

// Breakpoints returns the symbols a session should break on: every expected
// test entry plus the panic handlers.
func (s *SessionSpec) Breakpoints() []string {
	bps := make([]string, 0, len(s.Tests)+len(s.PanicBreakpoints))
	bps = append(bps, s.Tests...)
	bps = append(bps, s.PanicBreakpoints...)
	return bps
}
