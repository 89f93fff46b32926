package session

import "strings"

// Kind distinguishes the stop locations the monitor reacts to.
type Kind int

const (
	// KindOther is any stop that is neither a test entry nor a panic.
	KindOther Kind = iota

	// KindTestEntry is a stop at one of the expected test functions.
	KindTestEntry

	// KindPanic is a stop inside a panic or fault handler.
	KindPanic
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindTestEntry:
		return "test-entry"
	case KindPanic:
		return "panic"
	default:
		return "other"
	}
}

// Classification is the result of classifying one stop location.
type Classification struct {
	Kind Kind

	// Test is the canonical expected-test name for KindTestEntry stops.
	Test string
}

// Classifier maps a stop location name to a classification. Injected into
// the monitor so the state machine stays decoupled from the naming
// conventions of any particular build.
type Classifier func(location string) Classification

// DefaultPanicPatterns are the substrings conventionally present in panic
// and fault handler symbol names.
var DefaultPanicPatterns = []string{"panic"}

// NewSubstringClassifier builds the conventional classifier: a location is a
// panic when it contains any panic pattern (case-insensitive), and a test
// entry when it contains an expected test name. Substring containment, not
// exact equality, because build systems mangle symbol names with suffixes.
//
// Panic wins over test entry so a panic inside a test function is still a
// panic. When patterns is nil, DefaultPanicPatterns applies.
func NewSubstringClassifier(expected []string, patterns []string) Classifier {
	if patterns == nil {
		patterns = DefaultPanicPatterns
	}
	return func(location string) Classification {
		if location == "" {
			return Classification{Kind: KindOther}
		}
		lower := strings.ToLower(location)
		for _, p := range patterns {
			if strings.Contains(lower, strings.ToLower(p)) {
				return Classification{Kind: KindPanic}
			}
		}
		for _, name := range expected {
			if strings.Contains(location, name) {
				return Classification{Kind: KindTestEntry, Test: name}
			}
		}
		return Classification{Kind: KindOther}
	}
}
