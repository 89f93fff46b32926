package session

import "testing"

func TestSubstringClassifier(t *testing.T) {
	expected := []string{"test_hmac_sha256", "test_hmac_sha384", "test_hmac_sha512"}
	classify := NewSubstringClassifier(expected, nil)

	tests := []struct {
		name     string
		location string
		kind     Kind
		test     string
	}{
		{"exact test name", "test_hmac_sha256", KindTestEntry, "test_hmac_sha256"},
		{"mangled suffix", "hmac_client::test_hmac_sha384::h3fa2", KindTestEntry, "test_hmac_sha384"},
		{"panic handler", "rust_panic", KindPanic, ""},
		{"panic case insensitive", "HardFault_Panic_Handler", KindPanic, ""},
		{"panic inside test name wins", "test_hmac_sha512_panic_path", KindPanic, ""},
		{"unrelated function", "sys_recv_closed", KindOther, ""},
		{"empty location", "", KindOther, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.location)
			if got.Kind != tt.kind {
				t.Errorf("kind: expected %v, got %v", tt.kind, got.Kind)
			}
			if got.Test != tt.test {
				t.Errorf("test: expected %q, got %q", tt.test, got.Test)
			}
		})
	}
}

func TestSubstringClassifierCustomPanicPatterns(t *testing.T) {
	classify := NewSubstringClassifier([]string{"test_a"}, []string{"hard_fault", "kfault"})

	if got := classify("HARD_FAULT_handler"); got.Kind != KindPanic {
		t.Errorf("expected KindPanic for custom pattern, got %v", got.Kind)
	}
	// "panic" is not in the custom pattern list.
	if got := classify("panic_entry"); got.Kind != KindOther {
		t.Errorf("custom patterns replace the defaults, got %v", got.Kind)
	}
}
