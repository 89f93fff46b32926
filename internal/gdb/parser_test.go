package gdb

import (
	"errors"
	"strings"
	"testing"

	"github.com/ringscope/ringscope/internal/target"
)

func TestParser_ExamineValue(t *testing.T) {
	p := NewParser()

	tests := []struct {
		name    string
		output  string
		want    uint64
		wantErr bool
	}{
		{
			name:   "decimal value",
			output: "0x6e000:\t12",
			want:   12,
		},
		{
			name:   "hex value",
			output: "0x6e004:\t0x4d2",
			want:   0x4d2,
		},
		{
			name:   "symbol annotated address",
			output: "0x6e000 <spdm_resp::__RINGBUF>:\t3",
			want:   3,
		},
		{
			name:   "decimal address",
			output: "450560:\t7",
			want:   7,
		},
		{
			name:   "value with trailing fields takes first numeric",
			output: "0x6e002:\t10\t99",
			want:   10,
		},
		{
			name:   "preceded by echo noise",
			output: "some banner line\n0x6e008:\t0xff",
			want:   0xff,
		},
		{
			name:    "no examine line",
			output:  "Cannot access memory at address 0x6e000",
			wantErr: true,
		},
		{
			name:    "empty output",
			output:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ExamineValue(tt.output)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got value %d", got)
				}
				var parseErr *GDBParseError
				if !errors.As(err, &parseErr) {
					t.Errorf("expected *GDBParseError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ExamineValue() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParser_CounterValue(t *testing.T) {
	p := NewParser()

	tests := []struct {
		name    string
		output  string
		want    int64
		wantOK  bool
		wantErr bool
	}{
		{
			name:   "simple value",
			output: "$1 = 42",
			want:   42,
			wantOK: true,
		},
		{
			name:   "later value number",
			output: "$17 = 0",
			want:   0,
			wantOK: true,
		},
		{
			name:   "negative value",
			output: "$2 = -1",
			want:   -1,
			wantOK: true,
		},
		{
			name:   "missing symbol is absent not error",
			output: `No symbol "COUNTERS" in current context.`,
			wantOK: false,
		},
		{
			name:   "missing member is absent",
			output: "There is no member named test_hmac_sha256.",
			wantOK: false,
		},
		{
			name:   "unknown type is absent",
			output: "'task_hmac_client::COUNTERS' has unknown type; cast it to its declared type",
			wantOK: false,
		},
		{
			name:    "garbage output",
			output:  "something unexpected",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := p.CounterValue(tt.output)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("CounterValue() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParser_ClassifyStop(t *testing.T) {
	p := NewParser()

	tests := []struct {
		name         string
		output       string
		wantLocation string
	}{
		{
			name:         "breakpoint hit",
			output:       "Breakpoint 2, test_hmac_sha256 () at hmac_test.rs:41\n41\t    let key = [0u8; 32];",
			wantLocation: "test_hmac_sha256",
		},
		{
			name:         "breakpoint with address",
			output:       "Breakpoint 1, 0x0800abcd in rust_panic (args=...) at panicking.rs:10",
			wantLocation: "rust_panic",
		},
		{
			name:         "mangled breakpoint name",
			output:       "Breakpoint 3.1, hmac_test::test_hmac_sha384::h1a2b3c () at hmac_test.rs:62",
			wantLocation: "hmac_test::test_hmac_sha384::h1a2b3c",
		},
		{
			name:         "signal stop names the frame",
			output:       "Program received signal SIGTRAP, Trace/breakpoint trap.\n0x08001234 in core::panicking::panic (msg=...) at panicking.rs:50",
			wantLocation: "core::panicking::panic",
		},
		{
			name:         "anonymous halt",
			output:       "Program stopped.",
			wantLocation: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stop, err := p.ClassifyStop(tt.output)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if stop.Location != tt.wantLocation {
				t.Errorf("Location = %q, want %q", stop.Location, tt.wantLocation)
			}
			if stop.Raw != tt.output {
				t.Errorf("Raw output not preserved")
			}
		})
	}
}

func TestParser_ClassifyStop_ChannelErrors(t *testing.T) {
	p := NewParser()

	t.Run("remote closed is target lost", func(t *testing.T) {
		_, err := p.ClassifyStop("Remote connection closed")
		var lost *target.TargetLostError
		if !errors.As(err, &lost) {
			t.Fatalf("expected *target.TargetLostError, got %v", err)
		}
		if !strings.Contains(lost.Detail, "Remote connection closed") {
			t.Errorf("Detail = %q, want the offending line", lost.Detail)
		}
	})

	t.Run("program exit is target exited", func(t *testing.T) {
		_, err := p.ClassifyStop("[Inferior 1 (Remote target) exited normally]\nThe program is not being run.")
		var exited *target.TargetExitedError
		if !errors.As(err, &exited) {
			t.Fatalf("expected *target.TargetExitedError, got %v", err)
		}
	})
}

func TestParser_DetectChannelError(t *testing.T) {
	p := NewParser()

	tests := []struct {
		name       string
		output     string
		wantLost   bool
		wantExited bool
	}{
		{name: "clean output", output: "Breakpoint 1, foo () at f.rs:1"},
		{name: "communication error", output: "Remote communication error.  Target disconnected.", wantLost: true},
		{name: "connection refused", output: "localhost:3333: Connection refused.", wantLost: true},
		{name: "gone away", output: "The remote target has gone away", wantLost: true},
		{name: "program exited", output: "Program exited with code 01.", wantExited: true},
		{name: "program terminated", output: "Program terminated with signal SIGKILL.", wantExited: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.DetectChannelError(tt.output)
			var lost *target.TargetLostError
			var exited *target.TargetExitedError
			switch {
			case tt.wantLost:
				if !errors.As(err, &lost) {
					t.Errorf("expected TargetLostError, got %v", err)
				}
			case tt.wantExited:
				if !errors.As(err, &exited) {
					t.Errorf("expected TargetExitedError, got %v", err)
				}
			default:
				if err != nil {
					t.Errorf("expected nil, got %v", err)
				}
			}
		})
	}
}

func TestParser_Backtrace(t *testing.T) {
	p := NewParser()

	output := `#0  core::panicking::panic (msg=...) at panicking.rs:50
#1  0x08001000 in hmac_test::verify (digest=...) at hmac_test.rs:20
#2  0x08001100 in test_hmac_sha256 () at hmac_test.rs:44
More stack frames follow...
(gdb) `

	got := p.Backtrace(output, 10)
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d frames, want 3:\n%s", len(lines), got)
	}
	if !strings.HasPrefix(lines[0], "#0") || !strings.HasPrefix(lines[2], "#2") {
		t.Errorf("frames out of order:\n%s", got)
	}

	t.Run("limit caps frames", func(t *testing.T) {
		got := p.Backtrace(output, 2)
		if n := len(strings.Split(got, "\n")); n != 2 {
			t.Errorf("got %d frames, want 2", n)
		}
	})

	t.Run("no frames yields empty", func(t *testing.T) {
		if got := p.Backtrace("No stack.", 10); got != "" {
			t.Errorf("got %q, want empty", got)
		}
	})
}
