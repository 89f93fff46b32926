package gdb

import (
	"reflect"
	"testing"
)

func TestRenderAttach(t *testing.T) {
	tests := []struct {
		name string
		spec AttachSpec
		want []string
	}{
		{
			name: "minimal spec",
			spec: AttachSpec{
				OpenOCDHost: "localhost",
				OpenOCDPort: 3333,
			},
			want: []string{
				"set pagination off",
				"set confirm off",
				"set width 0",
				"target extended-remote localhost:3333",
			},
		},
		{
			name: "symbol file and breakpoints",
			spec: AttachSpec{
				OpenOCDHost: "192.168.1.50",
				OpenOCDPort: 3334,
				SymbolFile:  "/build/app.elf",
				Breakpoints: []string{"test_hmac_sha256", "rust_panic"},
			},
			want: []string{
				"set pagination off",
				"set confirm off",
				"set width 0",
				"file /build/app.elf",
				"target extended-remote 192.168.1.50:3334",
				"break test_hmac_sha256",
				"break rust_panic",
			},
		},
		{
			name: "reset halt before breakpoints",
			spec: AttachSpec{
				OpenOCDHost: "localhost",
				OpenOCDPort: 3333,
				Reset:       true,
				Breakpoints: []string{"rust_panic"},
			},
			want: []string{
				"set pagination off",
				"set confirm off",
				"set width 0",
				"target extended-remote localhost:3333",
				"monitor reset halt",
				"break rust_panic",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderAttach(tt.spec)
			if err != nil {
				t.Fatalf("renderAttach() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("renderAttach() =\n%v\nwant\n%v", got, tt.want)
			}
		})
	}
}

func TestDescribeAttachCommand(t *testing.T) {
	tests := []struct {
		command string
		want    string
	}{
		{"file /build/app.elf", "Load symbols"},
		{"target extended-remote localhost:3333", "Connect to remote stub"},
		{"monitor reset halt", "Reset and halt"},
		{"break test_hmac_sha256", "Set breakpoint on test_hmac_sha256"},
		// Console setup commands are not reported as steps.
		{"set pagination off", ""},
		{"set width 0", ""},
	}

	for _, tt := range tests {
		if got := describeAttachCommand(tt.command); got != tt.want {
			t.Errorf("describeAttachCommand(%q) = %q, want %q", tt.command, got, tt.want)
		}
	}
}
