package rsp

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func TestEncodeFrame(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{name: "ok reply", payload: "OK", want: "$OK#9a"},
		{name: "empty payload", payload: "", want: "$#00"},
		{name: "memory read", payload: "m6e000,10", want: "$m6e000,10#25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(EncodeFrame(tt.payload)); got != tt.want {
				t.Errorf("EncodeFrame(%q) = %q, want %q", tt.payload, got, tt.want)
			}
		})
	}
}

func TestReadFrame(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		r := bufio.NewReader(bytes.NewReader(EncodeFrame("m6e000,10")))
		got, err := ReadFrame(r)
		if err != nil {
			t.Fatalf("ReadFrame() error: %v", err)
		}
		if got != "m6e000,10" {
			t.Errorf("ReadFrame() = %q", got)
		}
	})

	t.Run("skips bytes before start marker", func(t *testing.T) {
		r := bufio.NewReader(strings.NewReader("+$OK#9a"))
		got, err := ReadFrame(r)
		if err != nil {
			t.Fatalf("ReadFrame() error: %v", err)
		}
		if got != "OK" {
			t.Errorf("ReadFrame() = %q, want OK", got)
		}
	})

	t.Run("checksum mismatch", func(t *testing.T) {
		r := bufio.NewReader(strings.NewReader("$OK#00"))
		if _, err := ReadFrame(r); err == nil {
			t.Fatal("expected checksum error")
		}
	})

	t.Run("truncated frame", func(t *testing.T) {
		r := bufio.NewReader(strings.NewReader("$OK"))
		if _, err := ReadFrame(r); err == nil {
			t.Fatal("expected error for truncated frame")
		}
	})
}

func TestExpandRunLength(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
		wantErr bool
	}{
		{name: "no encoding", payload: "deadbeef", want: "deadbeef"},
		// '!' is 33, so the run adds 33-29 = 4 repeats.
		{name: "simple run", payload: "0*!", want: "00000"},
		{name: "run mid payload", payload: "ab0*!cd", want: "ab00000cd"},
		{name: "marker with no preceding byte", payload: "*!", wantErr: true},
		{name: "marker at end", payload: "ab*", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandRunLength(tt.payload)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ExpandRunLength(%q) = %q, want %q", tt.payload, got, tt.want)
			}
		})
	}
}

func TestDecodeHexBytes(t *testing.T) {
	got, err := DecodeHexBytes("0c000000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, []byte{0x0c, 0x00, 0x00, 0x00}) {
		t.Errorf("DecodeHexBytes() = %x", got)
	}

	if _, err := DecodeHexBytes("zz"); err == nil {
		t.Error("expected error for non-hex payload")
	}
}

func TestIsErrorReply(t *testing.T) {
	if code, ok := IsErrorReply("E14"); !ok || code != 0x14 {
		t.Errorf("IsErrorReply(E14) = %x, %v", code, ok)
	}
	if _, ok := IsErrorReply("OK"); ok {
		t.Error("OK misread as error")
	}
	if _, ok := IsErrorReply("E1"); ok {
		t.Error("short payload misread as error")
	}
	if _, ok := IsErrorReply("Exx"); ok {
		t.Error("non-hex code misread as error")
	}
}
