package rsp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/ringscope/ringscope/internal/target"
)

// fakeStub serves RSP memory reads from a byte map over a TCP listener.
type fakeStub struct {
	listener net.Listener
	memory   map[uint64]byte
	// failAddr, when nonzero, makes reads at that address answer E14.
	failAddr uint64
}

func newFakeStub(t *testing.T, memory map[uint64]byte) *fakeStub {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	s := &fakeStub{listener: l, memory: memory}
	go s.serve()
	t.Cleanup(func() { l.Close() })
	return s
}

func (s *fakeStub) serve() {
	conn, err := s.listener.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	r := bufio.NewReader(conn)
	for {
		payload, err := ReadFrame(r)
		if err != nil {
			return
		}
		conn.Write([]byte{ackOK})
		conn.Write(EncodeFrame(s.reply(payload)))
		// Consume the client's ack of our reply.
		if _, err := r.ReadByte(); err != nil {
			return
		}
	}
}

func (s *fakeStub) reply(payload string) string {
	var addr uint64
	var length int
	if _, err := fmt.Sscanf(payload, "m%x,%x", &addr, &length); err != nil {
		return "E01"
	}
	if s.failAddr != 0 && addr == s.failAddr {
		return "E14"
	}
	out := ""
	for i := 0; i < length; i++ {
		out += fmt.Sprintf("%02x", s.memory[addr+uint64(i)])
	}
	return out
}

func (s *fakeStub) addr() string {
	return s.listener.Addr().String()
}

func TestClient_ReadUint(t *testing.T) {
	stub := newFakeStub(t, map[uint64]byte{
		0x6e000: 0x03, 0x6e001: 0x00,
		0x6e010: 0xd2, 0x6e011: 0x04, 0x6e012: 0x00, 0x6e013: 0x00,
		0x6e020: 0x2a,
	})

	client, err := Dial(context.Background(), stub.addr(), nil)
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	defer client.Close()

	tests := []struct {
		name  string
		addr  uint64
		width int
		want  uint64
	}{
		{name: "u16 little endian", addr: 0x6e000, width: 2, want: 3},
		{name: "u32 little endian", addr: 0x6e010, width: 4, want: 1234},
		{name: "u8", addr: 0x6e020, width: 1, want: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := client.ReadUint(tt.addr, tt.width)
			if err != nil {
				t.Fatalf("ReadUint() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadUint(0x%x, %d) = %d, want %d", tt.addr, tt.width, got, tt.want)
			}
		})
	}
}

func TestClient_ReadUint_Errors(t *testing.T) {
	stub := newFakeStub(t, map[uint64]byte{0x100: 1})
	stub.failAddr = 0x200

	client, err := Dial(context.Background(), stub.addr(), nil)
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	defer client.Close()

	t.Run("stub error becomes ReadError", func(t *testing.T) {
		_, err := client.ReadUint(0x200, 4)
		var readErr *target.ReadError
		if !errors.As(err, &readErr) {
			t.Fatalf("expected *target.ReadError, got %v", err)
		}
		if readErr.Addr != 0x200 || readErr.Width != 4 {
			t.Errorf("ReadError = %+v", readErr)
		}
	})

	t.Run("unsupported width", func(t *testing.T) {
		_, err := client.ReadUint(0x100, 3)
		var readErr *target.ReadError
		if !errors.As(err, &readErr) {
			t.Fatalf("expected *target.ReadError, got %v", err)
		}
	})

	t.Run("closed connection", func(t *testing.T) {
		client.Close()
		if _, err := client.ReadUint(0x100, 1); err == nil {
			t.Fatal("expected error after Close")
		}
	})
}
