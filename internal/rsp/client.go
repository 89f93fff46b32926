package rsp

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ringscope/ringscope/internal/logging"
	"github.com/ringscope/ringscope/internal/target"
)

// maxSendAttempts bounds retransmission when the stub NAKs a frame.
const maxSendAttempts = 3

// Client is a direct connection to a GDB remote stub. It implements
// target.MemoryReader over raw 'm' packets.
type Client struct {
	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
	logger *zap.Logger

	// Timeout bounds each command round trip.
	timeout time.Duration
}

// Dial connects to a GDB stub at the given address and performs the initial
// no-ack probe. The stub keeps acknowledgement mode; we simply consume acks.
func Dial(ctx context.Context, address string, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dialer := net.Dialer{Timeout: 5 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to GDB stub at %s: %w", address, err)
	}

	c := &Client{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		logger:  logger,
		timeout: 5 * time.Second,
	}

	logger.Debug("Connected to GDB stub", zap.String("address", address))
	return c, nil
}

// Close terminates the stub connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// ReadMemory reads length bytes from addr via an 'm' packet.
func (c *Client) ReadMemory(addr uint64, length int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, fmt.Errorf("connection is closed")
	}

	reply, err := c.exchange(fmt.Sprintf("m%x,%x", addr, length))
	if err != nil {
		return nil, err
	}

	if code, isErr := IsErrorReply(reply); isErr {
		return nil, fmt.Errorf("stub reported error E%02x reading 0x%x", code, addr)
	}

	data, err := DecodeHexBytes(reply)
	if err != nil {
		return nil, err
	}
	if len(data) != length {
		return nil, fmt.Errorf("short read at 0x%x: got %d bytes, want %d", addr, len(data), length)
	}
	return data, nil
}

// ReadUint reads a little-endian unsigned integer of the given byte width.
// Errors are wrapped in *target.ReadError so decoding can degrade per slot.
func (c *Client) ReadUint(addr uint64, width int) (uint64, error) {
	if width != 1 && width != 2 && width != 4 && width != 8 {
		return 0, &target.ReadError{
			Addr:  addr,
			Width: width,
			Err:   fmt.Errorf("unsupported read width %d", width),
		}
	}

	data, err := c.ReadMemory(addr, width)
	if err != nil {
		return 0, &target.ReadError{Addr: addr, Width: width, Err: err}
	}

	var v uint64
	for i := width - 1; i >= 0; i-- {
		v = v<<8 | uint64(data[i])
	}
	return v, nil
}

// exchange sends one command frame and returns the reply payload,
// retransmitting on NAK. Callers hold c.mu.
func (c *Client) exchange(payload string) (string, error) {
	frame := EncodeFrame(payload)
	logging.LogRawBytes("RSP frame sent", frame)

	for attempt := 0; attempt < maxSendAttempts; attempt++ {
		deadline := time.Now().Add(c.timeout)
		if err := c.conn.SetDeadline(deadline); err != nil {
			return "", fmt.Errorf("failed to set deadline: %w", err)
		}

		if _, err := c.conn.Write(frame); err != nil {
			return "", fmt.Errorf("failed to send %q: %w", payload, err)
		}

		ack, err := c.reader.ReadByte()
		if err != nil {
			return "", fmt.Errorf("failed to read ack for %q: %w", payload, err)
		}
		if ack == ackResend {
			c.logger.Debug("Stub requested retransmission", zap.String("command", payload))
			continue
		}
		if ack != ackOK {
			// Some stubs run in no-ack mode; the byte we read is the
			// start of the reply frame.
			if err := c.reader.UnreadByte(); err != nil {
				return "", err
			}
		}

		reply, err := ReadFrame(c.reader)
		if err != nil {
			return "", fmt.Errorf("failed to read reply for %q: %w", payload, err)
		}

		// Acknowledge the reply so the stub doesn't retransmit.
		if _, err := c.conn.Write([]byte{ackOK}); err != nil {
			return "", fmt.Errorf("failed to ack reply: %w", err)
		}

		logging.LogRawBytes("RSP reply received", []byte(reply))
		return reply, nil
	}

	return "", fmt.Errorf("stub rejected %q after %d attempts", payload, maxSendAttempts)
}
