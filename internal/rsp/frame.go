package rsp

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// Frame control bytes
const (
	frameStart = '$'
	frameEnd   = '#'
	ackOK      = '+'
	ackResend  = '-'
)

// checksum computes the RSP checksum: the sum of all payload bytes mod 256.
func checksum(payload string) byte {
	var sum byte
	for i := 0; i < len(payload); i++ {
		sum += payload[i]
	}
	return sum
}

// EncodeFrame wraps a payload in the $...#xx envelope.
func EncodeFrame(payload string) []byte {
	return []byte(fmt.Sprintf("%c%s%c%02x", frameStart, payload, frameEnd, checksum(payload)))
}

// ReadFrame reads one $...#xx frame from the reader and returns its payload.
// Bytes before the start marker (acks, notifications we don't handle) are
// skipped. The checksum is verified.
func ReadFrame(r *bufio.Reader) (string, error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", fmt.Errorf("failed to read frame start: %w", err)
		}
		if b == frameStart {
			break
		}
	}

	var payload strings.Builder
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", fmt.Errorf("failed to read frame payload: %w", err)
		}
		if b == frameEnd {
			break
		}
		payload.WriteByte(b)
	}

	sum := make([]byte, 2)
	if _, err := io.ReadFull(r, sum); err != nil {
		return "", fmt.Errorf("failed to read frame checksum: %w", err)
	}
	var want byte
	if _, err := fmt.Sscanf(string(sum), "%02x", &want); err != nil {
		return "", fmt.Errorf("malformed frame checksum %q: %w", sum, err)
	}

	p := payload.String()
	if got := checksum(p); got != want {
		return "", fmt.Errorf("frame checksum mismatch: got %02x, want %02x", got, want)
	}
	return p, nil
}

// ExpandRunLength decodes the RSP run-length encoding: "x*n" repeats
// character x a further (n - 29) times. Stubs may use it to compress reply
// payloads.
func ExpandRunLength(payload string) (string, error) {
	var out strings.Builder
	for i := 0; i < len(payload); i++ {
		c := payload[i]
		if c != '*' {
			out.WriteByte(c)
			continue
		}
		if out.Len() == 0 || i+1 >= len(payload) {
			return "", fmt.Errorf("malformed run-length marker at offset %d", i)
		}
		repeat := int(payload[i+1]) - 29
		if repeat < 0 {
			return "", fmt.Errorf("invalid run-length count %q at offset %d", payload[i+1], i+1)
		}
		last := out.String()[out.Len()-1]
		for j := 0; j < repeat; j++ {
			out.WriteByte(last)
		}
		i++
	}
	return out.String(), nil
}

// DecodeHexBytes decodes a hex reply payload into raw bytes, expanding any
// run-length encoding first.
func DecodeHexBytes(payload string) ([]byte, error) {
	expanded, err := ExpandRunLength(payload)
	if err != nil {
		return nil, err
	}
	data, err := hex.DecodeString(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode hex payload %q: %w", payload, err)
	}
	return data, nil
}

// IsErrorReply reports whether a reply payload is an RSP error (Exx) and
// returns the error code when it is.
func IsErrorReply(payload string) (byte, bool) {
	if len(payload) != 3 || payload[0] != 'E' {
		return 0, false
	}
	var code byte
	if _, err := fmt.Sscanf(payload[1:], "%02x", &code); err != nil {
		return 0, false
	}
	return code, true
}
