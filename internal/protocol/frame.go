package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// LengthPrefixSize is the size of the frame length prefix (uint32, BE).
	LengthPrefixSize = 4

	// MessageHeaderSize is op (uint32) + entity id (int64).
	MessageHeaderSize = 12

	// MaxMessageSize bounds a single message (header + body).
	MaxMessageSize = 64 * 1024
)

// ErrMessageTooLarge is returned for frames above MaxMessageSize.
var ErrMessageTooLarge = errors.New("message too large")

// Message is one decoded frame: an opcode, the entity it addresses and the body.
type Message struct {
	Op       uint32
	EntityID int64
	Body     []byte
}

// AppendMessage appends the framed encoding of m to dst.
func AppendMessage(dst []byte, m Message) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(MessageHeaderSize+len(m.Body)))
	dst = binary.BigEndian.AppendUint32(dst, m.Op)
	dst = binary.BigEndian.AppendUint64(dst, uint64(m.EntityID))
	return append(dst, m.Body...)
}

// WriteMessage writes one framed message to w.
func WriteMessage(w io.Writer, m Message) error {
	if MessageHeaderSize+len(m.Body) > MaxMessageSize {
		return fmt.Errorf("writing message %d bytes: %w", len(m.Body), ErrMessageTooLarge)
	}
	buf := AppendMessage(make([]byte, 0, LengthPrefixSize+MessageHeaderSize+len(m.Body)), m)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	return nil
}

// ReadMessage reads one framed message from r into buf.
// The returned Body aliases buf; buf must hold MaxMessageSize bytes.
func ReadMessage(r io.Reader, buf []byte) (Message, error) {
	var prefix [LengthPrefixSize]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		// io.EOF is returned unwrapped so callers can tell a clean close.
		if errors.Is(err, io.EOF) {
			return Message{}, io.EOF
		}
		return Message{}, fmt.Errorf("reading frame length: %w", err)
	}

	n := int(binary.BigEndian.Uint32(prefix[:]))
	if n < MessageHeaderSize {
		return Message{}, fmt.Errorf("invalid frame length: %d", n)
	}
	if n > MaxMessageSize {
		return Message{}, fmt.Errorf("frame length %d: %w", n, ErrMessageTooLarge)
	}
	if n > len(buf) {
		return Message{}, fmt.Errorf("frame length %d exceeds buffer size %d", n, len(buf))
	}

	frame := buf[:n]
	if _, err := io.ReadFull(r, frame); err != nil {
		return Message{}, fmt.Errorf("reading frame body: %w", err)
	}

	return Message{
		Op:       binary.BigEndian.Uint32(frame[0:]),
		EntityID: int64(binary.BigEndian.Uint64(frame[4:])),
		Body:     frame[MessageHeaderSize:],
	}, nil
}
