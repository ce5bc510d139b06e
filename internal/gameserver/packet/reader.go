package packet

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Reader provides methods for reading message bodies.
// Uses Big-Endian byte order for all multi-byte values.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a new reader.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) need(op string, n int) error {
	if r.pos+n > len(r.data) {
		return fmt.Errorf("%s: not enough data (pos=%d, need=%d, len=%d)", op, r.pos, n, len(r.data))
	}
	return nil
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	if err := r.need("ReadByte", 1); err != nil {
		return 0, err
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadBool reads one byte as a bool (non-zero is true).
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	return b != 0, err
}

// ReadShort reads an int16 (2 bytes, BE).
func (r *Reader) ReadShort() (int16, error) {
	if err := r.need("ReadShort", 2); err != nil {
		return 0, err
	}
	val := int16(binary.BigEndian.Uint16(r.data[r.pos:]))
	r.pos += 2
	return val, nil
}

// ReadInt reads an int32 (4 bytes, BE).
func (r *Reader) ReadInt() (int32, error) {
	if err := r.need("ReadInt", 4); err != nil {
		return 0, err
	}
	val := int32(binary.BigEndian.Uint32(r.data[r.pos:]))
	r.pos += 4
	return val, nil
}

// ReadLong reads an int64 (8 bytes, BE).
func (r *Reader) ReadLong() (int64, error) {
	if err := r.need("ReadLong", 8); err != nil {
		return 0, err
	}
	val := int64(binary.BigEndian.Uint64(r.data[r.pos:]))
	r.pos += 8
	return val, nil
}

// ReadFloat reads a float32 (4 bytes, BE, IEEE 754).
func (r *Reader) ReadFloat() (float32, error) {
	if err := r.need("ReadFloat", 4); err != nil {
		return 0, err
	}
	val := math.Float32frombits(binary.BigEndian.Uint32(r.data[r.pos:]))
	r.pos += 4
	return val, nil
}

// ReadString reads a string written by Writer.WriteString.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadShort()
	if err != nil {
		return "", fmt.Errorf("ReadString: %w", err)
	}
	if n < 1 {
		return "", fmt.Errorf("ReadString: invalid length %d", n)
	}
	if err := r.need("ReadString", int(n)); err != nil {
		return "", err
	}
	s := string(r.data[r.pos : r.pos+int(n)-1])
	r.pos += int(n)
	return s, nil
}

// ReadBytes reads n raw bytes. The returned slice aliases the reader's data.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("ReadBytes: negative length %d", n)
	}
	if err := r.need("ReadBytes", n); err != nil {
		return nil, err
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Position returns the current read offset.
func (r *Reader) Position() int {
	return r.pos
}
