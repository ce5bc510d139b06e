package packet

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Writer provides methods for writing message bodies.
// Uses Big-Endian byte order for all multi-byte values.
type Writer struct {
	buf *bytes.Buffer
}

// NewWriter creates a new writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{
		buf: bytes.NewBuffer(make([]byte, 0, capacity)),
	}
}

// WriteByte writes a single byte.
func (w *Writer) WriteByte(b byte) error {
	return w.buf.WriteByte(b)
}

// WriteBool writes a bool as one byte (0 or 1).
func (w *Writer) WriteBool(v bool) {
	if v {
		_ = w.buf.WriteByte(1)
		return
	}
	_ = w.buf.WriteByte(0)
}

// WriteShort writes an int16 (2 bytes, BE).
func (w *Writer) WriteShort(val int16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], uint16(val))
	w.buf.Write(tmp[:])
}

// WriteInt writes an int32 (4 bytes, BE).
func (w *Writer) WriteInt(val int32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(val))
	w.buf.Write(tmp[:])
}

// WriteLong writes an int64 (8 bytes, BE).
func (w *Writer) WriteLong(val int64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(val))
	w.buf.Write(tmp[:])
}

// WriteFloat writes a float32 (4 bytes, BE, IEEE 754).
func (w *Writer) WriteFloat(val float32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], math.Float32bits(val))
	w.buf.Write(tmp[:])
}

// WriteString writes a UTF-8 string: uint16 length (including the
// terminator), the bytes, then a 0x00 terminator.
func (w *Writer) WriteString(s string) {
	w.WriteShort(int16(len(s) + 1))
	w.buf.WriteString(s)
	_ = w.buf.WriteByte(0)
}

// WriteBytes writes raw bytes.
func (w *Writer) WriteBytes(data []byte) {
	_, _ = w.buf.Write(data)
}

// Bytes returns the accumulated data.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the current length.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Reset clears the buffer for reuse.
func (w *Writer) Reset() {
	w.buf.Reset()
}
