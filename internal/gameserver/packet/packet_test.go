package packet

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_BigEndian(t *testing.T) {
	w := NewWriter(16)
	w.WriteShort(0x1234)
	w.WriteInt(0x01020304)

	data := w.Bytes()
	require.Len(t, data, 6)
	assert.Equal(t, uint16(0x1234), binary.BigEndian.Uint16(data[0:]))
	assert.Equal(t, uint32(0x01020304), binary.BigEndian.Uint32(data[2:]))
}

func TestWriterReader_Values(t *testing.T) {
	w := NewWriter(8)

	require.NoError(t, w.WriteByte(0x42))
	w.WriteBool(true)
	w.WriteShort(-2)
	w.WriteInt(0x697C)
	w.WriteLong(0x0010000000000001)
	w.WriteFloat(50.5)
	w.WriteString("Combat Mastery")
	w.WriteString("")
	w.WriteBytes([]byte{9, 8})

	r := NewReader(w.Bytes())

	b, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x42), b)

	ok, err := r.ReadBool()
	require.NoError(t, err)
	assert.True(t, ok)

	s16, err := r.ReadShort()
	require.NoError(t, err)
	assert.Equal(t, int16(-2), s16)

	i32, err := r.ReadInt()
	require.NoError(t, err)
	assert.Equal(t, int32(0x697C), i32)

	i64, err := r.ReadLong()
	require.NoError(t, err)
	assert.Equal(t, int64(0x0010000000000001), i64)

	f, err := r.ReadFloat()
	require.NoError(t, err)
	assert.Equal(t, float32(50.5), f)

	str, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "Combat Mastery", str)

	str, err = r.ReadString()
	require.NoError(t, err)
	assert.Empty(t, str)

	raw, err := r.ReadBytes(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 8}, raw)
	assert.Zero(t, r.Remaining())
}

func TestReader_ShortData(t *testing.T) {
	r := NewReader([]byte{0x01})

	_, err := r.ReadInt()
	assert.Error(t, err)
	_, err = r.ReadLong()
	assert.Error(t, err)
	_, err = r.ReadBytes(-1)
	assert.Error(t, err)

	// A failed read does not advance.
	assert.Equal(t, 0, r.Position())

	r = NewReader([]byte{0x00, 0x05, 'a'})
	_, err = r.ReadString()
	assert.Error(t, err)

	r = NewReader([]byte{0x00, 0x00})
	_, err = r.ReadString()
	assert.Error(t, err)
}
