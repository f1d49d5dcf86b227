package bx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestLittleEndianReadWrite verifies that PutU16/U32/U64 and U16/U32/U64
// correctly round-trip values using little-endian encoding.
func TestLittleEndianReadWrite(t *testing.T) {
	{
		b := make([]byte, 2)
		var v uint16 = 0x1234

		PutU16(b, v)
		assert.Equal(t, []byte{0x34, 0x12}, b)
		assert.Equal(t, v, U16(b))
	}
	{
		b := make([]byte, 4)
		var v uint32 = 0x01020304

		PutU32(b, v)
		assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, b)
		assert.Equal(t, v, U32(b))
	}
	{
		b := make([]byte, 8)
		var v uint64 = 0x0102030405060708

		PutU64(b, v)
		assert.Equal(t, []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}, b)
		assert.Equal(t, v, U64(b))
	}
}

// TestLittleEndianAt verifies the *At variants that work with an offset
// into a larger buffer (the pattern used when writing fixed page headers).
func TestLittleEndianAt(t *testing.T) {
	buf := make([]byte, 16)

	PutU16At(buf, 0, 0x0A0B)
	PutU32At(buf, 2, 0x01020304)
	PutU64At(buf, 6, 0x0102030405060708)
	PutI32At(buf, 2, -7)

	assert.Equal(t, uint16(0x0A0B), U16At(buf, 0))
	assert.Equal(t, int32(-7), I32At(buf, 2))
}

// TestBigEndianReadWrite verifies BE helpers, primarily intended for
// sortable keys (range scans over encoded index keys).
func TestBigEndianReadWrite(t *testing.T) {
	{
		b := make([]byte, 2)
		var v uint16 = 0x1234

		PutU16BE(b, v)
		assert.Equal(t, []byte{0x12, 0x34}, b)
		assert.Equal(t, v, U16BE(b))
	}
	{
		b := make([]byte, 4)
		var v uint32 = 0x01020304

		PutU32BE(b, v)
		assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, b)
		assert.Equal(t, v, U32BE(b))
	}
}

// TestIntAliases checks the I32/I64 wrappers around U32/U64 and the
// PutI32/PutI64 writers.
func TestIntAliases(t *testing.T) {
	{
		b := make([]byte, 4)
		var v int32 = -123456
		PutI32(b, v)
		assert.Equal(t, v, I32(b))
	}
	{
		b := make([]byte, 8)
		var v int64 = -1234567890
		PutI64(b, v)
		assert.Equal(t, v, I64(b))
	}
}
