package wire

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestVarint(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		off      int
		expected uint64
		consumed int
	}{
		{name: "zero", data: []byte{0x00}, expected: 0, consumed: 1},
		{name: "one", data: []byte{0x01}, expected: 1, consumed: 1},
		{name: "max single byte", data: []byte{0x7F}, expected: 127, consumed: 1},
		{name: "two bytes", data: []byte{0x80, 0x01}, expected: 128, consumed: 2},
		{name: "255", data: []byte{0xFF, 0x01}, expected: 255, consumed: 2},
		{name: "300", data: []byte{0xAC, 0x02}, expected: 300, consumed: 2},
		{name: "three bytes", data: []byte{0x80, 0x80, 0x01}, expected: 16384, consumed: 3},
		{name: "at offset", data: []byte{0xFF, 0xFF, 0xAC, 0x02}, off: 2, expected: 300, consumed: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, n, err := Varint(tt.data, tt.off)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
			assert.Equal(t, tt.consumed, n)
		})
	}
}

// TestVarintRoundTrip checks the hand-rolled decoder against protowire's
// reference encoder across the interesting boundary values.
func TestVarintRoundTrip(t *testing.T) {
	values := []uint64{
		0, 1, 127, 128, 16383, 16384, 1<<21 - 1, 1 << 21,
		1<<32 - 1, 1 << 32, 1608148774913, 1<<63 - 1, 1 << 63, math.MaxUint64,
	}
	for _, want := range values {
		enc := protowire.AppendVarint(nil, want)
		got, n, err := Varint(enc, 0)
		require.NoError(t, err, "value %d", want)
		assert.Equal(t, want, got)
		assert.Equal(t, len(enc), n, "value %d", want)
	}
}

func TestVarintTruncated(t *testing.T) {
	for _, want := range []uint64{128, 1 << 21, math.MaxUint64} {
		enc := protowire.AppendVarint(nil, want)
		for cut := 0; cut < len(enc); cut++ {
			_, n, err := Varint(enc[:cut], 0)
			require.ErrorIs(t, err, ErrTruncated, "value %d cut to %d bytes", want, cut)
			assert.Zero(t, n)
		}
	}

	// Offset past the end behaves like an empty buffer.
	_, _, err := Varint([]byte{0x01}, 5)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestVarintOverlong(t *testing.T) {
	// Eleven continuation bytes never terminate within the 10-byte cap.
	data := make([]byte, 11)
	for i := range data {
		data[i] = 0x80
	}
	_, _, err := Varint(data, 0)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestZigzag(t *testing.T) {
	tests := []struct {
		data     []byte
		expected int64
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x01}, -1},
		{[]byte{0x02}, 1},
		{[]byte{0x03}, -2},
		{[]byte{0x04}, 2},
	}
	for _, tt := range tests {
		v, n, err := Zigzag(tt.data, 0)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, v)
		assert.Equal(t, 1, n)
	}
}

func TestFixedWidth(t *testing.T) {
	buf := protowire.AppendFixed64(nil, math.Float64bits(38.85606343062312))

	f, n, err := Float64(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.InDelta(t, 38.85606343062312, f, 1e-12)

	u, n, err := Fixed64(protowire.AppendFixed64(nil, 1608148774913), 0)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, uint64(1608148774913), u)

	u32, n, err := Fixed32(protowire.AppendFixed32(nil, 12345678), 0)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, uint32(12345678), u32)

	f32, _, err := Float32(protowire.AppendFixed32(nil, math.Float32bits(3.14159)), 0)
	require.NoError(t, err)
	assert.InDelta(t, 3.14159, f32, 1e-5)

	_, _, err = Fixed64(buf[:7], 0)
	assert.ErrorIs(t, err, ErrTruncated)
	_, _, err = Fixed32(buf[:3], 0)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestFloatSpecialValues(t *testing.T) {
	// NaN and Inf pass through with no validation.
	nan, _, err := Float64(protowire.AppendFixed64(nil, math.Float64bits(math.NaN())), 0)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(nan))

	inf, _, err := Float64(protowire.AppendFixed64(nil, math.Float64bits(math.Inf(-1))), 0)
	require.NoError(t, err)
	assert.True(t, math.IsInf(inf, -1))
}

func TestTag(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		num      int
		wt       Type
		consumed int
	}{
		{name: "field 1 varint", data: []byte{0x08}, num: 1, wt: TypeVarint, consumed: 1},
		{name: "field 10 fixed64", data: []byte{0x51}, num: 10, wt: TypeFixed64, consumed: 1},
		{name: "field 2 bytes", data: []byte{0x12}, num: 2, wt: TypeBytes, consumed: 1},
		{name: "field 1 fixed32", data: []byte{0x0D}, num: 1, wt: TypeFixed32, consumed: 1},
		{name: "field 100 bytes", data: []byte{0xA2, 0x06}, num: 100, wt: TypeBytes, consumed: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			num, wt, n, err := Tag(tt.data, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.num, num)
			assert.Equal(t, tt.wt, wt)
			assert.Equal(t, tt.consumed, n)
		})
	}
}

func TestTagInvalid(t *testing.T) {
	// Wire types 3, 4, 6, 7 are outside the accepted set.
	for _, b := range []byte{0x0B, 0x0C, 0x0E, 0x0F} {
		_, _, _, err := Tag([]byte{b}, 0)
		assert.ErrorIs(t, err, ErrMalformed, "tag byte 0x%02X", b)
	}

	// Field number zero is not assignable.
	_, _, _, err := Tag([]byte{0x00}, 0)
	assert.ErrorIs(t, err, ErrMalformed)

	_, _, _, err = Tag(nil, 0)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestLengthDelimited(t *testing.T) {
	payload := []byte("a-f-G")
	data := append([]byte{byte(len(payload))}, payload...)

	span, n, err := LengthDelimited(data, 0)
	require.NoError(t, err)
	assert.Equal(t, payload, span)
	assert.Equal(t, len(data), n)

	// Multi-byte length prefix.
	long := append([]byte("test-uid-"), make([]byte, 200)...)
	data = protowire.AppendBytes(nil, long)
	span, n, err = LengthDelimited(data, 0)
	require.NoError(t, err)
	assert.Equal(t, long, span)
	assert.Equal(t, len(data), n)
}

func TestLengthDelimitedTruncated(t *testing.T) {
	// Declares 10 bytes, only 5 follow.
	_, n, err := LengthDelimited([]byte{10, 1, 2, 3, 4, 5}, 0)
	assert.ErrorIs(t, err, ErrTruncated)
	assert.Zero(t, n)

	// A length near MaxUint64 must not wrap the bounds arithmetic.
	huge := protowire.AppendVarint(nil, math.MaxUint64-1)
	_, _, err = LengthDelimited(huge, 0)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestSkip(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		wt       Type
		consumed int
	}{
		{name: "varint", data: []byte{0xAC, 0x02}, wt: TypeVarint, consumed: 2},
		{name: "fixed64", data: make([]byte, 8), wt: TypeFixed64, consumed: 8},
		{name: "fixed32", data: make([]byte, 4), wt: TypeFixed32, consumed: 4},
		{name: "bytes", data: []byte{0x03, 1, 2, 3}, wt: TypeBytes, consumed: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Skip(tt.data, 0, tt.wt)
			require.NoError(t, err)
			assert.Equal(t, tt.consumed, n)
		})
	}

	_, err := Skip(make([]byte, 3), 0, TypeFixed32)
	assert.ErrorIs(t, err, ErrTruncated)
}
