package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Wire-format errors. Callers distinguish a buffer that ran out from bytes
// that can never be valid; both are recoverable at the message-parse level.
var (
	ErrTruncated = errors.New("truncated field")
	ErrMalformed = errors.New("malformed field")
)

// Type is the 3-bit wire type carried in the low bits of a field tag.
type Type uint8

const (
	TypeVarint  Type = 0
	TypeFixed64 Type = 1
	TypeBytes   Type = 2
	TypeFixed32 Type = 5
)

// Valid reports whether t is one of the four wire types this decoder
// understands. Group wire types (3 and 4) are long deprecated and rejected.
func (t Type) Valid() bool {
	switch t {
	case TypeVarint, TypeFixed64, TypeBytes, TypeFixed32:
		return true
	}
	return false
}

func (t Type) String() string {
	switch t {
	case TypeVarint:
		return "varint"
	case TypeFixed64:
		return "fixed64"
	case TypeBytes:
		return "length-delimited"
	case TypeFixed32:
		return "fixed32"
	}
	return fmt.Sprintf("wire-type(%d)", uint8(t))
}

// maxVarintBytes caps the continuation chain; ten 7-bit groups cover the
// full 64-bit range, anything longer is corrupt input.
const maxVarintBytes = 10

// Varint decodes an unsigned varint starting at off and returns the value
// and the number of bytes consumed.
func Varint(buf []byte, off int) (uint64, int, error) {
	var v uint64
	var shift uint
	for i := 0; i < maxVarintBytes; i++ {
		pos := off + i
		if pos >= len(buf) {
			return 0, 0, fmt.Errorf("varint at %d: %w", off, ErrTruncated)
		}
		b := buf[pos]
		v |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return v, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, fmt.Errorf("varint at %d exceeds %d bytes: %w", off, maxVarintBytes, ErrMalformed)
}

// Zigzag decodes a zigzag-encoded signed varint.
func Zigzag(buf []byte, off int) (int64, int, error) {
	v, n, err := Varint(buf, off)
	if err != nil {
		return 0, 0, err
	}
	return int64(v>>1) ^ -int64(v&1), n, nil
}

// Fixed32 decodes a little-endian 32-bit value.
func Fixed32(buf []byte, off int) (uint32, int, error) {
	if off+4 > len(buf) {
		return 0, 0, fmt.Errorf("fixed32 at %d: %w", off, ErrTruncated)
	}
	return binary.LittleEndian.Uint32(buf[off:]), 4, nil
}

// Fixed64 decodes a little-endian 64-bit value.
func Fixed64(buf []byte, off int) (uint64, int, error) {
	if off+8 > len(buf) {
		return 0, 0, fmt.Errorf("fixed64 at %d: %w", off, ErrTruncated)
	}
	return binary.LittleEndian.Uint64(buf[off:]), 8, nil
}

// Float32 reinterprets 4 little-endian bytes as an IEEE-754 single.
// NaN and Inf pass through untouched.
func Float32(buf []byte, off int) (float32, int, error) {
	v, n, err := Fixed32(buf, off)
	if err != nil {
		return 0, 0, err
	}
	return math.Float32frombits(v), n, nil
}

// Float64 reinterprets 8 little-endian bytes as an IEEE-754 double.
func Float64(buf []byte, off int) (float64, int, error) {
	v, n, err := Fixed64(buf, off)
	if err != nil {
		return 0, 0, err
	}
	return math.Float64frombits(v), n, nil
}

// Tag decodes a field tag and splits it into field number and wire type.
func Tag(buf []byte, off int) (int, Type, int, error) {
	v, n, err := Varint(buf, off)
	if err != nil {
		return 0, 0, 0, err
	}
	wt := Type(v & 0x7)
	if !wt.Valid() {
		return 0, 0, 0, fmt.Errorf("tag at %d has wire type %d: %w", off, uint8(wt), ErrMalformed)
	}
	num := int(v >> 3)
	if num < 1 {
		return 0, 0, 0, fmt.Errorf("tag at %d has field number %d: %w", off, num, ErrMalformed)
	}
	return num, wt, n, nil
}

// LengthDelimited decodes a varint length prefix and returns the spanned
// bytes. The returned slice borrows from buf; it is only valid while buf is.
func LengthDelimited(buf []byte, off int) ([]byte, int, error) {
	length, n, err := Varint(buf, off)
	if err != nil {
		return nil, 0, err
	}
	start := off + n
	if length > uint64(len(buf)) || start+int(length) > len(buf) {
		return nil, 0, fmt.Errorf("length-delimited span of %d at %d: %w", length, off, ErrTruncated)
	}
	return buf[start : start+int(length)], n + int(length), nil
}

// Skip returns the number of bytes a value of the given wire type occupies
// at off, without materializing it.
func Skip(buf []byte, off int, wt Type) (int, error) {
	switch wt {
	case TypeVarint:
		_, n, err := Varint(buf, off)
		return n, err
	case TypeFixed64:
		if off+8 > len(buf) {
			return 0, fmt.Errorf("skip fixed64 at %d: %w", off, ErrTruncated)
		}
		return 8, nil
	case TypeFixed32:
		if off+4 > len(buf) {
			return 0, fmt.Errorf("skip fixed32 at %d: %w", off, ErrTruncated)
		}
		return 4, nil
	case TypeBytes:
		_, n, err := LengthDelimited(buf, off)
		return n, err
	}
	return 0, fmt.Errorf("skip wire type %d at %d: %w", uint8(wt), off, ErrMalformed)
}
