package fieldmap

import (
	"math"
	"sort"
	"unicode/utf8"

	"github.com/tacsight/takwire/internal/wire"
)

// Value is one decoded field occurrence. For varint, fixed64 and fixed32
// fields Uint carries the exact unsigned value; for length-delimited fields
// Bytes borrows the spanned region of the input buffer.
type Value struct {
	Uint  uint64
	Bytes []byte
}

// Field collects every occurrence of one field number, in arrival order.
// Repeated fields append; the wire type is the one seen on first arrival.
type Field struct {
	Wire   wire.Type
	Values []Value
}

// Table maps field numbers to their decoded occurrences for one message.
// A Table is built by Parse, read by accessors, and discarded; it is never
// mutated after the parse loop returns.
type Table map[int]*Field

// Parse decodes the message occupying buf[off:off+length]. The loop decodes
// one tag and one value per iteration and never reads past the declared
// boundary. On the first failure it stops and returns the fields accumulated
// so far; it does not report an error. The strict integrity checks live in
// the envelope layer, not here.
func Parse(buf []byte, off, length int) Table {
	t, _ := ParseConsumed(buf, off, length)
	return t
}

// ParseConsumed is Parse plus the number of bytes the loop actually walked.
// When the walk stops early on a bad field, the count reflects only the
// cleanly decoded prefix.
func ParseConsumed(buf []byte, off, length int) (Table, int) {
	t := make(Table)
	end := off + length
	if end > len(buf) {
		end = len(buf)
	}

	pos := off
	for pos < end {
		fieldStart := pos

		num, wt, n, err := wire.Tag(buf[:end], pos)
		if err != nil {
			return t, fieldStart - off
		}
		pos += n

		var v Value
		switch wt {
		case wire.TypeVarint:
			u, vn, verr := wire.Varint(buf[:end], pos)
			if verr != nil {
				return t, fieldStart - off
			}
			v, n = Value{Uint: u}, vn
		case wire.TypeFixed64:
			u, vn, verr := wire.Fixed64(buf[:end], pos)
			if verr != nil {
				return t, fieldStart - off
			}
			v, n = Value{Uint: u, Bytes: buf[pos : pos+8]}, vn
		case wire.TypeFixed32:
			u, vn, verr := wire.Fixed32(buf[:end], pos)
			if verr != nil {
				return t, fieldStart - off
			}
			v, n = Value{Uint: uint64(u), Bytes: buf[pos : pos+4]}, vn
		case wire.TypeBytes:
			span, vn, verr := wire.LengthDelimited(buf[:end], pos)
			if verr != nil {
				return t, fieldStart - off
			}
			v, n = Value{Bytes: span}, vn
		}
		if n == 0 {
			return t, fieldStart - off
		}
		pos += n

		f, ok := t[num]
		if !ok {
			f = &Field{Wire: wt}
			t[num] = f
		}
		f.Values = append(f.Values, v)
	}
	return t, pos - off
}

// Has reports whether the field number was seen at least once.
func (t Table) Has(num int) bool {
	return t[num] != nil
}

// First returns the first occurrence of the field, if any.
func (t Table) First(num int) (Value, wire.Type, bool) {
	f := t[num]
	if f == nil || len(f.Values) == 0 {
		return Value{}, 0, false
	}
	return f.Values[0], f.Wire, true
}

// String returns the first occurrence interpreted as text. Non-length-
// delimited values and invalid UTF-8 yield the default.
func (t Table) String(num int, def string) string {
	v, wt, ok := t.First(num)
	if !ok || wt != wire.TypeBytes {
		return def
	}
	if !utf8.Valid(v.Bytes) {
		return def
	}
	return string(v.Bytes)
}

// Bytes returns the first occurrence's raw span, or nil.
func (t Table) Bytes(num int) []byte {
	v, wt, ok := t.First(num)
	if !ok || wt != wire.TypeBytes {
		return nil
	}
	return v.Bytes
}

// Uint64 returns the first occurrence as an exact unsigned integer. The
// value never passes through a float or 32-bit intermediate; timestamps and
// identifiers keep their high-order bits.
func (t Table) Uint64(num int, def uint64) uint64 {
	v, wt, ok := t.First(num)
	if !ok {
		return def
	}
	switch wt {
	case wire.TypeVarint, wire.TypeFixed64, wire.TypeFixed32:
		return v.Uint
	}
	return def
}

// Double returns the first occurrence as a float64, resolving the three
// encodings seen on the wire: a raw fixed64, a length-delimited 8-byte raw
// payload, and a length-delimited single-double wrapper message whose field
// 1 holds the value. A well-formed double decodes identically through any
// of them.
func (t Table) Double(num int, def float64) float64 {
	v, wt, ok := t.First(num)
	if !ok {
		return def
	}
	return DoubleValue(wt, v, def)
}

// DoubleValue applies the double-resolution policy to a single occurrence.
func DoubleValue(wt wire.Type, v Value, def float64) float64 {
	switch wt {
	case wire.TypeFixed64:
		return math.Float64frombits(v.Uint)
	case wire.TypeFixed32:
		return float64(math.Float32frombits(uint32(v.Uint)))
	case wire.TypeBytes:
		if len(v.Bytes) == 8 {
			u, _, err := wire.Fixed64(v.Bytes, 0)
			if err == nil {
				return math.Float64frombits(u)
			}
		}
		// Wrapper message: the double sits in field 1. Only one level of
		// wrapping exists on the wire; deeper chains are not followed.
		inner := Parse(v.Bytes, 0, len(v.Bytes))
		if iv, iwt, ok := inner.First(1); ok {
			switch iwt {
			case wire.TypeFixed64:
				return math.Float64frombits(iv.Uint)
			case wire.TypeBytes:
				if len(iv.Bytes) == 8 {
					u, _, err := wire.Fixed64(iv.Bytes, 0)
					if err == nil {
						return math.Float64frombits(u)
					}
				}
			}
		}
	}
	return def
}

// Numbers returns the field numbers present in the table in ascending
// order. Map iteration order is unspecified in Go; oneof dispatch needs a
// stable order so that the same input always selects the same builder.
func (t Table) Numbers() []int {
	nums := make([]int, 0, len(t))
	for num := range t {
		nums = append(nums, num)
	}
	sort.Ints(nums)
	return nums
}
