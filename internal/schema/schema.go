package schema

import (
	"fmt"
	"strconv"
	"time"

	"github.com/tacsight/takwire/internal/fieldmap"
	"github.com/tacsight/takwire/internal/node"
	"github.com/tacsight/takwire/internal/wire"
)

// MaxDepth bounds message nesting. The wire format places no limit on how
// deeply embedded messages can nest, so adversarial input could otherwise
// drive unbounded recursion.
const MaxDepth = 32

// Kind selects how a field's wire value is interpreted.
type Kind int

const (
	String Kind = iota // length-delimited UTF-8 text
	Uint               // exact unsigned integer, full 64-bit
	Double             // fixed64 bits, or length-delimited raw/wrapper
	Millis             // unsigned milliseconds since epoch, rendered as UTC
	Enum               // varint mapped through Names, literal number if unknown
	Bytes              // opaque payload, rendered as a byte count
	Embedded           // nested message decoded with Msg
)

// Field is one row of a message table.
type Field struct {
	Num   int
	Label string
	Kind  Kind
	Names map[uint64]string // Enum only
	Msg   *Message          // Embedded only
}

// Message describes one known message type.
type Message struct {
	Name   string
	Fields []Field
}

// Build parses raw and attaches the message's known fields to parent in
// table order. Unknown field numbers are ignored; missing fields add
// nothing. The returned table lets callers derive summaries.
func (m *Message) Build(raw []byte, parent *node.Node) fieldmap.Table {
	return m.build(raw, parent, 0)
}

func (m *Message) build(raw []byte, parent *node.Node, depth int) fieldmap.Table {
	table := fieldmap.Parse(raw, 0, len(raw))
	if depth >= MaxDepth {
		return table
	}
	for _, f := range m.Fields {
		entry := table[f.Num]
		if entry == nil {
			continue
		}
		for _, v := range entry.Values {
			addValue(parent, f, entry.Wire, v, depth)
		}
	}
	return table
}

func addValue(parent *node.Node, f Field, wt wire.Type, v fieldmap.Value, depth int) {
	switch f.Kind {
	case String:
		if wt == wire.TypeBytes {
			parent.Leaf(f.Label, string(v.Bytes))
		}
	case Uint:
		parent.Leaf(f.Label, strconv.FormatUint(v.Uint, 10))
	case Double:
		parent.Leaff(f.Label, "%g", fieldmap.DoubleValue(wt, v, 0))
	case Millis:
		ts := time.UnixMilli(int64(v.Uint)).UTC()
		parent.Leaff(f.Label, "%d (%s)", v.Uint, ts.Format(time.RFC3339))
	case Enum:
		if name, ok := f.Names[v.Uint]; ok {
			parent.Leaff(f.Label, "%s (%d)", name, v.Uint)
		} else {
			parent.Leaf(f.Label, strconv.FormatUint(v.Uint, 10))
		}
	case Bytes:
		if wt == wire.TypeBytes {
			parent.Leaff(f.Label, "%d bytes", len(v.Bytes))
		}
	case Embedded:
		if wt != wire.TypeBytes || f.Msg == nil {
			return
		}
		child := parent.Add(f.Label)
		f.Msg.build(v.Bytes, child, depth+1)
	default:
		parent.Leaf(f.Label, fmt.Sprintf("%v", v.Uint))
	}
}
