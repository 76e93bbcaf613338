package tak

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tacsight/takwire/internal/fieldmap"
	"github.com/tacsight/takwire/internal/node"
	"github.com/tacsight/takwire/internal/wire"
)

// MagicByte opens every binary TAK frame.
const MagicByte = 0xBF

// ErrLengthMismatch reports a stream frame whose declared payload length
// disagrees with the bytes actually present. Unlike the best-effort payload
// parser this is a hard integrity failure: the frame is rejected whole.
var ErrLengthMismatch = errors.New("stream frame length mismatch")

// Variant is the envelope shape selected for a payload.
type Variant int

const (
	Unrecognized Variant = iota
	PlainText            // CoT XML document
	StreamFramed         // 0xBF | varint length | TakMessage
	MeshFramed           // 0xBF | varint version | 0xBF | TakMessage
)

func (v Variant) String() string {
	switch v {
	case PlainText:
		return "xml"
	case StreamFramed:
		return "stream"
	case MeshFramed:
		return "mesh"
	}
	return "unrecognized"
}

var xmlPrefixes = [][]byte{[]byte("<?xml"), []byte("<event")}

// Result is a decoded TAK payload.
type Result struct {
	Variant  Variant
	Version  uint64
	Consumed int
	Root     *node.Node
	Summary  string
}

// Classify inspects the first bytes of buf and picks the envelope variant
// without decoding the payload. Highest-priority match wins: XML text, then
// magic-byte framing; anything else is not TAK.
func Classify(buf []byte) Variant {
	for _, p := range xmlPrefixes {
		if bytes.HasPrefix(buf, p) {
			return PlainText
		}
	}
	if len(buf) < 2 || buf[0] != MagicByte {
		return Unrecognized
	}
	_, n, err := wire.Varint(buf, 1)
	if err != nil {
		return Unrecognized
	}
	if 1+n < len(buf) && buf[1+n] == MagicByte {
		return MeshFramed
	}
	return StreamFramed
}

// Decode classifies buf and decodes the embedded TakMessage. It returns a
// nil Result when the payload is not TAK (the caller tries the next
// protocol), and ErrLengthMismatch with zero consumed bytes for a stream
// frame that fails the declared-length check.
func Decode(buf []byte) (*Result, error) {
	switch Classify(buf) {
	case PlainText:
		return decodeXML(buf), nil
	case StreamFramed:
		return decodeStream(buf)
	case MeshFramed:
		return decodeMesh(buf), nil
	}
	return nil, nil
}

// decodeXML hands the document off as an opaque text node; attribute
// extraction belongs to the XML scraper, not the binary decoder.
func decodeXML(buf []byte) *Result {
	root := node.New("CoT XML")
	root.Leaff("Document", "%d bytes", len(buf))
	return &Result{
		Variant:  PlainText,
		Consumed: len(buf),
		Root:     root,
		Summary:  "CoT XML document",
	}
}

func decodeStream(buf []byte) (*Result, error) {
	declared, n, err := wire.Varint(buf, 1)
	if err != nil {
		return nil, fmt.Errorf("stream frame: %w", err)
	}
	payload := buf[1+n:]
	if declared != uint64(len(payload)) {
		return nil, fmt.Errorf("declared %d bytes, %d remain: %w",
			declared, len(payload), ErrLengthMismatch)
	}

	root := node.New("TAK Stream")
	root.Leaf("Version", "1")
	root.Leaff("Payload Length", "%d", declared)
	summary := buildTakMessage(payload, root)

	return &Result{
		Variant:  StreamFramed,
		Version:  1,
		Consumed: len(buf),
		Root:     root,
		Summary:  summary,
	}, nil
}

func decodeMesh(buf []byte) *Result {
	version, n, _ := wire.Varint(buf, 1)
	payload := buf[1+n+1:] // rest of buffer, no declared length

	root := node.New("TAK Mesh")
	root.Leaff("Version", "%d", version)
	summary := buildTakMessage(payload, root)

	return &Result{
		Variant:  MeshFramed,
		Version:  version,
		Consumed: len(buf),
		Root:     root,
		Summary:  summary,
	}
}

// buildTakMessage decodes the TakMessage wrapper and returns a summary line
// for the whole payload: the contact callsign when present, else the event
// UID, else the event type.
func buildTakMessage(payload []byte, root *node.Node) string {
	table := fieldmap.Parse(payload, 0, len(payload))
	summary := "TakMessage"

	if raw := table.Bytes(fieldTakControl); raw != nil {
		ctl := root.Add("TakControl")
		t := takControlMsg.Build(raw, ctl)
		if uid := t.String(3, ""); uid != "" {
			summary = uid
		}
	}
	if raw := table.Bytes(fieldCotEvent); raw != nil {
		ev := root.Add("CotEvent")
		t := cotEventMsg.Build(raw, ev)
		summary = cotSummary(ev, t, summary)
	}
	return summary
}

func cotSummary(ev *node.Node, t fieldmap.Table, fallback string) string {
	if cs := ev.Find("Callsign"); cs != nil && cs.Value != "" {
		return cs.Value
	}
	if uid := t.String(5, ""); uid != "" {
		return uid
	}
	if typ := t.String(1, ""); typ != "" {
		return typ
	}
	return fallback
}
