package omni

import (
	"strconv"

	"github.com/tacsight/takwire/internal/fieldmap"
	"github.com/tacsight/takwire/internal/node"
	"github.com/tacsight/takwire/internal/schema"
)

// firstTagBytes is the allow-list of opening bytes consistent with a
// BaseEvent: fields 1 through 6 at varint or length-delimited wire type.
// OMNI has no magic byte, so this heuristic is all the detection there is.
var firstTagBytes = map[byte]bool{
	0x08: true, 0x0A: true, 0x10: true, 0x12: true,
	0x1A: true, 0x22: true, 0x2A: true, 0x32: true,
}

// BaseEvent envelope field numbers (everything outside the oneof).
var originMsg = schema.Message{
	Name: "EventOrigin",
	Fields: []schema.Field{
		{Num: 1, Label: "Source UID", Kind: schema.String},
		{Num: 2, Label: "Source Network", Kind: schema.String},
	},
}

var timeOfValidityMsg = schema.Message{
	Name: "TimeOfValidity",
	Fields: []schema.Field{
		{Num: 2, Label: "Updated", Kind: schema.Millis},
		{Num: 3, Label: "Timeout", Kind: schema.Uint},
	},
}

var aliasMsg = schema.Message{
	Name: "Alias",
	Fields: []schema.Field{
		{Num: 1, Label: "Domain", Kind: schema.String},
		{Num: 2, Label: "Field", Kind: schema.String},
		{Num: 3, Label: "Network", Kind: schema.String},
		{Num: 4, Label: "ID", Kind: schema.String},
	},
}

var baseEventMsg = schema.Message{
	Name: "BaseEvent",
	Fields: []schema.Field{
		{Num: 1, Label: "Entity ID", Kind: schema.Uint},
		{Num: 2, Label: "Origin", Kind: schema.Embedded, Msg: &originMsg},
		{Num: 4, Label: "Time Of Validity", Kind: schema.Embedded, Msg: &timeOfValidityMsg},
		{Num: 5, Label: "Alias", Kind: schema.Embedded, Msg: &aliasMsg},
		{Num: 9, Label: "Sequence Number", Kind: schema.Uint},
	},
}

// Result is a decoded OMNI BaseEvent.
type Result struct {
	EventType string
	EntityID  uint64
	Consumed  int
	Root      *node.Node
	Summary   string
}

// Detect reports whether buf plausibly opens an OMNI BaseEvent.
func Detect(buf []byte) bool {
	return len(buf) > 0 && firstTagBytes[buf[0]]
}

// Decode parses buf as a BaseEvent. It returns nil when the heuristic does
// not match; decoding itself is best-effort and always yields a result for
// a detected payload, however damaged.
func Decode(buf []byte) *Result {
	if !Detect(buf) {
		return nil
	}

	root := node.New("OMNI BaseEvent")
	table := baseEventMsg.Build(buf, root)

	res := &Result{
		EventType: "Unknown",
		EntityID:  table.Uint64(1, 0),
		Consumed:  len(buf),
		Root:      root,
		Summary:   "OMNI event",
	}
	buildSubEvent(table, root, res)
	return res
}

// buildSubEvent dispatches the oneof. Well-formed input has exactly one
// sub-event field; if damaged input carries several, the lowest field
// number present wins, so the same bytes always pick the same builder.
func buildSubEvent(table fieldmap.Table, root *node.Node, res *Result) {
	for _, num := range table.Numbers() {
		msg := eventSchemas[num]
		if msg == nil {
			continue
		}
		raw := table.Bytes(num)
		if raw == nil {
			continue
		}

		res.EventType = eventTypeNames[num]
		ev := root.Add(res.EventType)
		sub := msg.Build(raw, ev)
		res.Summary = subSummary(num, ev, sub, res)
		return
	}
	res.Summary = baseSummary(res)
}

func subSummary(num int, ev *node.Node, sub fieldmap.Table, res *Result) string {
	switch num {
	case 13: // Player: callsign identifies the event
		if cs := ev.Find("Callsign"); cs != nil && cs.Value != "" {
			return cs.Value
		}
	case 16: // Chat: sender
		if s := sub.String(1, ""); s != "" {
			return "chat from " + s
		}
	case 37: // Alert: type
		if a := sub.String(1, ""); a != "" {
			return "alert " + a
		}
	default:
		if id := sub.String(1, ""); id != "" {
			return res.EventType + " " + id
		}
	}
	return baseSummary(res)
}

func baseSummary(res *Result) string {
	if res.EntityID != 0 {
		return res.EventType + " entity " + strconv.FormatUint(res.EntityID, 10)
	}
	return res.EventType + " event"
}
