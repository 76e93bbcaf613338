package omni

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

// wrapDouble encodes a double the way OMNI sends them: a length-delimited
// payload holding the 8 raw IEEE-754 bytes.
func wrapDouble(v float64) []byte {
	return protowire.AppendFixed64(nil, math.Float64bits(v))
}

func appendBase(entityID uint64, seq uint64) []byte {
	var msg []byte
	msg = protowire.AppendTag(msg, 1, protowire.VarintType)
	msg = protowire.AppendVarint(msg, entityID)
	msg = protowire.AppendTag(msg, 9, protowire.VarintType)
	msg = protowire.AppendVarint(msg, seq)
	return msg
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected bool
	}{
		{name: "entity_id tag", data: []byte{0x08, 0xB9, 0x60}, expected: true},
		{name: "field 2 varint tag", data: []byte{0x10, 0x00}, expected: true},
		{name: "field 4 bytes tag", data: []byte{0x22, 0x02, 0x10, 0x01}, expected: true},
		{name: "xml", data: []byte("<?xml version='1.0'?>"), expected: false},
		{name: "tak magic", data: []byte{0xBF, 0x10, 0x12, 0x0E}, expected: false},
		{name: "empty", data: nil, expected: false},
		{name: "field 7 tag", data: []byte{0x3A, 0x01, 0x00}, expected: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Detect(tt.data))
		})
	}
}

func TestDecodeBaseEnvelope(t *testing.T) {
	origin := protowire.AppendTag(nil, 1, protowire.BytesType)
	origin = protowire.AppendString(origin, "device-12345")
	origin = protowire.AppendTag(origin, 2, protowire.BytesType)
	origin = protowire.AppendString(origin, "TakNet")

	alias := protowire.AppendTag(nil, 1, protowire.BytesType)
	alias = protowire.AppendString(alias, "CoT")
	alias = protowire.AppendTag(alias, 4, protowire.BytesType)
	alias = protowire.AppendString(alias, "device-001")

	msg := appendBase(12345, 10)
	msg = protowire.AppendTag(msg, 2, protowire.BytesType)
	msg = protowire.AppendBytes(msg, origin)
	msg = protowire.AppendTag(msg, 5, protowire.BytesType)
	msg = protowire.AppendBytes(msg, alias)

	res := Decode(msg)
	require.NotNil(t, res)

	assert.Equal(t, uint64(12345), res.EntityID)
	assert.Equal(t, len(msg), res.Consumed)
	assert.Equal(t, "Unknown", res.EventType, "no oneof field present")
	assert.Equal(t, "device-12345", res.Root.Find("Source UID").Value)
	assert.Equal(t, "TakNet", res.Root.Find("Source Network").Value)
	assert.Equal(t, "device-001", res.Root.Find("ID").Value)
	assert.Equal(t, "10", res.Root.Find("Sequence Number").Value)
}

func TestDecodePlayerEvent(t *testing.T) {
	comm := protowire.AppendTag(nil, 1, protowire.BytesType)
	comm = protowire.AppendString(comm, "ALPHA-01")

	pos := protowire.AppendTag(nil, 1, protowire.BytesType)
	pos = protowire.AppendBytes(pos, wrapDouble(38.85))
	pos = protowire.AppendTag(pos, 2, protowire.BytesType)
	pos = protowire.AppendBytes(pos, wrapDouble(-77.05))

	player := protowire.AppendTag(nil, 1, protowire.BytesType)
	player = protowire.AppendBytes(player, comm)
	player = protowire.AppendTag(player, 2, protowire.BytesType)
	player = protowire.AppendBytes(player, pos)
	player = protowire.AppendTag(player, 3, protowire.VarintType)
	player = protowire.AppendVarint(player, 1)

	msg := appendBase(7, 1)
	msg = protowire.AppendTag(msg, 13, protowire.BytesType)
	msg = protowire.AppendBytes(msg, player)

	res := Decode(msg)
	require.NotNil(t, res)

	assert.Equal(t, "Player", res.EventType)
	assert.Equal(t, "ALPHA-01", res.Summary)
	assert.Contains(t, res.Root.Find("Latitude").Value, "38.85")
	assert.Contains(t, res.Root.Find("Longitude").Value, "-77.05")
	assert.Equal(t, "Active (1)", res.Root.Find("Status").Value)
}

func TestDecodeChatEvent(t *testing.T) {
	chat := protowire.AppendTag(nil, 1, protowire.BytesType)
	chat = protowire.AppendString(chat, "User1")
	chat = protowire.AppendTag(chat, 2, protowire.BytesType)
	chat = protowire.AppendString(chat, "Hello, team!")

	msg := appendBase(3, 4)
	msg = protowire.AppendTag(msg, 16, protowire.BytesType)
	msg = protowire.AppendBytes(msg, chat)

	res := Decode(msg)
	require.NotNil(t, res)
	assert.Equal(t, "Chat", res.EventType)
	assert.Equal(t, "chat from User1", res.Summary)
	assert.Equal(t, "Hello, team!", res.Root.Find("Message").Value)
}

func TestDecodeTrackEventWrappedDoubles(t *testing.T) {
	track := protowire.AppendTag(nil, 2, protowire.BytesType)
	track = protowire.AppendBytes(track, wrapDouble(5.5))
	track = protowire.AppendTag(track, 3, protowire.BytesType)
	track = protowire.AppendBytes(track, wrapDouble(180))
	track = protowire.AppendTag(track, 4, protowire.BytesType)
	track = protowire.AppendString(track, "TRK-9")

	msg := appendBase(21, 2)
	msg = protowire.AppendTag(msg, 12, protowire.BytesType)
	msg = protowire.AppendBytes(msg, track)

	res := Decode(msg)
	require.NotNil(t, res)
	assert.Equal(t, "Track", res.EventType)
	assert.Equal(t, "5.5", res.Root.Find("Speed").Value)
	assert.Equal(t, "180", res.Root.Find("Course").Value)
}

func TestDecodeTrackEventFixed64Doubles(t *testing.T) {
	// Same track but with bare fixed64 doubles; the accessor must treat
	// both encodings identically.
	track := protowire.AppendTag(nil, 2, protowire.Fixed64Type)
	track = protowire.AppendFixed64(track, math.Float64bits(5.5))

	msg := appendBase(21, 2)
	msg = protowire.AppendTag(msg, 12, protowire.BytesType)
	msg = protowire.AppendBytes(msg, track)

	res := Decode(msg)
	require.NotNil(t, res)
	assert.Equal(t, "5.5", res.Root.Find("Speed").Value)
}

func TestOneofLowestFieldNumberWins(t *testing.T) {
	// Malformed input carrying both Chat (16) and Track (12): dispatch
	// must be deterministic and pick the lower field number.
	chat := protowire.AppendTag(nil, 1, protowire.BytesType)
	chat = protowire.AppendString(chat, "User1")
	track := protowire.AppendTag(nil, 4, protowire.BytesType)
	track = protowire.AppendString(track, "TRK-1")

	msg := appendBase(1, 1)
	msg = protowire.AppendTag(msg, 16, protowire.BytesType)
	msg = protowire.AppendBytes(msg, chat)
	msg = protowire.AppendTag(msg, 12, protowire.BytesType)
	msg = protowire.AppendBytes(msg, track)

	for i := 0; i < 16; i++ {
		res := Decode(msg)
		require.NotNil(t, res)
		assert.Equal(t, "Track", res.EventType)
	}
}

func TestDecodeUnknownEnumValue(t *testing.T) {
	player := protowire.AppendTag(nil, 3, protowire.VarintType)
	player = protowire.AppendVarint(player, 99)

	msg := appendBase(1, 1)
	msg = protowire.AppendTag(msg, 13, protowire.BytesType)
	msg = protowire.AppendBytes(msg, player)

	res := Decode(msg)
	require.NotNil(t, res)
	assert.Equal(t, "99", res.Root.Find("Status").Value, "unknown enum renders as its number")
}

func TestDecodeNotOMNI(t *testing.T) {
	assert.Nil(t, Decode([]byte{0xBF, 0x02, 0x08, 0x01}))
	assert.Nil(t, Decode(nil))
}
