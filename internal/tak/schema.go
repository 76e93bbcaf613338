package tak

import "github.com/tacsight/takwire/internal/schema"

// Field numbers below follow the TAK protocol version 1 message definitions
// and are fixed decoding policy, not configuration.

var contactMsg = schema.Message{
	Name: "Contact",
	Fields: []schema.Field{
		{Num: 1, Label: "Endpoint", Kind: schema.String},
		{Num: 2, Label: "Callsign", Kind: schema.String},
	},
}

var groupMsg = schema.Message{
	Name: "Group",
	Fields: []schema.Field{
		{Num: 1, Label: "Name", Kind: schema.String},
		{Num: 2, Label: "Role", Kind: schema.String},
	},
}

var precisionLocationMsg = schema.Message{
	Name: "PrecisionLocation",
	Fields: []schema.Field{
		{Num: 1, Label: "Geopoint Source", Kind: schema.String},
		{Num: 2, Label: "Altitude Source", Kind: schema.String},
	},
}

var statusMsg = schema.Message{
	Name: "Status",
	Fields: []schema.Field{
		{Num: 1, Label: "Battery", Kind: schema.Uint},
	},
}

var takvMsg = schema.Message{
	Name: "Takv",
	Fields: []schema.Field{
		{Num: 1, Label: "Device", Kind: schema.String},
		{Num: 2, Label: "Platform", Kind: schema.String},
		{Num: 3, Label: "OS", Kind: schema.String},
		{Num: 4, Label: "Version", Kind: schema.String},
	},
}

var trackMsg = schema.Message{
	Name: "Track",
	Fields: []schema.Field{
		{Num: 1, Label: "Speed", Kind: schema.Double},
		{Num: 2, Label: "Course", Kind: schema.Double},
	},
}

var detailMsg = schema.Message{
	Name: "Detail",
	Fields: []schema.Field{
		{Num: 1, Label: "XML Detail", Kind: schema.String},
		{Num: 2, Label: "Contact", Kind: schema.Embedded, Msg: &contactMsg},
		{Num: 3, Label: "Group", Kind: schema.Embedded, Msg: &groupMsg},
		{Num: 4, Label: "Precision Location", Kind: schema.Embedded, Msg: &precisionLocationMsg},
		{Num: 5, Label: "Status", Kind: schema.Embedded, Msg: &statusMsg},
		{Num: 6, Label: "Takv", Kind: schema.Embedded, Msg: &takvMsg},
		{Num: 7, Label: "Track", Kind: schema.Embedded, Msg: &trackMsg},
	},
}

var cotEventMsg = schema.Message{
	Name: "CotEvent",
	Fields: []schema.Field{
		{Num: 1, Label: "Type", Kind: schema.String},
		{Num: 2, Label: "Access", Kind: schema.String},
		{Num: 3, Label: "QoS", Kind: schema.String},
		{Num: 4, Label: "Opex", Kind: schema.String},
		{Num: 5, Label: "UID", Kind: schema.String},
		{Num: 6, Label: "Send Time", Kind: schema.Millis},
		{Num: 7, Label: "Start Time", Kind: schema.Millis},
		{Num: 8, Label: "Stale Time", Kind: schema.Millis},
		{Num: 9, Label: "How", Kind: schema.String},
		{Num: 10, Label: "Latitude", Kind: schema.Double},
		{Num: 11, Label: "Longitude", Kind: schema.Double},
		{Num: 12, Label: "HAE", Kind: schema.Double},
		{Num: 13, Label: "CE", Kind: schema.Double},
		{Num: 14, Label: "LE", Kind: schema.Double},
		{Num: 15, Label: "Detail", Kind: schema.Embedded, Msg: &detailMsg},
	},
}

var takControlMsg = schema.Message{
	Name: "TakControl",
	Fields: []schema.Field{
		{Num: 1, Label: "Min Proto Version", Kind: schema.Uint},
		{Num: 2, Label: "Max Proto Version", Kind: schema.Uint},
		{Num: 3, Label: "Contact UID", Kind: schema.String},
	},
}

// TakMessage field numbers in the envelope payload.
const (
	fieldTakControl = 1
	fieldCotEvent   = 2
)
