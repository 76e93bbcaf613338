package omni

import "github.com/tacsight/takwire/internal/schema"

// Sub-event field numbers in the BaseEvent oneof, with display names.
// These come from the OMNI event-type registry and are decoding policy.
var eventTypeNames = map[int]string{
	11: "Other",
	12: "Track",
	13: "Player",
	14: "Sensor",
	15: "Shape",
	16: "Chat",
	17: "MissionAssignment",
	20: "Weather",
	22: "AirfieldStatus",
	23: "PersonnelRecovery",
	25: "EntityManagement",
	26: "NetworkManagement",
	29: "NavigationVector",
	36: "Image",
	37: "Alert",
	42: "FlightPath",
}

var positionMsg = schema.Message{
	Name: "Position",
	Fields: []schema.Field{
		{Num: 1, Label: "Latitude", Kind: schema.Double},
		{Num: 2, Label: "Longitude", Kind: schema.Double},
		{Num: 3, Label: "Altitude", Kind: schema.Double},
	},
}

var commParamsMsg = schema.Message{
	Name: "CommunicationParameters",
	Fields: []schema.Field{
		{Num: 1, Label: "Callsign", Kind: schema.String},
		{Num: 2, Label: "Network", Kind: schema.String},
	},
}

var waypointMsg = schema.Message{
	Name: "Waypoint",
	Fields: []schema.Field{
		{Num: 1, Label: "Position", Kind: schema.Embedded, Msg: &positionMsg},
		{Num: 2, Label: "Name", Kind: schema.String},
	},
}

// eventSchemas maps each oneof field number to the sub-event's message
// table. Each entry is a small but distinct decoding policy.
var eventSchemas = map[int]*schema.Message{
	11: {Name: "Other", Fields: []schema.Field{
		{Num: 1, Label: "Description", Kind: schema.String},
	}},
	12: {Name: "Track", Fields: []schema.Field{
		{Num: 1, Label: "Position", Kind: schema.Embedded, Msg: &positionMsg},
		{Num: 2, Label: "Speed", Kind: schema.Double},
		{Num: 3, Label: "Course", Kind: schema.Double},
		{Num: 4, Label: "Track ID", Kind: schema.String},
	}},
	13: {Name: "Player", Fields: []schema.Field{
		{Num: 1, Label: "Communication Parameters", Kind: schema.Embedded, Msg: &commParamsMsg},
		{Num: 2, Label: "Position", Kind: schema.Embedded, Msg: &positionMsg},
		{Num: 3, Label: "Status", Kind: schema.Enum, Names: map[uint64]string{
			0: "Unknown", 1: "Active", 2: "Inactive", 3: "Casualty",
		}},
	}},
	14: {Name: "Sensor", Fields: []schema.Field{
		{Num: 1, Label: "Sensor Type", Kind: schema.String},
		{Num: 2, Label: "Position", Kind: schema.Embedded, Msg: &positionMsg},
		{Num: 3, Label: "Range", Kind: schema.Double},
	}},
	15: {Name: "Shape", Fields: []schema.Field{
		{Num: 1, Label: "Shape Type", Kind: schema.Enum, Names: map[uint64]string{
			0: "Point", 1: "Polyline", 2: "Polygon", 3: "Circle",
		}},
		{Num: 2, Label: "Point", Kind: schema.Embedded, Msg: &positionMsg},
		{Num: 3, Label: "Label", Kind: schema.String},
	}},
	16: {Name: "Chat", Fields: []schema.Field{
		{Num: 1, Label: "Sender", Kind: schema.String},
		{Num: 2, Label: "Message", Kind: schema.String},
		{Num: 3, Label: "Room", Kind: schema.String},
	}},
	17: {Name: "MissionAssignment", Fields: []schema.Field{
		{Num: 1, Label: "Mission ID", Kind: schema.String},
		{Num: 2, Label: "Assignee", Kind: schema.String},
		{Num: 3, Label: "Description", Kind: schema.String},
	}},
	20: {Name: "Weather", Fields: []schema.Field{
		{Num: 1, Label: "Temperature", Kind: schema.Double},
		{Num: 2, Label: "Wind Speed", Kind: schema.Double},
		{Num: 3, Label: "Wind Direction", Kind: schema.Double},
		{Num: 4, Label: "Conditions", Kind: schema.String},
	}},
	22: {Name: "AirfieldStatus", Fields: []schema.Field{
		{Num: 1, Label: "Airfield ID", Kind: schema.String},
		{Num: 2, Label: "Runway Status", Kind: schema.Enum, Names: map[uint64]string{
			0: "Unknown", 1: "Open", 2: "Closed", 3: "Limited",
		}},
	}},
	23: {Name: "PersonnelRecovery", Fields: []schema.Field{
		{Num: 1, Label: "Incident ID", Kind: schema.String},
		{Num: 2, Label: "Position", Kind: schema.Embedded, Msg: &positionMsg},
		{Num: 3, Label: "Phase", Kind: schema.Enum, Names: map[uint64]string{
			0: "Unknown", 1: "Report", 2: "Locate", 3: "Support", 4: "Recover",
		}},
	}},
	25: {Name: "EntityManagement", Fields: []schema.Field{
		{Num: 1, Label: "Action", Kind: schema.Enum, Names: map[uint64]string{
			0: "Unknown", 1: "Create", 2: "Update", 3: "Delete",
		}},
		{Num: 2, Label: "Target Entity ID", Kind: schema.Uint},
	}},
	26: {Name: "NetworkManagement", Fields: []schema.Field{
		{Num: 1, Label: "Node ID", Kind: schema.String},
		{Num: 2, Label: "Link Quality", Kind: schema.Uint},
	}},
	29: {Name: "NavigationVector", Fields: []schema.Field{
		{Num: 1, Label: "Bearing", Kind: schema.Double},
		{Num: 2, Label: "Distance", Kind: schema.Double},
		{Num: 3, Label: "Destination", Kind: schema.Embedded, Msg: &positionMsg},
	}},
	36: {Name: "Image", Fields: []schema.Field{
		{Num: 1, Label: "Filename", Kind: schema.String},
		{Num: 2, Label: "Format", Kind: schema.String},
		{Num: 3, Label: "Data", Kind: schema.Bytes},
	}},
	37: {Name: "Alert", Fields: []schema.Field{
		{Num: 1, Label: "Alert Type", Kind: schema.String},
		{Num: 2, Label: "Severity", Kind: schema.Enum, Names: map[uint64]string{
			0: "Unknown", 1: "Info", 2: "Warning", 3: "Critical",
		}},
		{Num: 3, Label: "Message", Kind: schema.String},
	}},
	42: {Name: "FlightPath", Fields: []schema.Field{
		{Num: 1, Label: "Path ID", Kind: schema.String},
		{Num: 2, Label: "Waypoint", Kind: schema.Embedded, Msg: &waypointMsg},
	}},
}
