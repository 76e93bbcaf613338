// Package omni decodes the OMNI protobuf event protocol, the companion to
// the TAK envelope. OMNI payloads carry no framing: detection is a
// heuristic over the first tag byte, and the payload is a BaseEvent whose
// oneof field number selects one of the known sub-event types. Doubles in
// OMNI sub-events travel as length-delimited wrapper payloads rather than
// bare fixed64 values.
package omni
