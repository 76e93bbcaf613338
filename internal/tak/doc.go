// Package tak decodes the TAK situational-awareness envelope and its
// protobuf payload. The envelope comes in three shapes on the wire: a
// plain-text CoT XML document, the stream protocol (magic byte, varint
// length, TakMessage), and the mesh protocol (magic byte, varint version,
// second magic byte, TakMessage to end of buffer). Payload decoding is
// schema-by-convention over the fixed TakMessage / TakControl / CotEvent /
// Detail field numbers; no descriptors are loaded.
package tak
