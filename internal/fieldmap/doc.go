// Package fieldmap walks a raw protobuf byte range without schema knowledge
// and recovers a field number -> wire type -> values table. Parsing is
// best-effort: a malformed or truncated field stops the walk and whatever
// was decoded up to that point is returned, which is the expected outcome
// for partial captures. Typed accessors on the table resolve the wire-level
// ambiguities (strings, exact uint64 identifiers, doubles carried either as
// fixed64 or inside length-delimited wrappers).
package fieldmap
