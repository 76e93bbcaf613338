// Package wire implements the low-level protobuf wire-format primitives:
// varint, zigzag and fixed-width decoding, tag parsing, length-delimited
// framing, and skip-width computation. All functions are pure, read through
// an offset into a caller-owned buffer, and are safe to call concurrently
// on independent buffers.
package wire
