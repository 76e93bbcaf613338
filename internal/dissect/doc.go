// Package dissect is the entry point the transport layer calls with a raw
// payload. It routes the bytes to the TAK or OMNI decoder, preferring the
// family registered for the receiving port, and honors the boundary
// contract with its caller: a decoded payload reports the bytes it
// consumed, a rejected payload reports zero, and no fault of any kind
// crosses the boundary.
package dissect
