// Package server implements the UDP and TCP listeners that feed captured
// payloads to the decoder, and the HTTP API for monitoring and runtime
// port reconfiguration. Payloads are queued to a worker pool; one worker
// decodes one payload at a time and the decoder itself holds no shared
// state, so workers never contend.
package server
