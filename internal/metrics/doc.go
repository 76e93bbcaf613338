// Package metrics defines the Prometheus instrumentation for the takwire
// decoder service: payload and decode outcome counters, decode latency,
// queue pressure, and HTTP API metrics.
package metrics
