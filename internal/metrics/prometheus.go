package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the takwire service.
type Metrics struct {
	// Payload metrics
	PayloadsReceived *prometheus.CounterVec
	PayloadsDecoded  *prometheus.CounterVec
	PayloadsRejected prometheus.Counter
	Anomalies        *prometheus.CounterVec
	DecodeDuration   prometheus.Histogram
	PayloadSize      prometheus.Histogram

	// Listener metrics
	QueueSize  prometheus.Gauge
	QueueDrops prometheus.Counter

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		PayloadsReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "takwire_payloads_received_total",
			Help: "Total number of payloads received, by transport",
		}, []string{"transport"}),
		PayloadsDecoded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "takwire_payloads_decoded_total",
			Help: "Total number of payloads decoded, by protocol and envelope variant",
		}, []string{"protocol", "variant"}),
		PayloadsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "takwire_payloads_rejected_total",
			Help: "Total number of payloads that matched no known protocol",
		}),
		Anomalies: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "takwire_anomalies_total",
			Help: "Total number of integrity anomalies surfaced by the decoder",
		}, []string{"kind"}),
		DecodeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "takwire_decode_duration_seconds",
			Help:    "Time spent decoding one payload",
			Buckets: prometheus.ExponentialBuckets(0.000001, 4, 10), // 1us to ~260ms
		}),
		PayloadSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "takwire_payload_size_bytes",
			Help:    "Size of received payloads in bytes",
			Buckets: prometheus.ExponentialBuckets(16, 4, 10), // 16B to ~4MB
		}),

		QueueSize: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "takwire_payload_queue_size",
			Help: "Current number of payloads in the processing queue",
		}),
		QueueDrops: promauto.NewCounter(prometheus.CounterOpts{
			Name: "takwire_payload_queue_drops_total",
			Help: "Total number of payloads dropped because the queue was full",
		}),

		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "takwire_http_requests_total",
			Help: "Total number of HTTP API requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "takwire_http_request_duration_seconds",
			Help:    "HTTP API request duration",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10), // 1ms to ~1s
		}, []string{"method", "endpoint"}),
		HTTPErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "takwire_http_errors_total",
			Help: "Total number of HTTP API error responses",
		}, []string{"method", "endpoint", "error_type"}),
	}
}

// RecordDecode records one decode outcome.
func (m *Metrics) RecordDecode(protocol, variant string, seconds float64) {
	m.PayloadsDecoded.WithLabelValues(protocol, variant).Inc()
	m.DecodeDuration.Observe(seconds)
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordHTTPError records an HTTP error response.
func (m *Metrics) RecordHTTPError(method, endpoint, errorType string) {
	m.HTTPErrors.WithLabelValues(method, endpoint, errorType).Inc()
}
