package server

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/tacsight/takwire/internal/config"
	"github.com/tacsight/takwire/internal/dissect"
	"github.com/tacsight/takwire/internal/metrics"
)

// Server owns the transport listeners and the decode worker pool.
type Server struct {
	config  *config.Config
	logger  *slog.Logger
	decoder *dissect.Decoder
	metrics *metrics.Metrics

	udpConns     []*net.UDPConn
	tcpListeners []net.Listener

	// Accepted TCP connections; Stop closes them so handlers blocked in
	// reads return.
	conns  map[net.Conn]struct{}
	connMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc

	// Producers feed payloadChan; workers drain it. Shutdown waits for the
	// producers before closing the channel, so no send can hit a closed
	// channel.
	producers sync.WaitGroup
	workers   sync.WaitGroup

	payloadChan chan *incomingPayload

	// Statistics
	payloadsReceived uint64
	payloadsDecoded  uint64
	payloadsRejected uint64
	anomalies        uint64
	mu               sync.RWMutex
}

// incomingPayload is one captured payload with receive metadata.
type incomingPayload struct {
	data       []byte
	remoteAddr net.Addr
	localPort  int
	transport  string
	timestamp  time.Time
}

// New creates a server. Start opens the listeners.
func New(cfg *config.Config, logger *slog.Logger, decoder *dissect.Decoder, m *metrics.Metrics) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		config:      cfg,
		logger:      logger,
		decoder:     decoder,
		metrics:     m,
		conns:       make(map[net.Conn]struct{}),
		ctx:         ctx,
		cancel:      cancel,
		payloadChan: make(chan *incomingPayload, cfg.Server.QueueSize),
	}
}

// Start opens every configured UDP and TCP port and launches the decode
// workers.
func (s *Server) Start() error {
	for i := 0; i < s.config.Server.Workers; i++ {
		s.workers.Add(1)
		go s.decodeWorker(i)
	}

	for _, fp := range []*config.FamilyPorts{&s.config.Protocols.TAK, &s.config.Protocols.OMNI} {
		for _, port := range fp.UDPPorts {
			if err := s.listenUDP(port); err != nil {
				return err
			}
		}
		for _, port := range fp.TCPPorts {
			if err := s.listenTCP(port); err != nil {
				return err
			}
		}
	}

	s.logger.Info("listeners started",
		slog.Int("udp_ports", len(s.udpConns)),
		slog.Int("tcp_ports", len(s.tcpListeners)),
		slog.Int("workers", s.config.Server.Workers),
	)
	return nil
}

// Stop closes the listeners and open connections, waits for the producers
// to exit, then drains the workers. The payload channel is closed only
// after the last producer is gone.
func (s *Server) Stop() {
	s.logger.Info("stopping listeners...")

	s.cancel()
	for _, c := range s.udpConns {
		if err := c.Close(); err != nil {
			s.logger.Warn("error closing UDP socket", slog.String("error", err.Error()))
		}
	}
	for _, l := range s.tcpListeners {
		if err := l.Close(); err != nil {
			s.logger.Warn("error closing TCP listener", slog.String("error", err.Error()))
		}
	}

	// Unblock connection handlers sitting in reads.
	s.connMu.Lock()
	for c := range s.conns {
		c.Close()
	}
	s.connMu.Unlock()

	s.producers.Wait()
	close(s.payloadChan)
	s.workers.Wait()

	stats := s.Statistics()
	s.logger.Info("listeners stopped",
		slog.Uint64("payloads_received", stats.PayloadsReceived),
		slog.Uint64("payloads_decoded", stats.PayloadsDecoded),
		slog.Uint64("payloads_rejected", stats.PayloadsRejected),
		slog.Uint64("anomalies", stats.Anomalies),
	)
}

// enqueue hands a payload to the worker pool, dropping it when the queue
// is full.
func (s *Server) enqueue(p *incomingPayload) {
	s.mu.Lock()
	s.payloadsReceived++
	s.mu.Unlock()
	s.metrics.PayloadsReceived.WithLabelValues(p.transport).Inc()
	s.metrics.PayloadSize.Observe(float64(len(p.data)))

	select {
	case s.payloadChan <- p:
		s.metrics.QueueSize.Set(float64(len(s.payloadChan)))
	default:
		s.metrics.QueueDrops.Inc()
		s.logger.Warn("payload queue full, dropping payload",
			slog.String("remote_addr", p.remoteAddr.String()),
			slog.Int("payload_size", len(p.data)),
		)
	}
}

func (s *Server) trackConn(c net.Conn) {
	s.connMu.Lock()
	s.conns[c] = struct{}{}
	s.connMu.Unlock()
}

func (s *Server) untrackConn(c net.Conn) {
	s.connMu.Lock()
	delete(s.conns, c)
	s.connMu.Unlock()
}

// decodeWorker drains the payload queue.
func (s *Server) decodeWorker(workerID int) {
	defer s.workers.Done()

	s.logger.Debug("decode worker started", slog.Int("worker_id", workerID))
	for p := range s.payloadChan {
		s.handlePayload(p, workerID)
	}
	s.logger.Debug("decode worker stopped", slog.Int("worker_id", workerID))
}

// handlePayload runs one payload through the decoder and accounts for the
// outcome.
func (s *Server) handlePayload(p *incomingPayload, workerID int) {
	// The payload was just popped; keep the gauge tracking the drain, not
	// only the enqueues.
	s.metrics.QueueSize.Set(float64(len(s.payloadChan)))

	start := time.Now()
	res := s.decoder.Decode(p.data, p.localPort)
	elapsed := time.Since(start)

	if res.Anomaly != nil {
		s.mu.Lock()
		s.anomalies++
		s.mu.Unlock()
		s.metrics.Anomalies.WithLabelValues("length_mismatch").Inc()

		s.logger.Warn("payload anomaly",
			slog.String("remote_addr", p.remoteAddr.String()),
			slog.Int("local_port", p.localPort),
			slog.String("variant", res.Variant),
			slog.String("error", res.Anomaly.Error()),
			slog.Int("worker_id", workerID),
		)
		return
	}

	if res.Consumed == 0 {
		s.mu.Lock()
		s.payloadsRejected++
		s.mu.Unlock()
		s.metrics.PayloadsRejected.Inc()

		s.logger.Debug("payload not recognized",
			slog.String("remote_addr", p.remoteAddr.String()),
			slog.Int("local_port", p.localPort),
			slog.Int("payload_size", len(p.data)),
			slog.Int("worker_id", workerID),
		)
		return
	}

	s.mu.Lock()
	s.payloadsDecoded++
	s.mu.Unlock()
	s.metrics.RecordDecode(res.Protocol.String(), res.Variant, elapsed.Seconds())

	s.logger.Info("payload decoded",
		slog.String("protocol", res.Protocol.String()),
		slog.String("variant", res.Variant),
		slog.String("summary", res.Summary),
		slog.Int("consumed", res.Consumed),
		slog.String("remote_addr", p.remoteAddr.String()),
		slog.String("transport", p.transport),
		slog.Int("worker_id", workerID),
	)
	if s.logger.Enabled(s.ctx, slog.LevelDebug) && res.Root != nil {
		s.logger.Debug("field tree\n" + res.Root.String())
	}
}

// Statistics returns a snapshot of the server counters.
func (s *Server) Statistics() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Statistics{
		PayloadsReceived: s.payloadsReceived,
		PayloadsDecoded:  s.payloadsDecoded,
		PayloadsRejected: s.payloadsRejected,
		Anomalies:        s.anomalies,
		QueueSize:        uint64(len(s.payloadChan)),
		QueueCapacity:    uint64(cap(s.payloadChan)),
	}
}

// Statistics is the JSON shape served by the HTTP API.
type Statistics struct {
	PayloadsReceived uint64 `json:"payloads_received"`
	PayloadsDecoded  uint64 `json:"payloads_decoded"`
	PayloadsRejected uint64 `json:"payloads_rejected"`
	Anomalies        uint64 `json:"anomalies"`
	QueueSize        uint64 `json:"queue_size"`
	QueueCapacity    uint64 `json:"queue_capacity"`
}
