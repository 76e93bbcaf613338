package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tacsight/takwire/internal/config"
	"github.com/tacsight/takwire/internal/metrics"
	"github.com/tacsight/takwire/internal/ports"
)

// HTTPServer serves the monitoring and control API.
type HTTPServer struct {
	server   *http.Server
	config   *config.Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	registry *ports.Registry
	listener *Server
	started  time.Time
}

// NewHTTPServer creates the HTTP API server.
func NewHTTPServer(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics, registry *ports.Registry, listener *Server) *HTTPServer {
	h := &HTTPServer{
		config:   cfg,
		logger:   logger,
		metrics:  m,
		registry: registry,
		listener: listener,
		started:  time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.withMetrics("/health", h.handleHealth))
	mux.HandleFunc("/stats", h.withMetrics("/stats", h.handleStats))
	mux.HandleFunc("/config", h.withMetrics("/config", h.handleConfig))
	mux.HandleFunc("/config/ports", h.withMetrics("/config/ports", h.handlePorts))
	mux.Handle("/metrics", promhttp.Handler())

	h.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Address, cfg.HTTP.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return h
}

// Start runs the HTTP server until Stop is called.
func (h *HTTPServer) Start() error {
	h.logger.Info("HTTP API started", slog.String("addr", h.server.Addr))

	if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Stop shuts the HTTP server down gracefully.
func (h *HTTPServer) Stop(ctx context.Context) error {
	h.logger.Info("stopping HTTP API...")
	return h.server.Shutdown(ctx)
}

// responseWriter captures the status code for metrics.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// withMetrics wraps a handler with request accounting.
func (h *HTTPServer) withMetrics(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next(rw, r)

		h.metrics.RecordHTTPRequest(r.Method, endpoint, strconv.Itoa(rw.statusCode), time.Since(start).Seconds())
		if rw.statusCode >= 400 {
			h.metrics.RecordHTTPError(r.Method, endpoint, http.StatusText(rw.statusCode))
		}
	}
}

func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, map[string]any{
		"status":         "healthy",
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}

func (h *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, h.listener.Statistics())
}

func (h *HTTPServer) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, map[string]any{
		"server":    h.config.Server,
		"protocols": h.config.Protocols,
		"ports": map[string][]int{
			ports.FamilyTAK.String():  h.registry.Ports(ports.FamilyTAK),
			ports.FamilyOMNI.String(): h.registry.Ports(ports.FamilyOMNI),
		},
	})
}

// portsRequest is the body of PUT /config/ports.
type portsRequest struct {
	Family string `json:"family"`
	Ports  []int  `json:"ports"`
}

// handlePorts serves the runtime port mapping. GET returns the current
// table; PUT replaces one family's ports without restarting listeners.
func (h *HTTPServer) handlePorts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.writeJSON(w, map[string][]int{
			ports.FamilyTAK.String():  h.registry.Ports(ports.FamilyTAK),
			ports.FamilyOMNI.String(): h.registry.Ports(ports.FamilyOMNI),
		})

	case http.MethodPut:
		var req portsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}

		family, err := ports.ParseFamily(req.Family)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := h.registry.Replace(family, req.Ports); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		h.logger.Info("port mapping replaced",
			slog.String("family", family.String()),
			slog.Any("ports", req.Ports),
		)
		h.writeJSON(w, map[string][]int{
			ports.FamilyTAK.String():  h.registry.Ports(ports.FamilyTAK),
			ports.FamilyOMNI.String(): h.registry.Ports(ports.FamilyOMNI),
		})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *HTTPServer) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}
