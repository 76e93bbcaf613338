package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tacsight/takwire/internal/config"
	"github.com/tacsight/takwire/internal/dissect"
	"github.com/tacsight/takwire/internal/metrics"
	"github.com/tacsight/takwire/internal/ports"
	"github.com/tacsight/takwire/internal/server"
)

const (
	defaultConfigPath = "configs/config.yaml"
	serviceName       = "takwired"
	serviceVersion    = "1.0.0"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger based on configuration
	logger := initLogger(cfg.Logging)

	logger.Info("Service starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("config_path", *configPath),
	)

	logger.Info("Configuration loaded",
		slog.String("bind_address", cfg.Server.BindAddress),
		slog.Any("tak_udp_ports", cfg.Protocols.TAK.UDPPorts),
		slog.Any("tak_tcp_ports", cfg.Protocols.TAK.TCPPorts),
		slog.Any("omni_udp_ports", cfg.Protocols.OMNI.UDPPorts),
		slog.Any("omni_tcp_ports", cfg.Protocols.OMNI.TCPPorts),
		slog.Int("workers", cfg.Server.Workers),
		slog.String("log_level", cfg.Logging.Level),
	)

	// Initialize Prometheus metrics
	appMetrics := metrics.NewMetrics()
	logger.Info("Prometheus metrics initialized")

	// Seed the port registry from the configured protocol families
	registry := ports.NewRegistry()
	if err := registry.Replace(ports.FamilyTAK, cfg.Protocols.TAK.AllPorts()); err != nil {
		logger.Error("Failed to register TAK ports", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := registry.Replace(ports.FamilyOMNI, cfg.Protocols.OMNI.AllPorts()); err != nil {
		logger.Error("Failed to register OMNI ports", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize the decoder and the listener service
	decoder := dissect.NewDecoder(registry, logger)
	srv := server.New(cfg, logger, decoder, appMetrics)

	// Initialize HTTP API server (if enabled)
	var httpServer *server.HTTPServer
	if cfg.HTTP.Enabled {
		httpServer = server.NewHTTPServer(cfg, logger, appMetrics, registry, srv)
		logger.Info("HTTP API server initialized",
			slog.String("address", fmt.Sprintf("%s:%d", cfg.HTTP.Address, cfg.HTTP.Port)),
		)
	}

	// Start listeners
	if err := srv.Start(); err != nil {
		logger.Error("Failed to start listeners", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start HTTP server (if enabled)
	if httpServer != nil {
		go func() {
			if err := httpServer.Start(); err != nil {
				logger.Error("HTTP server failed", slog.String("error", err.Error()))
			}
		}()
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Service started successfully, waiting for signals...")

	sig := <-sigChan
	logger.Info("Received shutdown signal", slog.String("signal", sig.String()))

	logger.Info("Starting graceful shutdown...")

	// Stop HTTP server first (stop accepting new requests)
	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Stop(shutdownCtx); err != nil {
			logger.Error("Error stopping HTTP server", slog.String("error", err.Error()))
		}
	}

	// Stop listeners and drain the decode queue
	srv.Stop()

	logger.Info("Service stopped")
}

// initLogger creates and configures the structured logger based on configuration
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var output *os.File
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "stdout", "":
		output = os.Stdout
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stdout\n", cfg.Output, err)
			output = os.Stdout
		} else {
			output = file
		}
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
