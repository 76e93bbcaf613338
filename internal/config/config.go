package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Protocols ProtocolsConfig `yaml:"protocols"`
	HTTP      HTTPConfig      `yaml:"http"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains listener configuration shared by all ports.
type ServerConfig struct {
	BindAddress string `yaml:"bind_address"`
	BufferSize  int    `yaml:"buffer_size"`
	Workers     int    `yaml:"workers"`
	QueueSize   int    `yaml:"queue_size"`
}

// ProtocolsConfig registers transport ports per protocol family.
type ProtocolsConfig struct {
	TAK  FamilyPorts `yaml:"tak"`
	OMNI FamilyPorts `yaml:"omni"`
}

// FamilyPorts lists the ports one protocol family listens on.
type FamilyPorts struct {
	UDPPorts []int `yaml:"udp_ports"`
	TCPPorts []int `yaml:"tcp_ports"`
}

// HTTPConfig contains HTTP API server configuration.
type HTTPConfig struct {
	Port    int    `yaml:"port"`
	Address string `yaml:"address"`
	Enabled bool   `yaml:"enabled"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate performs validation of the configuration.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Protocols.Validate(); err != nil {
		return fmt.Errorf("protocols config: %w", err)
	}

	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration.
func (s *ServerConfig) Validate() error {
	if s.BindAddress == "" {
		return fmt.Errorf("bind_address cannot be empty")
	}

	if s.BufferSize < 1024 {
		return fmt.Errorf("buffer_size must be at least 1024 bytes, got %d", s.BufferSize)
	}

	if s.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", s.Workers)
	}

	if s.QueueSize < 1 {
		return fmt.Errorf("queue_size must be at least 1, got %d", s.QueueSize)
	}

	return nil
}

// Validate validates protocol port registrations.
func (p *ProtocolsConfig) Validate() error {
	seen := make(map[int]string)

	check := func(family string, ports []int) error {
		for _, port := range ports {
			if port < 1 || port > 65535 {
				return fmt.Errorf("%s port must be between 1 and 65535, got %d", family, port)
			}
			if owner, dup := seen[port]; dup && owner != family {
				return fmt.Errorf("port %d registered to both %s and %s", port, owner, family)
			}
			seen[port] = family
		}
		return nil
	}

	if err := check("tak", p.TAK.UDPPorts); err != nil {
		return err
	}
	if err := check("tak", p.TAK.TCPPorts); err != nil {
		return err
	}
	if err := check("omni", p.OMNI.UDPPorts); err != nil {
		return err
	}
	if err := check("omni", p.OMNI.TCPPorts); err != nil {
		return err
	}

	if len(seen) == 0 {
		return fmt.Errorf("at least one port must be registered")
	}

	return nil
}

// AllPorts returns the union of the family's UDP and TCP ports, without
// duplicates.
func (f *FamilyPorts) AllPorts() []int {
	out := make([]int, 0, len(f.UDPPorts)+len(f.TCPPorts))
	out = append(out, f.UDPPorts...)
	for _, p := range f.TCPPorts {
		dup := false
		for _, u := range f.UDPPorts {
			if p == u {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates HTTP configuration.
func (h *HTTPConfig) Validate() error {
	if h.Enabled {
		if h.Port < 1 || h.Port > 65535 {
			return fmt.Errorf("http port must be between 1 and 65535, got %d", h.Port)
		}

		if h.Address == "" {
			return fmt.Errorf("http address cannot be empty when HTTP is enabled")
		}
	}

	return nil
}

// Validate validates logging configuration.
func (l *LoggingConfig) Validate() error {
	switch l.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", l.Level)
	}

	switch l.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", l.Format)
	}

	return nil
}
