package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			BindAddress: "0.0.0.0",
			BufferSize:  65536,
			Workers:     4,
			QueueSize:   1000,
		},
		Protocols: ProtocolsConfig{
			TAK:  FamilyPorts{UDPPorts: []int{6969}, TCPPorts: []int{4242, 8087}},
			OMNI: FamilyPorts{UDPPorts: []int{8089}},
		},
		HTTP: HTTPConfig{
			Port:    8080,
			Address: "127.0.0.1",
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{
			name:    "empty bind address",
			mutate:  func(c *Config) { c.Server.BindAddress = "" },
			wantErr: "bind_address",
		},
		{
			name:    "tiny buffer",
			mutate:  func(c *Config) { c.Server.BufferSize = 128 },
			wantErr: "buffer_size",
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Server.Workers = 0 },
			wantErr: "workers",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Protocols.TAK.UDPPorts = []int{70000} },
			wantErr: "between 1 and 65535",
		},
		{
			name: "port in two families",
			mutate: func(c *Config) {
				c.Protocols.OMNI.UDPPorts = []int{4242}
			},
			wantErr: "registered to both",
		},
		{
			name: "no ports at all",
			mutate: func(c *Config) {
				c.Protocols = ProtocolsConfig{}
			},
			wantErr: "at least one port",
		},
		{
			name: "http enabled without address",
			mutate: func(c *Config) {
				c.HTTP.Address = ""
			},
			wantErr: "http address",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "log level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	yaml := `
server:
  bind_address: 0.0.0.0
  buffer_size: 65536
  workers: 4
  queue_size: 1000
protocols:
  tak:
    udp_ports: [6969]
    tcp_ports: [4242, 8087]
  omni:
    udp_ports: [8089]
http:
  port: 8080
  address: 127.0.0.1
  enabled: true
logging:
  level: debug
  format: json
  output: stderr
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.BindAddress)
	assert.Equal(t, []int{6969}, cfg.Protocols.TAK.UDPPorts)
	assert.Equal(t, []int{4242, 8087}, cfg.Protocols.TAK.TCPPorts)
	assert.Equal(t, []int{8089}, cfg.Protocols.OMNI.UDPPorts)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: ["), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestAllPorts(t *testing.T) {
	f := FamilyPorts{UDPPorts: []int{6969, 4242}, TCPPorts: []int{4242, 8087}}
	assert.ElementsMatch(t, []int{6969, 4242, 8087}, f.AllPorts())
}
