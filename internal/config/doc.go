// Package config provides configuration loading and validation for the
// takwire decoder service. It handles YAML-based configuration with struct
// validation: listener settings, per-protocol port registrations, the HTTP
// API, and logging.
package config
