// Package config handles configuration parsing for telnet-console-mcp.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath returns the default config file path:
// $XDG_CONFIG_HOME/telnet-console-mcp/config.yaml or
// ~/.config/telnet-console-mcp/config.yaml.
func DefaultConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "telnet-console-mcp", "config.yaml")
}

// Config represents the top-level configuration.
type Config struct {
	Logging         LoggingConfig `yaml:"logging"`
	Session         SessionConfig `yaml:"session"`
	Timing          TimingConfig  `yaml:"timing"`
	PromptDetection PromptConfig  `yaml:"prompt_detection"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level    string `yaml:"level"`    // "debug", "info", "warn", "error"
	Sanitize bool   `yaml:"sanitize"` // redact credential-shaped values from logs
}

// SessionConfig defines session behavior settings.
type SessionConfig struct {
	MaxSessions      int      `yaml:"max_sessions"`       // concurrent session limit
	ConnectTimeoutMs int      `yaml:"connect_timeout_ms"` // default transport open bound
	ReadBufferSize   int      `yaml:"read_buffer_size"`   // bytes per bounded read
	SlowCommands     []string `yaml:"slow_commands"`      // extra slow-command prefixes
}

// TimingConfig tunes the adaptive read loop. The defaults are empirically
// chosen and device-dependent; they are configuration, not constants, so
// deployments can tune latency against correctness without code changes.
type TimingConfig struct {
	PollIntervalMs     int `yaml:"poll_interval_ms"`      // bounded-read timeout
	SilenceThresholdMs int `yaml:"silence_threshold_ms"`  // idle gap before re-testing the prompt
	GraceWaitMs        int `yaml:"grace_wait_ms"`         // pause after a prompt match
	GraceReadMs        int `yaml:"grace_read_ms"`         // trailing-fragment read bound
	SlowCommandFloorMs int `yaml:"slow_command_floor_ms"` // minimum deadline for slow commands
	DefaultExecWaitMs  int `yaml:"default_exec_wait_ms"`  // deadline when the caller passes none
}

// PromptConfig defines prompt detection settings.
type PromptConfig struct {
	// CustomPatterns are extra prompt terminator regexes, consulted before
	// the built-in tiers. A capturing group, if present, becomes the
	// reported mode label.
	CustomPatterns []string `yaml:"custom_patterns"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Sanitize: true,
		},
		Session: SessionConfig{
			MaxSessions:      16,
			ConnectTimeoutMs: 5000,
			ReadBufferSize:   4096,
		},
		Timing: TimingConfig{
			PollIntervalMs:     100,
			SilenceThresholdMs: 1000,
			GraceWaitMs:        200,
			GraceReadMs:        100,
			SlowCommandFloorMs: 12000,
			DefaultExecWaitMs:  2000,
		},
	}
}

// Load loads configuration from a YAML file. An empty path loads the default
// location if it exists, otherwise the built-in defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultConfigPath()
		if path == "" {
			return cfg, nil
		}
		if _, err := os.Stat(path); err != nil {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %q", c.Logging.Level)
	}

	if c.Session.MaxSessions < 1 {
		return fmt.Errorf("session.max_sessions must be at least 1, got %d", c.Session.MaxSessions)
	}
	if c.Session.ConnectTimeoutMs < 1 {
		return fmt.Errorf("session.connect_timeout_ms must be positive, got %d", c.Session.ConnectTimeoutMs)
	}
	if c.Session.ReadBufferSize < 1 {
		return fmt.Errorf("session.read_buffer_size must be positive, got %d", c.Session.ReadBufferSize)
	}

	for name, v := range map[string]int{
		"timing.poll_interval_ms":      c.Timing.PollIntervalMs,
		"timing.silence_threshold_ms":  c.Timing.SilenceThresholdMs,
		"timing.grace_wait_ms":         c.Timing.GraceWaitMs,
		"timing.grace_read_ms":         c.Timing.GraceReadMs,
		"timing.slow_command_floor_ms": c.Timing.SlowCommandFloorMs,
		"timing.default_exec_wait_ms":  c.Timing.DefaultExecWaitMs,
	} {
		if v < 1 {
			return fmt.Errorf("%s must be positive, got %d", name, v)
		}
	}

	return nil
}
