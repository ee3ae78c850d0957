// Package config loads daemon configuration from a YAML file with
// environment-variable overrides, in that precedence order on top of
// hardcoded defaults.
package config

import (
	"fmt"
	"time"

	"github.com/SJMakin/even-better-playwright-mcp/internal/logging"
	"github.com/SJMakin/even-better-playwright-mcp/internal/outline"
	"github.com/SJMakin/even-better-playwright-mcp/internal/telemetry"
)

// Config is the full daemon configuration.
type Config struct {
	Server    ServerConfig     `koanf:"server"`
	Logging   logging.Config   `koanf:"logging"`
	Outline   OutlineConfig    `koanf:"outline"`
	Snapshots SnapshotConfig   `koanf:"snapshots"`
	Telemetry telemetry.Config `koanf:"telemetry"`
}

// ServerConfig configures the HTTP daemon.
type ServerConfig struct {
	// Host the HTTP server binds to.
	Host string `koanf:"host"`

	// Port the HTTP server listens on.
	Port int `koanf:"port"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// OutlineConfig carries the default compression options. Per-request
// options override these.
type OutlineConfig struct {
	MaxLines          int    `koanf:"max_lines"`
	Mode              string `koanf:"mode"`
	FoldThreshold     int    `koanf:"fold_threshold"`
	PreserveStructure bool   `koanf:"preserve_structure"`
	TextLimit         int    `koanf:"text_limit"`
}

// Options converts the configured defaults into engine options.
func (o OutlineConfig) Options() outline.Options {
	return outline.Options{
		MaxLines:          o.MaxLines,
		Mode:              outline.Mode(o.Mode),
		FoldThreshold:     o.FoldThreshold,
		PreserveStructure: o.PreserveStructure,
		TextLimit:         o.TextLimit,
	}
}

// SnapshotConfig configures the snapshot history store.
type SnapshotConfig struct {
	// HistorySize is the number of sessions whose latest snapshots are
	// retained for search and diff.
	HistorySize int `koanf:"history_size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            9180,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "json",
		},
		Outline: OutlineConfig{
			MaxLines:      outline.DefaultMaxLines,
			Mode:          string(outline.ModeSmart),
			FoldThreshold: outline.DefaultFoldThreshold,
			TextLimit:     outline.DefaultTextLimit,
		},
		Snapshots: SnapshotConfig{
			HistorySize: 64,
		},
		Telemetry: telemetry.DefaultConfig(),
	}
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if c.Outline.MaxLines <= 0 {
		return fmt.Errorf("outline.max_lines must be positive")
	}
	switch outline.Mode(c.Outline.Mode) {
	case outline.ModeSmart, outline.ModeSimple:
	default:
		return fmt.Errorf("outline.mode must be smart or simple, got %q", c.Outline.Mode)
	}
	if c.Outline.FoldThreshold < 0 || c.Outline.FoldThreshold > 32 {
		return fmt.Errorf("outline.fold_threshold out of range: %d", c.Outline.FoldThreshold)
	}
	if c.Snapshots.HistorySize <= 0 {
		return fmt.Errorf("snapshots.history_size must be positive")
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	return nil
}
