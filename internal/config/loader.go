package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// envPrefix namespaces the daemon's environment variables:
	// SNAPSHOTD_SERVER_PORT, SNAPSHOTD_OUTLINE_MAX_LINES, ...
	envPrefix = "SNAPSHOTD_"

	maxConfigFileSize = 1 << 20
)

// Load reads configuration with precedence env > YAML file > defaults.
// A missing file is not an error; an unreadable or oversized one is.
// An empty path skips the file layer entirely.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if content, err := readConfigFile(path); err != nil {
			return nil, err
		} else if content != nil {
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
		}
	}

	// Environment variables map section_key to section.key; only the
	// first underscore separates the section, so SNAPSHOTD_OUTLINE_MAX_LINES
	// becomes outline.max_lines.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.Replace(s, "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// readConfigFile returns the file's contents, nil when it does not exist.
func readConfigFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return content, nil
}
