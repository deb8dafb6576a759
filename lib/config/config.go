// Copyright 2026 The Lair Chat Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable that overrides the config
// file path.
const EnvVar = "LAIR_CONFIG"

// Config is the client configuration.
type Config struct {
	// ServerURL is the base URL of the Lair Chat server.
	ServerURL string `yaml:"server_url"`

	// RequestTimeout bounds each HTTP request. Watch polling uses the
	// same bound per fetch.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// Watch configures the room polling loop.
	Watch WatchConfig `yaml:"watch"`

	// DefaultRoom is the room used by watch and send when no room
	// argument is given. Optional.
	DefaultRoom string `yaml:"default_room"`
}

// WatchConfig configures the room watcher defaults for the CLI.
type WatchConfig struct {
	// Interval is the sleep between fetch cycles.
	Interval time.Duration `yaml:"interval"`

	// Limit is the fetch window size: at most this many of the
	// newest messages are retrieved per cycle.
	Limit int `yaml:"limit"`
}

// Default returns the default configuration. These are the effective
// values when no config file exists.
func Default() *Config {
	return &Config{
		ServerURL:      "http://127.0.0.1:8082",
		RequestTimeout: 30 * time.Second,
		Watch: WatchConfig{
			Interval: 2 * time.Second,
			Limit:    10,
		},
	}
}

// Load loads configuration from the path in LAIR_CONFIG, falling back
// to defaults when the variable is unset. An unset variable is not an
// error — the client works against a local server with no config file
// at all. A set variable pointing at a missing or invalid file IS an
// error: an explicitly requested config must load.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path, merging over
// the defaults. ${VAR} and ${VAR:-default} patterns in string fields
// are expanded from the environment after the file is parsed.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in
// string-valued fields.
func (c *Config) expandVariables() {
	c.ServerURL = expandVars(c.ServerURL)
	c.DefaultRoom = expandVars(c.DefaultRoom)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors, reporting all of them
// at once.
func (c *Config) Validate() error {
	var errs []error

	if c.ServerURL == "" {
		errs = append(errs, fmt.Errorf("server_url is required"))
	} else if _, err := url.Parse(c.ServerURL); err != nil {
		errs = append(errs, fmt.Errorf("invalid server_url %q: %w", c.ServerURL, err))
	}

	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request_timeout must be positive, got %v", c.RequestTimeout))
	}

	if c.Watch.Interval <= 0 {
		errs = append(errs, fmt.Errorf("watch.interval must be positive, got %v", c.Watch.Interval))
	}
	if c.Watch.Limit <= 0 {
		errs = append(errs, fmt.Errorf("watch.limit must be positive, got %d", c.Watch.Limit))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
