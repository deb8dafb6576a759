// Copyright 2026 The Lair Chat Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeConfig writes a config file into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lair.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.ServerURL != "http://127.0.0.1:8082" {
		t.Errorf("unexpected default server URL: %q", cfg.ServerURL)
	}
	if cfg.Watch.Interval != 2*time.Second {
		t.Errorf("unexpected default watch interval: %v", cfg.Watch.Interval)
	}
	if cfg.Watch.Limit != 10 {
		t.Errorf("unexpected default watch limit: %d", cfg.Watch.Limit)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoad_Unset(t *testing.T) {
	t.Setenv(EnvVar, "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with unset %s failed: %v", EnvVar, err)
	}
	if cfg.ServerURL != Default().ServerURL {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoad_MissingFileIsAnError(t *testing.T) {
	t.Setenv(EnvVar, filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for explicitly requested missing file")
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server_url: https://chat.example.com
request_timeout: 10s
watch:
  interval: 5s
  limit: 25
default_room: general
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.ServerURL != "https://chat.example.com" {
		t.Errorf("server_url = %q", cfg.ServerURL)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("request_timeout = %v", cfg.RequestTimeout)
	}
	if cfg.Watch.Interval != 5*time.Second || cfg.Watch.Limit != 25 {
		t.Errorf("watch = %+v", cfg.Watch)
	}
	if cfg.DefaultRoom != "general" {
		t.Errorf("default_room = %q", cfg.DefaultRoom)
	}
}

func TestLoadFile_PartialMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, "server_url: https://chat.example.com\n")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Watch.Interval != 2*time.Second || cfg.Watch.Limit != 10 {
		t.Errorf("defaults not preserved: %+v", cfg.Watch)
	}
}

func TestLoadFile_VariableExpansion(t *testing.T) {
	t.Setenv("LAIR_SERVER", "https://chat.internal:8082")
	t.Setenv("LAIR_ROOM", "")

	path := writeConfig(t, `
server_url: ${LAIR_SERVER}
default_room: ${LAIR_ROOM:-lobby}
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.ServerURL != "https://chat.internal:8082" {
		t.Errorf("server_url = %q, want expanded value", cfg.ServerURL)
	}
	if cfg.DefaultRoom != "lobby" {
		t.Errorf("default_room = %q, want fallback default", cfg.DefaultRoom)
	}
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server_url: [unclosed\n")
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := &Config{
		RequestTimeout: -time.Second,
		Watch:          WatchConfig{Interval: 0, Limit: 0},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"server_url", "request_timeout", "watch.interval", "watch.limit"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("validation error missing %q: %v", want, err)
		}
	}
}
