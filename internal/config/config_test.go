// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "signalmux.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadAppliesDefaultFlushInterval(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, `
data-directory: `+dir+`
sinks:
  out:
    kind: noop
internal:
  forwards: ["sinks.out"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FlushInterval != 60*time.Second {
		t.Fatalf("expected default flush interval 60s, got %v", cfg.FlushInterval)
	}
	if cfg.DataDirectory != dir {
		t.Fatalf("expected data directory %q, got %q", dir, cfg.DataDirectory)
	}
}

func TestLoadRejectsUnresolvedForward(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, `
data-directory: `+dir+`
sinks:
  out:
    kind: noop
internal:
  forwards: ["sinks.does-not-exist"]
`)

	if _, err := Load(path); err == nil {
		t.Fatalf("expected unresolved forward to be rejected")
	}
}

func TestLoadRejectsDuplicateConfigPath(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, `
data-directory: `+dir+`
sinks:
  out:
    kind: noop
    config_path: sinks.shared
  other:
    kind: noop
    config_path: sinks.shared
internal:
  forwards: ["sinks.out"]
`)

	if _, err := Load(path); err == nil {
		t.Fatalf("expected duplicate config_path to be rejected")
	}
}

func TestLoadRejectsMissingDataDirectory(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, `
sinks:
  out:
    kind: noop
internal:
  forwards: ["sinks.out"]
`)

	if _, err := Load(path); err == nil {
		t.Fatalf("expected missing data-directory to be rejected")
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, `
data-directory: `+dir+`
flush-interval: 30s
sinks:
  out:
    kind: noop
internal:
  forwards: ["sinks.out"]
`)

	os.Setenv("SIGNALMUX_FLUSH_INTERVAL", "90s")
	defer os.Unsetenv("SIGNALMUX_FLUSH_INTERVAL")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FlushInterval != 90*time.Second {
		t.Fatalf("expected env override 90s, got %v", cfg.FlushInterval)
	}
}

func TestFindConfigFileHonorsEnvVar(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(custom, []byte("data-directory: "+dir), 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	os.Setenv(ConfigPathEnvVar, custom)
	defer os.Unsetenv(ConfigPathEnvVar)

	if got := findConfigFile(); got != custom {
		t.Fatalf("findConfigFile() = %q, want %q", got, custom)
	}
}

func TestFindConfigFileReturnsEmptyWhenAbsent(t *testing.T) {
	os.Unsetenv(ConfigPathEnvVar)
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	defer os.Chdir(cwd)
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	if got := findConfigFile(); got != "" {
		t.Fatalf("findConfigFile() = %q, want empty string", got)
	}
}
