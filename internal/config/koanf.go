// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched, in order, when -C is not
// given. Mirrors cartographus/internal/config.DefaultConfigPaths.
var DefaultConfigPaths = []string{
	"signalmux.yaml",
	"signalmux.yml",
	"/etc/signalmux/config.yaml",
	"/etc/signalmux/config.yml",
}

// ConfigPathEnvVar overrides the searched config file path.
const ConfigPathEnvVar = "SIGNALMUX_CONFIG_PATH"

// Load implements the three-layer Koanf precedence the teacher's
// LoadWithKoanf demonstrates: struct defaults, then an optional YAML
// file (explicit path wins over the discovery search), then
// environment variables as the highest-priority layer. explicitPath is
// the CLI's -C flag value; pass "" to fall back to discovery.
func Load(explicitPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath := explicitPath
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("SIGNALMUX_", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	deriveConfigPaths(cfg)
	populateRawOptions(k, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches DefaultConfigPaths in order, honoring
// ConfigPathEnvVar first, exactly as cartographus's findConfigFile does.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
		return ""
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps SIGNALMUX_-prefixed environment variable names
// to koanf config paths, e.g. SIGNALMUX_DATA_DIRECTORY ->
// data-directory, SIGNALMUX_FLUSH_INTERVAL -> flush-interval. Unlike
// cartographus's hand-maintained legacy-name table (needed there for
// backward compatibility with pre-Koanf env var names), signalmux has
// no legacy names to preserve, so the transform is a single mechanical
// rule rather than a lookup table.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, "SIGNALMUX_"))
	return strings.ReplaceAll(key, "_", "-")
}

// populateRawOptions copies each sink/source's kind-specific remainder
// (redis endpoints, s3 bucket, statsd bind address, ...) into its
// Options map. These fields are decoded into `map[string]interface{}`
// rather than named struct fields because their shape depends on the
// sink/source kind, which config.Config itself has no business knowing
// about; the topology builder re-decodes Options once it has resolved
// the kind to a concrete constructor.
func populateRawOptions(k *koanf.Koanf, cfg *Config) {
	reserved := map[string]bool{"config_path": true, "kind": true, "forwards": true, "script": true}

	for name, s := range cfg.Sinks {
		s.Options = rawFields(k, "sinks."+name, reserved)
		cfg.Sinks[name] = s
	}
	for kind, byName := range cfg.Sources {
		for name, s := range byName {
			s.Options = rawFields(k, fmt.Sprintf("sources.%s.%s", kind, name), reserved)
			cfg.Sources[kind][name] = s
		}
	}
}

func rawFields(k *koanf.Koanf, path string, reserved map[string]bool) map[string]interface{} {
	all := k.Cut(path).All()
	out := make(map[string]interface{}, len(all))
	for key, val := range all {
		if !reserved[key] {
			out[key] = val
		}
	}
	return out
}

// deriveConfigPaths fills in the implicit config_path for any sink,
// filter, or source entry whose document omitted it, per spec.md §6's
// "implicit config_path = sinks.<name>" rule.
func deriveConfigPaths(cfg *Config) {
	for name, s := range cfg.Sinks {
		if s.ConfigPath == "" {
			s.ConfigPath = "sinks." + name
			cfg.Sinks[name] = s
		}
	}
	for name, f := range cfg.Filters {
		if f.ConfigPath == "" {
			f.ConfigPath = "filters." + name
			cfg.Filters[name] = f
		}
	}
	for kind, byName := range cfg.Sources {
		for name, s := range byName {
			if s.ConfigPath == "" {
				s.ConfigPath = fmt.Sprintf("sources.%s.%s", kind, name)
				cfg.Sources[kind][name] = s
			}
		}
	}
}
