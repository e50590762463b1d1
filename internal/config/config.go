// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

// Package config loads and validates the declarative document described
// in spec.md §6: a data directory, a flush interval, a set of sinks,
// filters, and sources (each keyed by name, sources further keyed by
// kind), and a mandatory internal section. Grounded on
// tomtom215-cartographus/internal/config's three-layer Koanf loader
// (defaults struct -> optional YAML file -> environment overrides),
// generalized from cartographus's media-analytics fields to signalmux's
// routing topology fields.
package config

import (
	"fmt"
	"time"
)

// SinkConfig is the shape of one sinks.<name> entry. Options is the
// sink-kind-specific remainder (e.g. redis endpoints, s3 bucket),
// re-decoded by the topology builder once the sink kind is known.
type SinkConfig struct {
	ConfigPath string                 `koanf:"config_path" validate:"required"`
	Kind       string                 `koanf:"kind" validate:"required"`
	Options    map[string]interface{} `koanf:"-"`
}

// FilterConfig is the shape of one filters.<name> entry.
type FilterConfig struct {
	ConfigPath string   `koanf:"config_path" validate:"required"`
	Kind       string   `koanf:"kind" validate:"required"`
	Forwards   []string `koanf:"forwards" validate:"required,min=1"`
	Script     string   `koanf:"script"`
}

// SourceConfig is the shape of one sources.<kind>.<name> entry.
type SourceConfig struct {
	ConfigPath string                 `koanf:"config_path" validate:"required"`
	Kind       string                 `koanf:"kind" validate:"required"`
	Forwards   []string               `koanf:"forwards" validate:"required,min=1"`
	Options    map[string]interface{} `koanf:"-"`
}

// InternalConfig is the mandatory internal telemetry source section.
type InternalConfig struct {
	Forwards []string `koanf:"forwards" validate:"required,min=1"`
}

// Config is the fully decoded, validated configuration document.
type Config struct {
	DataDirectory string                            `koanf:"data-directory" validate:"required"`
	FlushInterval time.Duration                      `koanf:"flush-interval"`
	Sinks         map[string]SinkConfig              `koanf:"sinks"`
	Filters       map[string]FilterConfig            `koanf:"filters"`
	Sources       map[string]map[string]SourceConfig `koanf:"sources"`
	Internal      InternalConfig                     `koanf:"internal" validate:"required"`
}

// defaultConfig returns the Config populated with every field that has a
// sane default, the layer-1 base for LoadWithKoanf. Mirrors the
// teacher's defaultConfig() function: one place that fully populates
// defaults before file/env layers are applied on top.
func defaultConfig() *Config {
	return &Config{
		FlushInterval: 60 * time.Second,
		Sinks:         map[string]SinkConfig{},
		Filters:       map[string]FilterConfig{},
		Sources:       map[string]map[string]SourceConfig{},
	}
}

// forwardable returns the set of config_path values a forwards entry is
// permitted to reference: sinks and filters, never sources (spec.md
// §4.2: sources only ever forward onward, nothing forwards into one).
func (c *Config) forwardable() map[string]bool {
	paths := make(map[string]bool)
	for _, s := range c.Sinks {
		paths[s.ConfigPath] = true
	}
	for _, f := range c.Filters {
		paths[f.ConfigPath] = true
	}
	return paths
}
