// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks struct-tag constraints via go-playground/validator,
// then the cross-entry invariants spec.md §6 calls for that no tag can
// express: no two sinks/filters/sources may share a config_path, and
// every forwards entry must resolve to a declared sink or filter.
// Mirrors cartographus's Config.Validate dispatching to per-section
// checks, generalized from field-presence checks to topology-shape
// checks since signalmux's config describes a graph, not a flat set of
// integration credentials.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("struct validation: %w", err)
	}
	for name, s := range c.Sinks {
		if err := validate.Struct(s); err != nil {
			return fmt.Errorf("sinks.%s: %w", name, err)
		}
	}
	for name, f := range c.Filters {
		if err := validate.Struct(f); err != nil {
			return fmt.Errorf("filters.%s: %w", name, err)
		}
	}
	for kind, byName := range c.Sources {
		for name, s := range byName {
			if err := validate.Struct(s); err != nil {
				return fmt.Errorf("sources.%s.%s: %w", kind, name, err)
			}
		}
	}

	if err := c.validateUniqueConfigPaths(); err != nil {
		return err
	}
	return c.validateForwards()
}

// validateUniqueConfigPaths rejects a document where two entries
// resolve (implicitly or explicitly) to the same config_path, which
// would make queue.Open's duplicate-name rejection the only thing
// catching the mistake, at process-start time instead of config-load
// time.
func (c *Config) validateUniqueConfigPaths() error {
	seen := make(map[string]string)
	check := func(path, owner string) error {
		if prev, ok := seen[path]; ok {
			return fmt.Errorf("duplicate config_path %q: used by both %s and %s", path, prev, owner)
		}
		seen[path] = owner
		return nil
	}

	for name, s := range c.Sinks {
		if err := check(s.ConfigPath, "sinks."+name); err != nil {
			return err
		}
	}
	for name, f := range c.Filters {
		if err := check(f.ConfigPath, "filters."+name); err != nil {
			return err
		}
	}
	for kind, byName := range c.Sources {
		for name, s := range byName {
			if err := check(s.ConfigPath, fmt.Sprintf("sources.%s.%s", kind, name)); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateForwards rejects any forwards entry that does not match a
// declared sink or filter config_path exactly (spec.md §6: "Every
// forwards entry must match a declared sink or filter config_path
// exactly").
func (c *Config) validateForwards() error {
	targets := c.forwardable()

	for name, f := range c.Filters {
		for _, fwd := range f.Forwards {
			if !targets[fwd] {
				return fmt.Errorf("filters.%s: unresolved forward %q", name, fwd)
			}
		}
	}
	for kind, byName := range c.Sources {
		for name, s := range byName {
			for _, fwd := range s.Forwards {
				if !targets[fwd] {
					return fmt.Errorf("sources.%s.%s: unresolved forward %q", kind, name, fwd)
				}
			}
		}
	}
	for _, fwd := range c.Internal.Forwards {
		if !targets[fwd] {
			return fmt.Errorf("internal: unresolved forward %q", fwd)
		}
	}
	return nil
}
