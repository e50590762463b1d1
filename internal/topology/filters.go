// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package topology

import (
	"fmt"
	"os"

	"github.com/tomtom215/signalmux/internal/config"
	"github.com/tomtom215/signalmux/internal/filter"
)

// buildFilter constructs the concrete Filter named by cfg.Kind.
func buildFilter(cfg config.FilterConfig) (filter.Filter, error) {
	switch cfg.Kind {
	case "deny_logs":
		return filter.DenyLogs{}, nil

	case "deny_telemetry":
		return filter.DenyTelemetry{}, nil

	case "programmable", "lua":
		if cfg.Script == "" {
			return nil, fmt.Errorf("filters.%s: programmable filter requires a script path", cfg.ConfigPath)
		}
		body, err := os.ReadFile(cfg.Script)
		if err != nil {
			return nil, fmt.Errorf("filters.%s: reading script %s: %w", cfg.ConfigPath, cfg.Script, err)
		}
		p, err := filter.NewProgrammable(string(body))
		if err != nil {
			return nil, fmt.Errorf("filters.%s: %w", cfg.ConfigPath, err)
		}
		return p, nil

	default:
		return nil, fmt.Errorf("filters.%s: unknown filter kind %q", cfg.ConfigPath, cfg.Kind)
	}
}
