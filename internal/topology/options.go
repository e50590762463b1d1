// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package topology

import "fmt"

// optString/optInt/optFloat/optStrings pull a typed value out of a
// sink/source's free-form Options map (internal/config.SinkConfig.Options
// / SourceConfig.Options), defaulting when absent. Koanf/YAML decode
// numbers as float64 and sequences as []interface{}, so these helpers
// also normalize those shapes rather than requiring every call site to
// repeat the same type switch.
func optString(opts map[string]interface{}, key, def string) string {
	if v, ok := opts[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

func optInt(opts map[string]interface{}, key string, def int) int {
	if v, ok := opts[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return def
}

func optStrings(opts map[string]interface{}, key string) ([]string, error) {
	v, ok := opts[key]
	if !ok {
		return nil, nil
	}
	switch vs := v.(type) {
	case []string:
		return vs, nil
	case []interface{}:
		out := make([]string, 0, len(vs))
		for _, e := range vs {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("expected string element in %q, got %T", key, e)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected string list for %q, got %T", key, v)
	}
}
