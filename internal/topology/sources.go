// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package topology

import (
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tomtom215/signalmux/internal/config"
	"github.com/tomtom215/signalmux/internal/queue"
	"github.com/tomtom215/signalmux/internal/source"
)

// buildSource constructs the concrete Source named by kind/cfg.Kind,
// wired to forward to senders (already resolved by the caller against
// cfg.Forwards). done is closed by the topology builder during shutdown
// so long-lived sources (Internal, NATS bridge) can stop their loop.
func buildSource(kind string, cfg config.SourceConfig, senders []*queue.Sender, log zerolog.Logger, done <-chan struct{}) (source.Source, error) {
	opts := cfg.Options
	switch kind {
	case "statsd":
		addr := optString(opts, "bind", ":8125")
		rate := optInt(opts, "rate_per_sec", 0)
		return source.NewStatsd(addr, senders, rate, log), nil

	case "graphite":
		addr := optString(opts, "bind", ":2003")
		return source.NewGraphite(addr, senders, log), nil

	case "file":
		path := optString(opts, "path", "")
		if path == "" {
			return nil, fmt.Errorf("sources.file.%s: file source requires a path", cfg.ConfigPath)
		}
		return source.NewFile(path, senders, log), nil

	case "http_webhook":
		addr := optString(opts, "bind", ":8080")
		return source.NewHTTPWebhook(addr, senders, log), nil

	case "nats":
		url := optString(opts, "url", nats.DefaultURL)
		subject := optString(opts, "subject", cfg.ConfigPath)
		conn, err := nats.Connect(url)
		if err != nil {
			return nil, fmt.Errorf("sources.nats.%s: connecting to nats: %w", cfg.ConfigPath, err)
		}
		return source.NewNATSBridge(conn, subject, senders, log, done), nil

	case "native":
		addr := optString(opts, "bind", ":9000")
		return source.NewNative(addr, senders, log), nil

	default:
		return nil, fmt.Errorf("sources.%s.%s: unknown source kind %q", kind, cfg.ConfigPath, kind)
	}
}
