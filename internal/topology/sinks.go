// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package topology

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/tomtom215/signalmux/internal/config"
	"github.com/tomtom215/signalmux/internal/sink"
)

// buildSink constructs the concrete Sink named by cfg.Kind. registry is
// the process-wide Prometheus registry shared with internal/adminserver.
func buildSink(cfg config.SinkConfig, registry *prometheus.Registry, log zerolog.Logger) (sink.Sink, error) {
	opts := cfg.Options
	switch cfg.Kind {
	case "null":
		return &sink.Null{}, nil

	case "console":
		return sink.NewConsole(os.Stdout), nil

	case "prometheus":
		return sink.NewPrometheus(registry), nil

	case "redis":
		endpoints, err := optStrings(opts, "endpoints")
		if err != nil {
			return nil, fmt.Errorf("sinks.%s: %w", cfg.ConfigPath, err)
		}
		if len(endpoints) == 0 {
			return nil, fmt.Errorf("sinks.%s: redis sink requires at least one endpoint", cfg.ConfigPath)
		}
		hashKey := optString(opts, "hash_key", "default")
		return sink.NewRedis(endpoints, hashKey), nil

	case "s3":
		bucket := optString(opts, "bucket", "")
		if bucket == "" {
			return nil, fmt.Errorf("sinks.%s: s3 sink requires a bucket", cfg.ConfigPath)
		}
		prefix := optString(opts, "prefix", cfg.ConfigPath)
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, fmt.Errorf("sinks.%s: loading aws config: %w", cfg.ConfigPath, err)
		}
		client := s3.NewFromConfig(awsCfg)
		return sink.NewS3Archive(client, bucket, prefix), nil

	case "nats":
		url := optString(opts, "url", nats.DefaultURL)
		subject := optString(opts, "subject", cfg.ConfigPath)
		conn, err := nats.Connect(url)
		if err != nil {
			return nil, fmt.Errorf("sinks.%s: connecting to nats: %w", cfg.ConfigPath, err)
		}
		return sink.NewNATSBridge(conn, subject), nil

	case "websocket":
		return sink.NewWebSocket(), nil

	case "native":
		addr := optString(opts, "addr", "")
		if addr == "" {
			return nil, fmt.Errorf("sinks.%s: native sink requires addr", cfg.ConfigPath)
		}
		conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
		if err != nil {
			return nil, fmt.Errorf("sinks.%s: dialing native sink: %w", cfg.ConfigPath, err)
		}
		return sink.NewNative(conn), nil

	default:
		return nil, fmt.Errorf("sinks.%s: unknown sink kind %q", cfg.ConfigPath, cfg.Kind)
	}
}

// ioSink reports whether the sink kind does real outbound I/O during
// Flush, and therefore should run under a circuit breaker (spec.md
// §4.4 expansion, SPEC_FULL.md §4.4). Null and Console never fail in a
// way a breaker would help with.
func ioSink(kind string) bool {
	switch kind {
	case "redis", "s3", "nats", "websocket", "native":
		return true
	default:
		return false
	}
}
