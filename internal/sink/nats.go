// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package sink

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"

	"github.com/tomtom215/signalmux/internal/event"
)

// NATSBridge republishes every event onto a NATS subject as JSON,
// letting signalmux feed a downstream event bus (SPEC_FULL.md §4.4
// expansion); it is deliberately non-aggregating since its purpose is
// to mirror the raw stream, not to summarize it.
type NATSBridge struct {
	conn    *nats.Conn
	subject string
}

func NewNATSBridge(conn *nats.Conn, subject string) *NATSBridge {
	return &NATSBridge{conn: conn, subject: subject}
}

func (b *NATSBridge) Deliver(e event.Event) error {
	payload, err := json.Marshal(wireEvent(e))
	if err != nil {
		return fmt.Errorf("nats sink: marshal: %w", err)
	}
	if err := b.conn.Publish(b.subject, payload); err != nil {
		return fmt.Errorf("nats sink: publish: %w", err)
	}
	return nil
}

// Flush is a no-op: NATSBridge republishes immediately in Deliver and
// has no aggregation state to emit.
func (b *NATSBridge) Flush(uint64) error { return nil }

// wireEventEnvelope is the JSON shape the NATS bridge sink publishes;
// internal/source's NATS bridge decodes a matching copy of it. The HTTP
// webhook source uses its own, different request shape.
type wireEventEnvelope struct {
	Variant   string            `json:"variant"`
	Name      string            `json:"name,omitempty"`
	Value     float64           `json:"value,omitempty"`
	Kind      string            `json:"kind,omitempty"`
	Path      string            `json:"path,omitempty"`
	Payload   string            `json:"payload,omitempty"`
	Timestamp int64             `json:"timestamp,omitempty"`
	Tags      map[string]string `json:"tags,omitempty"`
	Epoch     uint64            `json:"epoch,omitempty"`
}

func wireEvent(e event.Event) wireEventEnvelope {
	switch e.Variant {
	case event.VariantTelemetry:
		t := e.Telemetry
		return wireEventEnvelope{
			Variant: "telemetry", Name: t.Name, Value: t.Value, Kind: t.Kind.String(),
			Timestamp: t.Timestamp, Tags: t.Tags.Map(),
		}
	case event.VariantLog:
		l := e.Log
		return wireEventEnvelope{
			Variant: "log", Path: l.Path, Payload: l.Payload, Timestamp: l.Timestamp, Tags: l.Tags.Map(),
		}
	default:
		return wireEventEnvelope{Variant: "timer_flush", Epoch: e.Epoch}
	}
}
