// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package source

import (
	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tomtom215/signalmux/internal/event"
	"github.com/tomtom215/signalmux/internal/queue"
)

// NATSBridge subscribes to a NATS subject and decodes incoming messages
// as Events, the source-side mirror of internal/sink's NATSBridge
// (SPEC_FULL.md §4.5 expansion).
type NATSBridge struct {
	conn    *nats.Conn
	subject string
	senders []*queue.Sender
	log     zerolog.Logger
	done    <-chan struct{}
}

func NewNATSBridge(conn *nats.Conn, subject string, senders []*queue.Sender, log zerolog.Logger, done <-chan struct{}) *NATSBridge {
	return &NATSBridge{conn: conn, subject: subject, senders: senders, log: log, done: done}
}

func (b *NATSBridge) Run() {
	msgs := make(chan *nats.Msg, 64)
	sub, err := b.conn.ChanSubscribe(b.subject, msgs)
	if err != nil {
		b.log.Error().Err(err).Str("source", "nats").Str("subject", b.subject).Msg("subscribe failed, fatal")
		panic(err)
	}
	defer sub.Unsubscribe()

	for {
		select {
		case msg := <-msgs:
			b.handleMsg(msg)
		case <-b.done:
			b.log.Info().Str("source", "nats").Msg("stopping")
			return
		}
	}
}

func (b *NATSBridge) handleMsg(msg *nats.Msg) {
	var w wireEventEnvelope
	if err := json.Unmarshal(msg.Data, &w); err != nil {
		b.log.Warn().Err(err).Str("source", "nats").Msg("undecodable message, dropping")
		return
	}

	ev, ok := w.toEvent()
	if !ok {
		b.log.Warn().Str("source", "nats").Str("variant", w.Variant).Msg("unknown variant, dropping")
		return
	}

	if err := fanOut(b.senders, ev); err != nil {
		b.log.Error().Err(err).Str("source", "nats").Msg("downstream queue gone, fatal")
		panic(err)
	}
}

// wireEventEnvelope mirrors internal/sink's NATS wire shape so the
// bridge source and bridge sink agree on the frame format without
// either package importing the other.
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

func (w wireEventEnvelope) toEvent() (event.Event, bool) {
	switch w.Variant {
	case "telemetry":
		kind, ok := kindFromWire(w.Kind)
		if !ok {
			return event.Event{}, false
		}
		return event.NewTelemetryEvent(event.NewTelemetry(w.Name, w.Value, kind, w.Timestamp, event.NewTags(w.Tags))), true
	case "log":
		return event.NewLogEvent(event.Log{Path: w.Path, Payload: w.Payload, Timestamp: w.Timestamp, Tags: event.NewTags(w.Tags)}), true
	case "timer_flush":
		return event.NewFlushEvent(w.Epoch), true
	default:
		return event.Event{}, false
	}
}
