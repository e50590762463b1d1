// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

// Package wire implements signalmux's native binary wire format,
// playing the role spec.md §1 assigns to the "native wire format"
// source/sink codec, using msgpack instead of hand-rolled framing
// (SPEC_FULL.md §4.5 expansion).
package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/tomtom215/signalmux/internal/event"
)

// Envelope is the on-wire shape of a single Event: a 4-byte big-endian
// length prefix (written by WriteEvent) followed by a msgpack-encoded
// Envelope, so a stream reader never has to speculatively parse a
// partial message.
type Envelope struct {
	Variant   string            `msgpack:"variant"`
	Name      string            `msgpack:"name,omitempty"`
	Value     float64           `msgpack:"value,omitempty"`
	Kind      string            `msgpack:"kind,omitempty"`
	Path      string            `msgpack:"path,omitempty"`
	Payload   string            `msgpack:"payload,omitempty"`
	Timestamp int64             `msgpack:"timestamp,omitempty"`
	Tags      map[string]string `msgpack:"tags,omitempty"`
	Epoch     uint64            `msgpack:"epoch,omitempty"`
}

// ToEnvelope converts an Event to its wire Envelope.
func ToEnvelope(e event.Event) Envelope {
	switch e.Variant {
	case event.VariantTelemetry:
		t := e.Telemetry
		return Envelope{Variant: "telemetry", Name: t.Name, Value: t.Value, Kind: t.Kind.String(), Timestamp: t.Timestamp, Tags: t.Tags.Map()}
	case event.VariantLog:
		l := e.Log
		return Envelope{Variant: "log", Path: l.Path, Payload: l.Payload, Timestamp: l.Timestamp, Tags: l.Tags.Map()}
	default:
		return Envelope{Variant: "timer_flush", Epoch: e.Epoch}
	}
}

// ToEvent converts a wire Envelope back to an Event.
func (w Envelope) ToEvent() (event.Event, error) {
	switch w.Variant {
	case "telemetry":
		kind, err := kindFromString(w.Kind)
		if err != nil {
			return event.Event{}, err
		}
		return event.NewTelemetryEvent(event.NewTelemetry(w.Name, w.Value, kind, w.Timestamp, event.NewTags(w.Tags))), nil
	case "log":
		return event.NewLogEvent(event.Log{Path: w.Path, Payload: w.Payload, Timestamp: w.Timestamp, Tags: event.NewTags(w.Tags)}), nil
	case "timer_flush":
		return event.NewFlushEvent(w.Epoch), nil
	default:
		return event.Event{}, fmt.Errorf("wire: unknown variant %q", w.Variant)
	}
}

func kindFromString(s string) (event.Kind, error) {
	switch s {
	case "gauge-set":
		return event.GaugeSet, nil
	case "gauge-delta":
		return event.GaugeDelta, nil
	case "counter":
		return event.Counter, nil
	case "timer":
		return event.Timer, nil
	case "histogram":
		return event.Histogram, nil
	case "summary":
		return event.Summary, nil
	default:
		return 0, fmt.Errorf("wire: unknown kind %q", s)
	}
}

// WriteEvent encodes e as a length-prefixed msgpack frame onto w.
func WriteEvent(w io.Writer, e event.Event) error {
	body, err := msgpack.Marshal(ToEnvelope(e))
	if err != nil {
		return fmt.Errorf("wire: marshal: %w", err)
	}
	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(body)))
	if _, err := w.Write(lenPrefix[:]); err != nil {
		return fmt.Errorf("wire: write length prefix: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("wire: write body: %w", err)
	}
	return nil
}

// ReadEvent decodes one length-prefixed msgpack frame from r.
func ReadEvent(r io.Reader) (event.Event, error) {
	var lenPrefix [4]byte
	if _, err := io.ReadFull(r, lenPrefix[:]); err != nil {
		return event.Event{}, err
	}
	n := binary.BigEndian.Uint32(lenPrefix[:])
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return event.Event{}, fmt.Errorf("wire: read body: %w", err)
	}

	var env Envelope
	if err := msgpack.Unmarshal(body, &env); err != nil {
		return event.Event{}, fmt.Errorf("wire: unmarshal: %w", err)
	}
	return env.ToEvent()
}
