// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package wire

import (
	"bytes"
	"testing"

	"github.com/tomtom215/signalmux/internal/event"
)

func TestRoundTripTelemetry(t *testing.T) {
	var buf bytes.Buffer
	in := event.NewTelemetryEvent(event.NewTelemetry("m", 1.5, event.Counter, 42, event.NewTags(map[string]string{"a": "1"})))
	if err := WriteEvent(&buf, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := ReadEvent(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if out.Telemetry.Name != "m" || out.Telemetry.Value != 1.5 || out.Telemetry.Kind != event.Counter {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestRoundTripFlush(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEvent(&buf, event.NewFlushEvent(9)); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := ReadEvent(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !out.IsTimerFlush() || out.Epoch != 9 {
		t.Fatalf("expected flush(9), got %+v", out)
	}
}

func TestMultipleFramesInSequence(t *testing.T) {
	var buf bytes.Buffer
	events := []event.Event{
		event.NewTelemetryEvent(event.NewTelemetry("a", 1, event.Counter, 0, event.Tags{})),
		event.NewLogEvent(event.Log{Path: "p", Payload: "hello"}),
		event.NewFlushEvent(1),
	}
	for _, e := range events {
		if err := WriteEvent(&buf, e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	for i := range events {
		out, err := ReadEvent(&buf)
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if out.Variant != events[i].Variant {
			t.Fatalf("frame %d: variant mismatch", i)
		}
	}
}
