// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package filter

import (
	"testing"

	"github.com/tomtom215/signalmux/internal/event"
)

func processAll(f Filter, in []event.Event) []event.Event {
	var out []event.Event
	buf := &Buffer{}
	for _, e := range in {
		buf.Reset()
		if err := f.Process(e, buf); err != nil {
			continue
		}
		out = append(out, buf.Events()...)
	}
	return out
}

func TestDenyLogsExactSequence(t *testing.T) {
	m1 := event.NewTelemetryEvent(event.NewTelemetry("m1", 1, event.Counter, 0, event.Tags{}))
	l1 := event.NewLogEvent(event.Log{Path: "l1"})
	m2 := event.NewTelemetryEvent(event.NewTelemetry("m2", 2, event.Counter, 0, event.Tags{}))
	flush := event.NewFlushEvent(5)

	out := processAll(DenyLogs{}, []event.Event{m1, l1, m2, flush})

	if len(out) != 3 {
		t.Fatalf("expected 3 events, got %d: %v", len(out), out)
	}
	if out[0].Telemetry.Name != "m1" || out[1].Telemetry.Name != "m2" || !out[2].IsTimerFlush() || out[2].Epoch != 5 {
		t.Fatalf("unexpected sequence: %v", out)
	}
}

func TestDenyTelemetryDropsOnlyTelemetry(t *testing.T) {
	m1 := event.NewTelemetryEvent(event.NewTelemetry("m1", 1, event.Counter, 0, event.Tags{}))
	l1 := event.NewLogEvent(event.Log{Path: "l1"})
	flush := event.NewFlushEvent(1)

	out := processAll(DenyTelemetry{}, []event.Event{m1, l1, flush})

	if len(out) != 2 {
		t.Fatalf("expected 2 events, got %d: %v", len(out), out)
	}
	if !out[0].IsLog() || !out[1].IsTimerFlush() {
		t.Fatalf("unexpected sequence: %v", out)
	}
}

func TestDenyLogsIsIdempotentAcrossRepeatedInputs(t *testing.T) {
	in := []event.Event{
		event.NewLogEvent(event.Log{Path: "a"}),
		event.NewLogEvent(event.Log{Path: "b"}),
	}
	if out := processAll(DenyLogs{}, in); len(out) != 0 {
		t.Fatalf("expected all logs dropped, got %v", out)
	}

	// Running the filter a second time over its own output changes nothing.
	mixed := []event.Event{
		event.NewTelemetryEvent(event.NewTelemetry("m1", 1, event.Counter, 0, event.Tags{})),
		event.NewLogEvent(event.Log{Path: "l1"}),
		event.NewFlushEvent(3),
	}
	once := processAll(DenyLogs{}, mixed)
	twice := processAll(DenyLogs{}, once)
	if len(once) != len(twice) {
		t.Fatalf("second pass changed output length: %d -> %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].String() != twice[i].String() {
			t.Fatalf("second pass changed event %d: %v -> %v", i, once[i], twice[i])
		}
	}
}
