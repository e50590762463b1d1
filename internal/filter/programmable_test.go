// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package filter

import (
	"testing"

	"github.com/tomtom215/signalmux/internal/event"
	"github.com/tomtom215/signalmux/internal/nodeerr"
)

func TestProgrammableDoublesCounterValue(t *testing.T) {
	script := `
function process(ev, emit)
  if ev.variant == "telemetry" then
    ev.value = ev.value * 2
    emit(ev)
  else
    emit(ev)
  end
end
`
	p, err := NewProgrammable(script)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defer p.Close()

	buf := &Buffer{}
	in := event.NewTelemetryEvent(event.NewTelemetry("m", 21, event.Counter, 0, event.Tags{}))
	if err := p.Process(in, buf); err != nil {
		t.Fatalf("process: %v", err)
	}
	if buf.Len() != 1 {
		t.Fatalf("expected 1 event, got %d", buf.Len())
	}
	if buf.Events()[0].Telemetry.Value != 42 {
		t.Fatalf("expected doubled value 42, got %v", buf.Events()[0].Telemetry.Value)
	}
}

func TestProgrammableMissingProcessRejected(t *testing.T) {
	_, err := NewProgrammable(`local x = 1`)
	if err == nil {
		t.Fatalf("expected error for script without process()")
	}
}

func TestProgrammableFlushPassthrough(t *testing.T) {
	script := `
function process(ev, emit)
  emit(ev)
end
`
	p, err := NewProgrammable(script)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defer p.Close()

	buf := &Buffer{}
	if err := p.Process(event.NewFlushEvent(7), buf); err != nil {
		t.Fatalf("process: %v", err)
	}
	if buf.Len() != 1 || !buf.Events()[0].IsTimerFlush() || buf.Events()[0].Epoch != 7 {
		t.Fatalf("expected flush(7) passthrough, got %v", buf.Events())
	}
}

// TestProgrammableScriptErrorIsNotFatal ports spec.md §7.3's transient
// filter script error: a script that raises at runtime must yield a
// plain error so filter.Runtime drops the offending event and keeps
// running, not a nodeerr.Fatal that would bring down the whole node.
func TestProgrammableScriptErrorIsNotFatal(t *testing.T) {
	script := `
function process(ev, emit)
  error("boom")
end
`
	p, err := NewProgrammable(script)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defer p.Close()

	buf := &Buffer{}
	in := event.NewTelemetryEvent(event.NewTelemetry("m", 1, event.Counter, 0, event.Tags{}))
	err = p.Process(in, buf)
	if err == nil {
		t.Fatalf("expected an error from the failing script")
	}
	if nodeerr.IsFatal(err) {
		t.Fatalf("script runtime error must be transient, got fatal: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no emitted events on script error, got %d", buf.Len())
	}
}
