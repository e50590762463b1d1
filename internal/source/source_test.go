// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package source

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/signalmux/internal/queue"
)

func TestParseStatsdLineCounter(t *testing.T) {
	ev, ok := parseStatsdLine("foo:3|c")
	if !ok {
		t.Fatalf("expected parse to succeed")
	}
	if ev.Telemetry.Name != "foo" || ev.Telemetry.Value != 3 || ev.Telemetry.Kind.String() != "counter" {
		t.Fatalf("unexpected parse result: %+v", ev)
	}
}

func TestParseStatsdLineWithSampleRate(t *testing.T) {
	ev, ok := parseStatsdLine("foo:1|c|@0.5")
	if !ok {
		t.Fatalf("expected parse to succeed")
	}
	if ev.Telemetry.SampleRate != 0.5 {
		t.Fatalf("expected sample rate 0.5, got %v", ev.Telemetry.SampleRate)
	}
}

func TestParseStatsdLineRejectsMalformed(t *testing.T) {
	if _, ok := parseStatsdLine("not-a-valid-line"); ok {
		t.Fatalf("expected malformed line to be rejected")
	}
}

func TestParseCarbonLine(t *testing.T) {
	ev, ok := parseCarbonLine("servers.web01.cpu 0.64 1700000000")
	if !ok {
		t.Fatalf("expected parse to succeed")
	}
	if ev.Telemetry.Name != "servers.web01.cpu" || ev.Telemetry.Value != 0.64 || ev.Telemetry.Timestamp != 1700000000 {
		t.Fatalf("unexpected parse result: %+v", ev)
	}
}

func TestInternalSourceEmitsGauges(t *testing.T) {
	dir := t.TempDir()
	sender, receiver, err := queue.Open("sinks.test.internal", dir, queue.Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer sender.Close()

	done := make(chan struct{})
	gauges := []GaugeFunc{{Name: "queue_depth", Value: func() float64 { return 42 }}}
	internal := NewInternal([]*queue.Sender{sender}, 50*time.Millisecond, gauges, zerolog.Nop(), done)
	go internal.Run()
	defer close(done)

	ev, ok := receiver.Next()
	if !ok {
		t.Fatalf("receiver closed early")
	}
	if ev.Telemetry.Name != "queue_depth" || ev.Telemetry.Value != 42 {
		t.Fatalf("unexpected internal metric: %+v", ev)
	}
}
