// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package queue

import (
	"fmt"
	"testing"
	"time"

	"github.com/tomtom215/signalmux/internal/event"
)

func tempDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

func TestSendReceiveInOrder(t *testing.T) {
	dir := tempDir(t)
	sender, receiver, err := Open("sinks.test.order", dir, Options{MemCapacity: 8})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer sender.Close()

	const n = 50
	for i := 0; i < n; i++ {
		ev := event.NewTelemetryEvent(event.NewTelemetry(fmt.Sprintf("m%d", i), float64(i), event.Counter, int64(i), event.Tags{}))
		if err := sender.Send(ev); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	for i := 0; i < n; i++ {
		ev, ok := receiver.Next()
		if !ok {
			t.Fatalf("receiver closed early at %d", i)
		}
		want := fmt.Sprintf("m%d", i)
		if ev.Telemetry.Name != want {
			t.Fatalf("out of order: got %s want %s", ev.Telemetry.Name, want)
		}
	}
}

func TestBackpressureSpillsAndDrains(t *testing.T) {
	dir := tempDir(t)
	// Tiny ring so most of the traffic is forced onto the disk tier.
	sender, receiver, err := Open("sinks.test.backpressure", dir, Options{MemCapacity: 2})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer sender.Close()

	const n = 500
	done := make(chan error, 1)
	go func() {
		for i := 0; i < n; i++ {
			ev := event.NewTelemetryEvent(event.NewTelemetry("m", float64(i), event.Counter, int64(i), event.Tags{}))
			if err := sender.Send(ev); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	received := 0
	timeout := time.After(10 * time.Second)
	for received < n {
		select {
		case ev, ok := <-waitNext(receiver):
			if !ok {
				t.Fatalf("receiver closed early at %d", received)
			}
			if int(ev.Telemetry.Value) != received {
				t.Fatalf("out of order at %d: got %v", received, ev.Telemetry.Value)
			}
			received++
		case <-timeout:
			t.Fatalf("timed out after receiving %d/%d", received, n)
		}
	}

	if err := <-done; err != nil {
		t.Fatalf("producer error: %v", err)
	}
}

// waitNext adapts the blocking Receiver.Next into something select-friendly
// for the test above.
func waitNext(r *Receiver) <-chan struct {
	ev event.Event
	ok bool
} {
	ch := make(chan struct {
		ev event.Event
		ok bool
	}, 1)
	go func() {
		ev, ok := r.Next()
		ch <- struct {
			ev event.Event
			ok bool
		}{ev, ok}
	}()
	return ch
}

func TestDuplicateOpenRejected(t *testing.T) {
	dir := tempDir(t)
	sender, _, err := Open("sinks.test.dup", dir, Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer sender.Close()

	_, _, err = Open("sinks.test.dup", dir, Options{})
	if err != ErrAlreadyOpen {
		t.Fatalf("expected ErrAlreadyOpen, got %v", err)
	}
}

func TestRestartReplaysBacklog(t *testing.T) {
	dir := tempDir(t)
	name := "sinks.test.restart"

	sender, _, err := Open(name, dir, Options{MemCapacity: 1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	const n = 20
	for i := 0; i < n; i++ {
		ev := event.NewTelemetryEvent(event.NewTelemetry("m", float64(i), event.Counter, int64(i), event.Tags{}))
		if err := sender.Send(ev); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	sender.Close()
	// Give the drainer's defer a moment to unregister the name.
	time.Sleep(50 * time.Millisecond)

	sender2, receiver2, err := Open(name, dir, Options{MemCapacity: 1})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer sender2.Close()

	seen := 0
	timeout := time.After(10 * time.Second)
	for seen < n {
		select {
		case res := <-waitNext(receiver2):
			if !res.ok {
				t.Fatalf("closed early at %d", seen)
			}
			if int(res.ev.Telemetry.Value) != seen {
				t.Fatalf("out of order after restart at %d: got %v", seen, res.ev.Telemetry.Value)
			}
			seen++
		case <-timeout:
			t.Fatalf("timed out after replay of %d/%d", seen, n)
		}
	}
}
