// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package sink

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/signalmux/internal/event"
	"github.com/tomtom215/signalmux/internal/nodeerr"
	"github.com/tomtom215/signalmux/internal/queue"
)

// countingSink fails Flush a fixed number of times before succeeding,
// and records every call so tests can assert retry/breaker behavior.
type countingSink struct {
	failures   int
	flushCalls int
}

func (s *countingSink) Deliver(event.Event) error { return nil }

func (s *countingSink) Flush(uint64) error {
	s.flushCalls++
	if s.flushCalls <= s.failures {
		return errors.New("transient flush failure")
	}
	return nil
}

func openSinkQueue(t *testing.T, name string) (*queue.Sender, *queue.Receiver) {
	t.Helper()
	sender, receiver, err := queue.Open(name, t.TempDir(), queue.Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return sender, receiver
}

func TestRuntimeRetriesTransientFlushFailures(t *testing.T) {
	sender, receiver := openSinkQueue(t, "sinks.retry-test")
	defer sender.Close()

	s := &countingSink{failures: 2}
	rt := &Runtime{Name: "retry-test", Sink: s, Input: receiver, Log: zerolog.Nop()}

	done := make(chan struct{})
	go func() {
		rt.Run()
		close(done)
	}()

	if err := sender.Send(event.NewFlushEvent(1)); err != nil {
		t.Fatalf("send: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for s.flushCalls < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected 3 flush attempts, got %d", s.flushCalls)
		case <-time.After(10 * time.Millisecond):
		}
	}

	sender.Close()
	<-done
}

func TestRuntimePanicsOnFatalFlushError(t *testing.T) {
	sender, receiver := openSinkQueue(t, "sinks.fatal-test")
	defer sender.Close()

	s := &fatalFlushSink{}
	rt := &Runtime{Name: "fatal-test", Sink: s, Input: receiver, Log: zerolog.Nop()}

	panicked := make(chan struct{})
	go func() {
		defer func() {
			if recover() != nil {
				close(panicked)
			}
		}()
		rt.Run()
	}()

	if err := sender.Send(event.NewFlushEvent(1)); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case <-panicked:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected Run to panic on fatal flush error")
	}
}

type fatalFlushSink struct{}

func (fatalFlushSink) Deliver(event.Event) error { return nil }
func (fatalFlushSink) Flush(uint64) error        { return nodeerr.Fatal(errors.New("unrecoverable")) }
