// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package topology

import (
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/signalmux/internal/config"
	"github.com/tomtom215/signalmux/internal/event"
	"github.com/tomtom215/signalmux/internal/flushtimer"
	"github.com/tomtom215/signalmux/internal/queue"
	"github.com/tomtom215/signalmux/internal/sink"
)

// TestUnresolvedForwardRejectedBeforeAnyQueueOpened ports spec.md §8
// scenario 5: a source forwarding to a sink that was never declared is
// a configuration error, and because no sink exists to open a queue
// for in the first place, Build fails before creating anything under
// the data directory.
func TestUnresolvedForwardRejectedBeforeAnyQueueOpened(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		DataDirectory: dir,
		FlushInterval: time.Second,
		Sinks:         map[string]config.SinkConfig{},
		Filters:       map[string]config.FilterConfig{},
		Sources: map[string]map[string]config.SourceConfig{
			"statsd": {
				"bad": config.SourceConfig{
					ConfigPath: "sources.statsd.bad",
					Kind:       "statsd",
					Forwards:   []string{"sinks.nonexistent"},
				},
			},
		},
		Internal: config.InternalConfig{Forwards: []string{"sinks.nonexistent"}},
	}

	if _, err := Build(cfg, zerolog.Nop()); err == nil {
		t.Fatalf("expected Build to reject the unresolved forward")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no queue files under data directory, found %v", entries)
	}
}

// recordingSink records every Flush call's epoch, regardless of
// whether anything was ever delivered.
type recordingSink struct {
	flushed chan uint64
}

func (r *recordingSink) Deliver(event.Event) error { return nil }
func (r *recordingSink) Flush(epoch uint64) error {
	r.flushed <- epoch
	return nil
}

// TestSilentSourceStillFlushes ports spec.md §8 scenario 6: a sink
// downstream of a source that never sends anything still receives
// periodic flushes, because the flush timer drives the top-level-flush
// set directly and is never gated on source traffic.
func TestSilentSourceStillFlushes(t *testing.T) {
	dir := t.TempDir()
	sender, receiver, err := queue.Open("sinks.silent-test", dir, queue.Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer sender.Close()

	rs := &recordingSink{flushed: make(chan uint64, 8)}
	rt := &sink.Runtime{Name: "silent-test", Sink: rs, Input: receiver, Log: zerolog.Nop()}
	go rt.Run()

	timer := flushtimer.New([]*queue.Sender{sender}, 200*time.Millisecond, zerolog.Nop())
	done := make(chan struct{})
	defer close(done)
	go timer.Run(done)

	select {
	case <-rs.flushed:
	case <-time.After(3 * time.Second):
		t.Fatalf("expected at least one flush despite no source traffic")
	}
}
