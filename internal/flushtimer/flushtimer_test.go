// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package flushtimer

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/signalmux/internal/queue"
)

func TestMonotonicAndInOrder(t *testing.T) {
	dir := t.TempDir()
	sender, receiver, err := queue.Open("sinks.test.flush", dir, queue.Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer sender.Close()

	timer := New([]*queue.Sender{sender}, 200*time.Millisecond, zerolog.Nop())
	done := make(chan struct{})
	go timer.Run(done)
	defer close(done)

	var lastEpoch uint64
	haveLast := false
	for i := 0; i < 3; i++ {
		ev, ok := receiver.Next()
		if !ok {
			t.Fatalf("receiver closed early")
		}
		if !ev.IsTimerFlush() {
			t.Fatalf("expected TimerFlush, got %v", ev)
		}
		if haveLast && ev.Epoch < lastEpoch {
			t.Fatalf("epoch decreased: %d -> %d", lastEpoch, ev.Epoch)
		}
		if haveLast && ev.Epoch == lastEpoch {
			t.Fatalf("epoch repeated: %d", ev.Epoch)
		}
		lastEpoch = ev.Epoch
		haveLast = true
	}
}

func TestCurrentEpochFloorsBySeconds(t *testing.T) {
	e1 := currentEpoch(time.Second)
	time.Sleep(10 * time.Millisecond)
	e2 := currentEpoch(time.Second)
	if e2 < e1 {
		t.Fatalf("epoch must never decrease within the same second boundary: %d -> %d", e1, e2)
	}
}
