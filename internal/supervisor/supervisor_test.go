// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package supervisor

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestTreeRunsAndStopsOnContextCancel(t *testing.T) {
	tree := New("test", zerolog.Nop())

	started := make(chan struct{})
	tree.Add("worker", func() {
		close(started) // run-to-completion node; not blocked on ctx (spec.md §5: "no per-operation cancellation")
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tree.Run(ctx) }()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatalf("worker never started")
	}

	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("tree did not stop after context cancel")
	}
}
