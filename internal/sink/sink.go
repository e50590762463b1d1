// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

// Package sink implements the pluggable aggregation-and-emit node of
// spec.md §4.4: a sink absorbs data events into internal state via
// Deliver and emits everything accumulated for a window via Flush(epoch)
// when the runtime observes a TimerFlush.
package sink

import "github.com/tomtom215/signalmux/internal/event"

// Sink is expected to be aggregating: counters summed, gauges
// collapsed, histograms merged, logs batched, so a Flush call emits at
// most one outbound request per window per destination (spec.md §4.4).
//
// Deliver must not block indefinitely; long I/O belongs in Flush. A
// transient error from either method is logged and (for Flush) retried
// with backoff; an error wrapped with nodeerr.Fatal terminates the node.
type Sink interface {
	Deliver(e event.Event) error
	Flush(epoch uint64) error
}
