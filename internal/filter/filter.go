// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

// Package filter implements the pluggable transform node of spec.md §4.3:
// a filter consumes one input queue and appends zero or more events per
// input to a caller-owned scratch buffer, which the runtime then forwards
// to every downstream sender in declaration order.
package filter

import (
	"github.com/tomtom215/signalmux/internal/event"
)

// Buffer is the growable, caller-owned output sequence a Filter appends
// to during Process. The runtime clears it before every call.
type Buffer struct {
	events []event.Event
}

// Emit appends e to the buffer.
func (b *Buffer) Emit(e event.Event) {
	b.events = append(b.events, e)
}

// Len reports how many events are currently buffered.
func (b *Buffer) Len() int { return len(b.events) }

// Events returns the buffered events. The slice is only valid until the
// next Reset.
func (b *Buffer) Events() []event.Event { return b.events }

// Reset clears the buffer for reuse, keeping its backing array.
func (b *Buffer) Reset() { b.events = b.events[:0] }

// Filter transforms one input event into zero or more output events.
// Process must be deterministic given the filter's internal state and
// its input (spec.md §4.3). A transient error drops the input event; an
// error wrapped with nodeerr.Fatal terminates the node.
type Filter interface {
	Process(e event.Event, out *Buffer) error
}
