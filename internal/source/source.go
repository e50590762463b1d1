// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

// Package source implements the ingress node of spec.md §4.5: a source
// runs its own I/O loop (socket, file tail, poll) and translates bytes
// into Events, fanning each one out to every downstream sender. Sources
// never receive or inject flush ticks themselves — the flush timer
// writes directly into the queues named in the source's forwards
// (spec.md §4.5, §4.6 step 3's "top-level-flush set").
package source

import (
	"github.com/tomtom215/signalmux/internal/event"
	"github.com/tomtom215/signalmux/internal/queue"
)

// Source runs until its I/O loop ends (error, socket closed, context
// canceled) or the process exits.
type Source interface {
	Run()
}

// fanOut writes e to every sender in declaration order, matching the
// same "blocking propagates back-pressure" rule as the filter runtime.
func fanOut(senders []*queue.Sender, e event.Event) error {
	for _, s := range senders {
		if err := s.Send(e); err != nil {
			return err
		}
	}
	return nil
}
