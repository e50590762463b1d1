// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package sink

import "github.com/tomtom215/signalmux/internal/event"

// series is the per-tag-set accumulator shared by every aggregating
// sink: counters and gauge-deltas sum, gauge-sets overwrite, everything
// else (timer/histogram/summary) keeps the most recent sample — a
// minimal merge policy a concrete sink may refine, matching spec.md
// §4.4 "sinks are expected to be aggregating".
type series struct {
	name  string
	kind  event.Kind
	tags  event.Tags
	value float64
}

// aggregator accumulates Telemetry samples keyed by name plus the
// canonical tag serialization (Tags.Serialize), ready to be drained on
// Flush.
type aggregator struct {
	state map[string]*series
}

func newAggregator() *aggregator {
	return &aggregator{state: make(map[string]*series)}
}

func seriesKey(name string, tags event.Tags) string {
	return name + "\x00" + tags.Serialize()
}

func (a *aggregator) absorb(t event.Telemetry) {
	key := seriesKey(t.Name, t.Tags)
	s, ok := a.state[key]
	if !ok {
		s = &series{name: t.Name, kind: t.Kind, tags: t.Tags}
		a.state[key] = s
	}
	if t.Kind.Additive() {
		s.value += t.Value
	} else {
		s.value = t.Value
		s.kind = t.Kind
	}
}

// drain returns every accumulated series and resets the aggregator for
// the next window.
func (a *aggregator) drain() []series {
	out := make([]series, 0, len(a.state))
	for _, s := range a.state {
		out = append(out, *s)
	}
	a.state = make(map[string]*series)
	return out
}
