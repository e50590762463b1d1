// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package source

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/signalmux/internal/event"
	"github.com/tomtom215/signalmux/internal/queue"
)

// GaugeFunc names a single router-internal metric and how to sample its
// current value. Used by Internal to report router metrics without the
// measured components depending on internal/source directly; the
// topology builder supplies one queue-depth gauge per open queue and no
// others.
type GaugeFunc struct {
	Name  string
	Value func() float64
}

// Internal is the mandatory telemetry source of spec.md §6's `internal`
// config section: it emits the router's own operational metrics (every
// gauge it is given; the topology builder gives it queue depths only) on
// a fixed interval,
// grounded on the teacher's promauto-registered gauge pattern
// (internal/metrics/metrics.go) but sampled into the router's own event
// model instead of a separate Prometheus registry, so it flows through
// the same topology as any other source.
type Internal struct {
	senders  []*queue.Sender
	interval time.Duration
	gauges   []GaugeFunc
	log      zerolog.Logger
	done     <-chan struct{}
}

// NewInternal builds the internal source. done should be closed at
// process shutdown to stop the sampling loop.
func NewInternal(senders []*queue.Sender, interval time.Duration, gauges []GaugeFunc, log zerolog.Logger, done <-chan struct{}) *Internal {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Internal{senders: senders, interval: interval, gauges: gauges, log: log, done: done}
}

func (s *Internal) Run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now().Unix()
			for _, g := range s.gauges {
				ev := event.NewTelemetryEvent(event.NewTelemetry(g.Name, g.Value(), event.GaugeSet, now, event.Tags{}))
				if err := fanOut(s.senders, ev); err != nil {
					s.log.Error().Err(err).Str("source", "internal").Msg("downstream queue gone, fatal")
					panic(err)
				}
			}
		case <-s.done:
			s.log.Info().Str("source", "internal").Msg("stopping")
			return
		}
	}
}
