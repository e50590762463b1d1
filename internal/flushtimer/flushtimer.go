// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

// Package flushtimer implements the single wall-clock-phased flush
// producer described in spec.md §4.2: one background goroutine that emits
// TimerFlush(e) into the top-level-flush set once per interval, with e
// aligned to the Unix epoch so independently-running processes sharing an
// interval flush in phase.
package flushtimer

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/signalmux/internal/event"
	"github.com/tomtom215/signalmux/internal/queue"
)

// Timer emits TimerFlush(e) to a fixed set of Sender handles, in
// declaration order, once per Interval.
type Timer struct {
	senders  []*queue.Sender
	interval time.Duration
	log      zerolog.Logger

	lastEpoch uint64
	haveLast  bool
}

// New builds a Timer over senders, which is the ordered top-level-flush
// set assembled by the topology builder (spec.md §4.6 step 3).
func New(senders []*queue.Sender, interval time.Duration, log zerolog.Logger) *Timer {
	return &Timer{senders: senders, interval: interval, log: log}
}

// Run drives the timer until done is closed. It never returns epochs out
// of order: a slow wakeup that lands on the same epoch as the last emitted
// one is skipped, and a backward clock jump is suppressed until the wall
// clock advances past the last emitted epoch again (spec.md §4.2, §7
// "Clock anomalies").
func (t *Timer) Run(done <-chan struct{}) {
	ticker := time.NewTicker(tickPeriod(t.interval))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.tick()
		case <-done:
			return
		}
	}
}

// tickPeriod samples the clock more often than the flush interval itself
// so the epoch boundary is caught close to when it rolls over, without
// depending on the process waking at an exact instant.
func tickPeriod(interval time.Duration) time.Duration {
	p := interval / 10
	if p < 50*time.Millisecond {
		p = 50 * time.Millisecond
	}
	if p > interval {
		p = interval
	}
	return p
}

func (t *Timer) tick() {
	epoch := currentEpoch(t.interval)

	if t.haveLast && epoch <= t.lastEpoch {
		// Slow wakeup (epoch unchanged) or a backward clock jump (epoch
		// less than what we already emitted): suppress per spec.md §4.2.
		return
	}

	for i, s := range t.senders {
		if err := s.Send(event.NewFlushEvent(epoch)); err != nil {
			t.log.Error().Err(err).Int("sender_index", i).Uint64("epoch", epoch).
				Msg("flush timer: send failed, downstream queue is gone")
		}
	}

	t.lastEpoch = epoch
	t.haveLast = true
}

// currentEpoch computes floor(now_seconds / interval_seconds), matching
// spec.md §4.2's phase-locking contract exactly.
func currentEpoch(interval time.Duration) uint64 {
	nowSeconds := time.Now().Unix()
	intervalSeconds := int64(interval / time.Second)
	if intervalSeconds <= 0 {
		intervalSeconds = 1
	}
	return uint64(nowSeconds / intervalSeconds)
}
