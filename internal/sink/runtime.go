// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package sink

import (
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/signalmux/internal/nodeerr"
	"github.com/tomtom215/signalmux/internal/queue"
)

const (
	maxFlushAttempts    = 5
	initialFlushBackoff = 50 * time.Millisecond
	maxFlushBackoff     = 5 * time.Second
)

// Runtime drives a Sink: data events go to Deliver, TimerFlush(e)
// triggers Flush(e) with bounded exponential-backoff retry. Events
// unflushed after retry exhaustion are dropped with a logged counter
// increment (spec.md §4.4).
type Runtime struct {
	Name    string
	Sink    Sink
	Input   *queue.Receiver
	Log     zerolog.Logger
	Dropped func() // optional hook incrementing a dropped-flush counter

	// Breaker, if non-nil, wraps each Flush attempt so repeated
	// destination failures fail fast instead of burning the retry
	// budget against a dead endpoint (spec.md §4.4 expansion). Sinks
	// with no outbound I/O (Null, Console) leave this nil.
	Breaker *gobreaker.CircuitBreaker[any]
}

// Run blocks until the input queue closes or a Deliver/Flush call
// returns a fatal error, in which case it panics so the owning
// supervisor wrapper can classify the panic as fatal (spec.md §7.4).
func (r *Runtime) Run() {
	for {
		e, ok := r.Input.Next()
		if !ok {
			r.Log.Info().Str("sink", r.Name).Msg("input queue closed, sink stopping")
			return
		}

		if e.IsTimerFlush() {
			r.runFlush(e.Epoch)
			continue
		}

		if err := r.Sink.Deliver(e); err != nil {
			if nodeerr.IsFatal(err) {
				r.Log.Error().Err(err).Str("sink", r.Name).Msg("fatal sink error")
				panic(err)
			}
			r.Log.Warn().Err(err).Str("sink", r.Name).Msg("transient deliver error, dropping event")
		}
	}
}

func (r *Runtime) runFlush(epoch uint64) {
	backoff := initialFlushBackoff
	var lastErr error
	for attempt := 0; attempt < maxFlushAttempts; attempt++ {
		if r.Breaker != nil {
			lastErr = Guard(r.Breaker, func() error { return r.Sink.Flush(epoch) })
		} else {
			lastErr = r.Sink.Flush(epoch)
		}
		if lastErr == nil {
			return
		}
		if nodeerr.IsFatal(lastErr) {
			r.Log.Error().Err(lastErr).Str("sink", r.Name).Uint64("epoch", epoch).Msg("fatal flush error")
			panic(lastErr)
		}
		r.Log.Warn().Err(lastErr).Str("sink", r.Name).Uint64("epoch", epoch).
			Int("attempt", attempt).Msg("flush failed, retrying")
		time.Sleep(backoff)
		backoff *= 2
		if backoff > maxFlushBackoff {
			backoff = maxFlushBackoff
		}
	}

	r.Log.Error().Err(lastErr).Str("sink", r.Name).Uint64("epoch", epoch).
		Msg("flush retries exhausted, dropping window")
	if r.Dropped != nil {
		r.Dropped()
	}
}
