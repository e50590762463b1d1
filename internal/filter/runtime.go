// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package filter

import (
	"github.com/rs/zerolog"

	"github.com/tomtom215/signalmux/internal/event"
	"github.com/tomtom215/signalmux/internal/nodeerr"
	"github.com/tomtom215/signalmux/internal/queue"
)

// Runtime drives a Filter: pull from Input, clear the scratch buffer,
// call Process, forward every appended event to each sender in
// Forwards in declaration order (spec.md §4.3).
type Runtime struct {
	Name     string
	Filter   Filter
	Input    *queue.Receiver
	Forwards []*queue.Sender
	Log      zerolog.Logger
}

// Run blocks until the input queue closes or Process returns a fatal
// error, in which case it panics so the owning supervisor wrapper can
// classify the panic as fatal (spec.md §4.6 step 6, §7.4).
func (r *Runtime) Run() {
	buf := &Buffer{}
	for {
		e, ok := r.Input.Next()
		if !ok {
			r.Log.Info().Str("filter", r.Name).Msg("input queue closed, filter stopping")
			return
		}

		buf.Reset()
		if err := r.Filter.Process(e, buf); err != nil {
			if nodeerr.IsFatal(err) {
				r.Log.Error().Err(err).Str("filter", r.Name).Msg("fatal filter error")
				panic(err)
			}
			r.Log.Warn().Err(err).Str("filter", r.Name).Msg("transient filter error, dropping input")
			continue
		}

		for _, out := range buf.Events() {
			for _, sender := range r.Forwards {
				if err := sender.Send(out); err != nil {
					r.Log.Error().Err(err).Str("filter", r.Name).Msg("downstream queue gone, fatal")
					panic(err)
				}
			}
		}
	}
}
