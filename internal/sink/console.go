// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package sink

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/tomtom215/signalmux/internal/event"
)

// Console aggregates telemetry and emits one human-readable line per
// series per flush, styled with the teacher's zerolog.ConsoleWriter
// pattern (internal/logging); logs pass through immediately since they
// are not aggregatable.
type Console struct {
	agg *aggregator
	w   zerolog.Logger
}

// NewConsole builds a Console sink writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{
		agg: newAggregator(),
		w:   zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}).With().Timestamp().Logger(),
	}
}

func (c *Console) Deliver(e event.Event) error {
	switch e.Variant {
	case event.VariantTelemetry:
		c.agg.absorb(e.Telemetry)
	case event.VariantLog:
		c.w.Info().Str("path", e.Log.Path).Str("payload", e.Log.Payload).Msg("log")
	}
	return nil
}

func (c *Console) Flush(epoch uint64) error {
	for _, s := range c.agg.drain() {
		c.w.Info().Str("metric", s.name).Str("kind", s.kind.String()).
			Float64("value", s.value).Uint64("epoch", epoch).Msg("flush")
	}
	return nil
}
