// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

// Package event defines the tagged value that traverses every queue in the
// routing topology: telemetry samples, log lines, and flush markers.
package event

import "fmt"

// Kind enumerates the telemetry sample kinds.
type Kind int

const (
	GaugeSet Kind = iota
	GaugeDelta
	Counter
	Timer
	Histogram
	Summary
)

func (k Kind) String() string {
	switch k {
	case GaugeSet:
		return "gauge-set"
	case GaugeDelta:
		return "gauge-delta"
	case Counter:
		return "counter"
	case Timer:
		return "timer"
	case Histogram:
		return "histogram"
	case Summary:
		return "summary"
	default:
		return "unknown"
	}
}

// Additive reports whether values of this kind accumulate within a window
// (counter, gauge-delta) as opposed to last-write-wins (gauge-set).
func (k Kind) Additive() bool {
	return k == Counter || k == GaugeDelta
}

// Telemetry is a single metric sample.
type Telemetry struct {
	Name       string
	Value      float64
	Kind       Kind
	SampleRate float64
	Timestamp  int64
	Tags       Tags
}

// NewTelemetry builds a Telemetry with the spec-mandated default sample rate.
func NewTelemetry(name string, value float64, kind Kind, timestamp int64, tags Tags) Telemetry {
	return Telemetry{
		Name:       name,
		Value:      value,
		Kind:       kind,
		SampleRate: 1.0,
		Timestamp:  timestamp,
		Tags:       tags,
	}
}

// Log is a single log line.
type Log struct {
	Path      string
	Payload   string
	Timestamp int64
	Tags      Tags
}

// Variant tags which alternative of Event is populated.
type Variant int

const (
	VariantTelemetry Variant = iota
	VariantLog
	VariantTimerFlush
)

// Event is the tagged union carried on every queue: exactly one of
// Telemetry, Log is meaningful when Variant is VariantTelemetry or
// VariantLog respectively; Epoch is meaningful when Variant is
// VariantTimerFlush.
type Event struct {
	Variant   Variant
	Telemetry Telemetry
	Log       Log
	Epoch     uint64
}

// NewTelemetryEvent wraps a Telemetry sample as an Event.
func NewTelemetryEvent(t Telemetry) Event {
	return Event{Variant: VariantTelemetry, Telemetry: t}
}

// NewLogEvent wraps a Log line as an Event.
func NewLogEvent(l Log) Event {
	return Event{Variant: VariantLog, Log: l}
}

// NewFlushEvent builds a TimerFlush marker for the given epoch.
func NewFlushEvent(epoch uint64) Event {
	return Event{Variant: VariantTimerFlush, Epoch: epoch}
}

func (e Event) IsTelemetry() bool  { return e.Variant == VariantTelemetry }
func (e Event) IsLog() bool        { return e.Variant == VariantLog }
func (e Event) IsTimerFlush() bool { return e.Variant == VariantTimerFlush }

func (e Event) String() string {
	switch e.Variant {
	case VariantTelemetry:
		return fmt.Sprintf("Telemetry(%s=%v %s)", e.Telemetry.Name, e.Telemetry.Value, e.Telemetry.Kind)
	case VariantLog:
		return fmt.Sprintf("Log(%s)", e.Log.Path)
	case VariantTimerFlush:
		return fmt.Sprintf("TimerFlush(%d)", e.Epoch)
	default:
		return "Event(invalid)"
	}
}
