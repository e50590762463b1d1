// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package filter

import "github.com/tomtom215/signalmux/internal/event"

// DenyTelemetry passes Log and TimerFlush through unchanged and drops
// every Telemetry event, ported from
// _examples/original_source/src/filter/deny_telemetry_filter.rs per
// spec.md §4.3 (the Rust sources for deny-logs and deny-telemetry are
// near-identical; spec.md's prose description, not the literal Rust
// body, is what each filter's behavior is grounded on here).
type DenyTelemetry struct{}

func (DenyTelemetry) Process(e event.Event, out *Buffer) error {
	if e.IsTelemetry() {
		return nil
	}
	out.Emit(e)
	return nil
}
