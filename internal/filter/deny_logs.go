// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package filter

import "github.com/tomtom215/signalmux/internal/event"

// DenyLogs passes Telemetry and TimerFlush through unchanged and drops
// every Log event, ported from
// _examples/original_source/src/filter/deny_logs_filter.rs per spec.md
// §4.3.
type DenyLogs struct{}

func (DenyLogs) Process(e event.Event, out *Buffer) error {
	if e.IsLog() {
		return nil
	}
	out.Emit(e)
	return nil
}
