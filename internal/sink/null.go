// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package sink

import "github.com/tomtom215/signalmux/internal/event"

// Null discards every event. Useful for topology testing and for
// filters/sources whose output should be exercised but not persisted.
type Null struct{}

func (Null) Deliver(event.Event) error { return nil }
func (Null) Flush(uint64) error        { return nil }
