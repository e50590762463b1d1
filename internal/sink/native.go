// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package sink

import (
	"fmt"
	"net"

	"github.com/tomtom215/signalmux/internal/event"
	"github.com/tomtom215/signalmux/internal/wire"
)

// Native republishes every event over a TCP connection using
// signalmux's own binary wire format (internal/wire), the sink-side
// role of spec.md §1's "native wire format" codec pair, non-aggregating
// like NATSBridge since it mirrors the raw stream.
type Native struct {
	conn net.Conn
}

// NewNative wraps an already-dialed connection; it does no dialing or
// reconnecting itself (the topology builder dials the address once).
func NewNative(conn net.Conn) *Native {
	return &Native{conn: conn}
}

func (n *Native) Deliver(e event.Event) error {
	if err := wire.WriteEvent(n.conn, e); err != nil {
		return fmt.Errorf("native sink: %w", err)
	}
	return nil
}

// Flush is a no-op: Native writes immediately in Deliver.
func (n *Native) Flush(uint64) error { return nil }
