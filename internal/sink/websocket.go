// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package sink

import (
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/signalmux/internal/event"
)

// WebSocket aggregates telemetry and fans one JSON frame per window out
// to every currently connected client (SPEC_FULL.md §4.4 expansion).
// Clients register/unregister from the owning HTTP handler via
// Register/Unregister.
type WebSocket struct {
	agg *aggregator

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewWebSocket() *WebSocket {
	return &WebSocket{agg: newAggregator(), clients: make(map[*websocket.Conn]struct{})}
}

// Register adds a client connection to the fan-out set.
func (w *WebSocket) Register(c *websocket.Conn) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clients[c] = struct{}{}
}

// Unregister removes a client connection, e.g. after it disconnects.
func (w *WebSocket) Unregister(c *websocket.Conn) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.clients, c)
}

func (w *WebSocket) Deliver(e event.Event) error {
	if !e.IsTelemetry() {
		return nil
	}
	w.agg.absorb(e.Telemetry)
	return nil
}

type frameSeries struct {
	Name  string  `json:"name"`
	Kind  string  `json:"kind"`
	Value float64 `json:"value"`
}

func (w *WebSocket) Flush(epoch uint64) error {
	series := w.agg.drain()
	if len(series) == 0 {
		return nil
	}

	frame := struct {
		Epoch  uint64        `json:"epoch"`
		Series []frameSeries `json:"series"`
	}{Epoch: epoch}
	for _, s := range series {
		frame.Series = append(frame.Series, frameSeries{Name: s.name, Kind: s.kind.String(), Value: s.value})
	}

	payload, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("websocket sink: marshal frame: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	var firstErr error
	for c := range w.clients {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("websocket sink: write to client: %w", err)
		}
	}
	return firstErr
}
