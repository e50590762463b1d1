// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package source

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/signalmux/internal/event"
	"github.com/tomtom215/signalmux/internal/queue"
)

// HTTPWebhook accepts POSTed JSON telemetry batches, for push-style
// integrations that can't speak statsd/graphite (SPEC_FULL.md §4.5
// expansion). Routed with go-chi, the same router family the admin
// surface uses, with CORS and per-IP rate limiting middleware from the
// same chi ecosystem.
type HTTPWebhook struct {
	addr    string
	senders []*queue.Sender
	log     zerolog.Logger
	server  *http.Server
}

type webhookSample struct {
	Name       string            `json:"name"`
	Value      float64           `json:"value"`
	Kind       string            `json:"kind"`
	SampleRate float64           `json:"sample_rate"`
	Timestamp  int64             `json:"timestamp"`
	Tags       map[string]string `json:"tags"`
}

func NewHTTPWebhook(addr string, senders []*queue.Sender, log zerolog.Logger) *HTTPWebhook {
	h := &HTTPWebhook{addr: addr, senders: senders, log: log}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"POST"},
	}))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Post("/v1/telemetry", h.handleTelemetry)

	h.server = &http.Server{Addr: addr, Handler: r}
	return h
}

func (h *HTTPWebhook) Run() {
	if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		h.log.Error().Err(err).Str("source", "http_webhook").Msg("listen failed, fatal")
		panic(err)
	}
}

func (h *HTTPWebhook) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	var batch []webhookSample
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	for _, s := range batch {
		kind, ok := kindFromWire(s.Kind)
		if !ok {
			http.Error(w, "unknown metric kind: "+s.Kind, http.StatusBadRequest)
			return
		}
		t := event.NewTelemetry(s.Name, s.Value, kind, s.Timestamp, event.NewTags(s.Tags))
		if s.SampleRate > 0 {
			t.SampleRate = s.SampleRate
		}
		if err := fanOut(h.senders, event.NewTelemetryEvent(t)); err != nil {
			h.log.Error().Err(err).Str("source", "http_webhook").Msg("downstream queue gone, fatal")
			panic(err)
		}
	}
	w.WriteHeader(http.StatusAccepted)
}

func kindFromWire(s string) (event.Kind, bool) {
	switch s {
	case "gauge-set":
		return event.GaugeSet, true
	case "gauge-delta":
		return event.GaugeDelta, true
	case "counter":
		return event.Counter, true
	case "timer":
		return event.Timer, true
	case "histogram":
		return event.Histogram, true
	case "summary":
		return event.Summary, true
	default:
		return 0, false
	}
}
