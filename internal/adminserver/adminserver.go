// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

// Package adminserver exposes the router's own observability surface --
// /healthz and a Prometheus /metrics endpoint -- on a port distinct from
// any data-plane HTTP source (SPEC_FULL.md §2 expansion). Grounded on
// tomtom215-cartographus/internal/api/chi_router.go's
// `r.Handle("/metrics", promhttp.Handler())` registration, trimmed to
// just the two routes this process needs: cartographus's router also
// carries swagger docs, a SPA, and dozens of product routes that have
// no equivalent here.
package adminserver

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server is the admin HTTP surface.
type Server struct {
	addr   string
	log    zerolog.Logger
	server *http.Server
}

// New builds a Server bound to addr, exposing registry through
// /metrics. registry is the same *prometheus.Registry handed to
// internal/sink.Prometheus when that sink is configured, so both share
// one set of registered series; adminserver never mutates it.
func New(addr string, registry *prometheus.Registry, log zerolog.Logger) *Server {
	s := &Server{addr: addr, log: log}

	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	s.server = &http.Server{Addr: addr, Handler: r}
	return s
}

// Run blocks until the server is closed, matching every other node's
// Run() contract so the topology builder can hand it to
// internal/supervisor like a source.
func (s *Server) Run() {
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.log.Error().Err(err).Str("component", "adminserver").Msg("listen failed, fatal")
		panic(err)
	}
}

// Shutdown gracefully stops the server, used by tests and by
// topology.Topology.Close.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
