// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

// Package topology implements spec.md §4.6's topology builder: the
// six-step procedure that turns a parsed config.Config into a running
// graph of sources, filters, and sinks joined by durable queues, plus
// the flush timer and clock updater, all under one supervisor.Tree.
package topology

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/tomtom215/signalmux/internal/adminserver"
	"github.com/tomtom215/signalmux/internal/clock"
	"github.com/tomtom215/signalmux/internal/config"
	"github.com/tomtom215/signalmux/internal/filter"
	"github.com/tomtom215/signalmux/internal/flushtimer"
	"github.com/tomtom215/signalmux/internal/queue"
	"github.com/tomtom215/signalmux/internal/sink"
	"github.com/tomtom215/signalmux/internal/source"
	"github.com/tomtom215/signalmux/internal/supervisor"
)

// AdminAddr is the bind address for internal/adminserver's /healthz and
// /metrics, distinct from any data-plane HTTP source's own address
// (SPEC_FULL.md §2 expansion).
const AdminAddr = ":9090"

// Topology owns every live resource the builder created, so Run can
// join them and Close can tear them down in tests.
type Topology struct {
	tree  *supervisor.Tree
	clock *clock.Cache
	done  chan struct{}
	admin *adminserver.Server
}

// Close shuts down resources Run's context-cancel path doesn't reach:
// the admin HTTP server does not observe the topology's done channel
// (spec.md's node model has no per-operation cancellation -- see
// internal/supervisor's doc comment), so tests that build a Topology
// without running the full process lifetime call Close explicitly.
func (t *Topology) Close(ctx context.Context) error {
	return t.admin.Shutdown(ctx)
}

// Build implements spec.md §4.6's procedure exactly in order: sinks,
// then filters (resolved against sinks and already-built filters),
// then sources (resolved against sinks and filters, accumulating the
// top-level-flush set), then the flush timer, then the clock updater.
// An unresolved forward at any step is a configuration error: Build
// returns it rather than partially starting the topology.
//
// Deviation from a literal reading of spec.md's "processes filter specs
// in configuration order": config.Config.Filters is a Go map (JSON/YAML
// objects have no ordering Go preserves), so declaration order doesn't
// exist to process in. Build instead resolves filters in dependency
// order via repeated passes (a filter becomes eligible once everything
// it forwards to exists), which accepts exactly the filter graphs the
// spec's config-order rule would have accepted -- a DAG over
// already-created nodes -- without relying on map iteration order.
func Build(cfg *config.Config, log zerolog.Logger) (*Topology, error) {
	tree := supervisor.New("signalmux", log)
	senders := make(map[string]*queue.Sender)
	registry := prometheus.NewRegistry()
	done := make(chan struct{})

	if err := buildSinks(cfg, senders, registry, tree, log); err != nil {
		return nil, err
	}
	if err := buildFilters(cfg, senders, tree, log); err != nil {
		return nil, err
	}

	flushSenders, err := buildSources(cfg, senders, tree, log, done)
	if err != nil {
		return nil, err
	}

	timer := flushtimer.New(flushSenders, cfg.FlushInterval, log)
	tree.Add("flush-timer", func() { timer.Run(done) })

	clk := clock.New()
	tree.Add("clock", func() { clk.Run(done) })

	admin := adminserver.New(AdminAddr, registry, log)
	tree.Add("adminserver", admin.Run)

	t := &Topology{tree: tree, clock: clk, done: done, admin: admin}
	return t, nil
}

// Run blocks until ctx is canceled or a node panics (which is fatal:
// supervisor.Tree.Fatal logs and calls os.Exit(1) before this returns).
func (t *Topology) Run(ctx context.Context) error {
	defer close(t.done)
	return t.tree.Run(ctx)
}

func buildSinks(cfg *config.Config, senders map[string]*queue.Sender, registry *prometheus.Registry, tree *supervisor.Tree, log zerolog.Logger) error {
	for name, sc := range cfg.Sinks {
		nodeLog := log.With().Str("sink", name).Logger()

		concrete, err := buildSink(sc, registry, nodeLog)
		if err != nil {
			return err
		}

		sender, receiver, err := queue.Open(sc.ConfigPath, cfg.DataDirectory, queue.Options{})
		if err != nil {
			return fmt.Errorf("sinks.%s: opening queue: %w", name, err)
		}
		senders[sc.ConfigPath] = sender

		rt := &sink.Runtime{Name: name, Sink: concrete, Input: receiver, Log: nodeLog}
		if ioSink(sc.Kind) {
			rt.Breaker = sink.NewBreaker(sink.DefaultBreakerConfig(sc.ConfigPath))
		}
		tree.Add("sink."+name, rt.Run)
	}
	return nil
}

func buildFilters(cfg *config.Config, senders map[string]*queue.Sender, tree *supervisor.Tree, log zerolog.Logger) error {
	remaining := make(map[string]config.FilterConfig, len(cfg.Filters))
	for name, fc := range cfg.Filters {
		remaining[name] = fc
	}

	for len(remaining) > 0 {
		progressed := false

		for name, fc := range remaining {
			forwards, ok := resolveForwards(fc.Forwards, senders)
			if !ok {
				continue // depends on a filter not yet built; try again next pass
			}

			concrete, err := buildFilter(fc)
			if err != nil {
				return err
			}

			nodeLog := log.With().Str("filter", name).Logger()
			sender, receiver, err := queue.Open(fc.ConfigPath, cfg.DataDirectory, queue.Options{})
			if err != nil {
				return fmt.Errorf("filters.%s: opening queue: %w", name, err)
			}
			senders[fc.ConfigPath] = sender

			rt := &filter.Runtime{Name: name, Filter: concrete, Input: receiver, Forwards: forwards, Log: nodeLog}
			tree.Add("filter."+name, rt.Run)

			delete(remaining, name)
			progressed = true
		}

		if !progressed {
			names := make([]string, 0, len(remaining))
			for name := range remaining {
				names = append(names, name)
			}
			return fmt.Errorf("unresolved forward or filter cycle among: %v", names)
		}
	}
	return nil
}

func buildSources(cfg *config.Config, senders map[string]*queue.Sender, tree *supervisor.Tree, log zerolog.Logger, done <-chan struct{}) ([]*queue.Sender, error) {
	var flushOrder []string
	flushSet := make(map[string]*queue.Sender)

	addToFlushSet := func(forwards []*queue.Sender, paths []string) {
		for i, s := range forwards {
			if _, ok := flushSet[paths[i]]; !ok {
				flushSet[paths[i]] = s
				flushOrder = append(flushOrder, paths[i])
			}
		}
	}

	for kind, byName := range cfg.Sources {
		for name, sc := range byName {
			forwards, ok := resolveForwards(sc.Forwards, senders)
			if !ok {
				return nil, fmt.Errorf("sources.%s.%s: unresolved forward", kind, name)
			}

			nodeLog := log.With().Str("source", kind+"."+name).Logger()
			src, err := buildSource(kind, sc, forwards, nodeLog, done)
			if err != nil {
				return nil, err
			}
			tree.Add("source."+kind+"."+name, src.Run)
			addToFlushSet(forwards, sc.Forwards)
		}
	}

	internalForwards, ok := resolveForwards(cfg.Internal.Forwards, senders)
	if !ok {
		return nil, fmt.Errorf("internal: unresolved forward")
	}
	gauges := internalGauges(senders)
	internalSrc := source.NewInternal(internalForwards, 10*time.Second, gauges, log.With().Str("source", "internal").Logger(), done)
	tree.Add("source.internal", internalSrc.Run)
	addToFlushSet(internalForwards, cfg.Internal.Forwards)

	result := make([]*queue.Sender, len(flushOrder))
	for i, path := range flushOrder {
		result[i] = flushSet[path]
	}
	return result, nil
}

// internalGauges exposes every open queue's current spill depth as an
// internal telemetry gauge (spec.md §6's mandatory internal source).
func internalGauges(senders map[string]*queue.Sender) []source.GaugeFunc {
	gauges := make([]source.GaugeFunc, 0, len(senders))
	for _, s := range senders {
		s := s
		gauges = append(gauges, source.GaugeFunc{
			Name:  "queue_depth." + s.Name(),
			Value: func() float64 { return float64(s.Depth()) },
		})
	}
	return gauges
}

func resolveForwards(paths []string, senders map[string]*queue.Sender) ([]*queue.Sender, bool) {
	out := make([]*queue.Sender, 0, len(paths))
	for _, p := range paths {
		s, ok := senders[p]
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
