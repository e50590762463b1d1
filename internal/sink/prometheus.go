// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package sink

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tomtom215/signalmux/internal/event"
)

// Prometheus exposes aggregated counters and gauges through a registry
// scraped by the admin HTTP surface (internal/adminserver). Timers,
// histograms and summaries are all observed directly into a
// prometheus.Histogram rather than being pre-aggregated, since that type
// already merges observations internally.
type Prometheus struct {
	registry *prometheus.Registry
	agg      *aggregator

	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
}

// NewPrometheus registers no metrics up front; series are created
// lazily on first observation, keyed by metric name (spec.md §3's tag
// model is collapsed to the series name here since Prometheus vectors
// require a fixed label schema known in advance, which the router's
// freeform tag maps don't provide).
func NewPrometheus(registry *prometheus.Registry) *Prometheus {
	return &Prometheus{
		registry:   registry,
		agg:        newAggregator(),
		counters:   make(map[string]prometheus.Counter),
		gauges:     make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
	}
}

func (p *Prometheus) Deliver(e event.Event) error {
	if !e.IsTelemetry() {
		return nil
	}
	t := e.Telemetry
	switch t.Kind {
	case event.Histogram, event.Summary, event.Timer:
		h := p.histogramFor(t.Name)
		h.Observe(t.Value)
		return nil
	default:
		p.agg.absorb(t)
		return nil
	}
}

func (p *Prometheus) histogramFor(name string) prometheus.Histogram {
	if h, ok := p.histograms[name]; ok {
		return h
	}
	h := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: metricName(name),
		Help: "signalmux telemetry: " + name,
	})
	p.registry.MustRegister(h)
	p.histograms[name] = h
	return h
}

func (p *Prometheus) Flush(uint64) error {
	for _, s := range p.agg.drain() {
		switch s.kind {
		case event.Counter:
			p.counterFor(s.name).Add(s.value)
		case event.GaugeDelta:
			// Gauge.Add tolerates negative deltas, unlike Counter.Add.
			p.gaugeFor(s.name).Add(s.value)
		default:
			p.gaugeFor(s.name).Set(s.value)
		}
	}
	return nil
}

func (p *Prometheus) counterFor(name string) prometheus.Counter {
	if c, ok := p.counters[name]; ok {
		return c
	}
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Name: metricName(name),
		Help: "signalmux telemetry: " + name,
	})
	p.registry.MustRegister(c)
	p.counters[name] = c
	return c
}

func (p *Prometheus) gaugeFor(name string) prometheus.Gauge {
	if g, ok := p.gauges[name]; ok {
		return g
	}
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: metricName(name),
		Help: "signalmux telemetry: " + name,
	})
	p.registry.MustRegister(g)
	p.gauges[name] = g
	return g
}

// metricName sanitizes a router metric name into a Prometheus-legal
// identifier by replacing the router's dotted separators.
func metricName(name string) string {
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			out[i] = c
		} else {
			out[i] = '_'
		}
	}
	return "signalmux_" + string(out)
}
