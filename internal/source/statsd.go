// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package source

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/signalmux/internal/event"
	"github.com/tomtom215/signalmux/internal/queue"
)

// Statsd listens on a UDP socket and parses the plaintext statsd wire
// format (`name:value|type[|@sample_rate]`), one or more stat lines per
// datagram separated by newlines. An ingress rate limiter drops excess
// packets locally (spec.md §4.1 rationale: a source decides locally
// whether to drop rather than blocking the network on back-pressure).
type Statsd struct {
	addr     string
	senders  []*queue.Sender
	limiter  *rate.Limiter
	log      zerolog.Logger
	maxBytes int
}

// NewStatsd builds a Statsd source bound to addr (host:port). ratePerSec
// <= 0 disables rate limiting.
func NewStatsd(addr string, senders []*queue.Sender, ratePerSec int, log zerolog.Logger) *Statsd {
	var limiter *rate.Limiter
	if ratePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec)
	}
	return &Statsd{addr: addr, senders: senders, limiter: limiter, log: log, maxBytes: 65507}
}

func (s *Statsd) Run() {
	conn, err := net.ListenPacket("udp", s.addr)
	if err != nil {
		s.log.Error().Err(err).Str("source", "statsd").Str("addr", s.addr).Msg("listen failed, fatal")
		panic(err)
	}
	defer conn.Close()

	buf := make([]byte, s.maxBytes)
	for {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			s.log.Error().Err(err).Str("source", "statsd").Msg("read failed, fatal")
			panic(err)
		}
		if s.limiter != nil && !s.limiter.Allow() {
			continue
		}
		s.handleDatagram(buf[:n])
	}
}

func (s *Statsd) handleDatagram(data []byte) {
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ev, ok := parseStatsdLine(line)
		if !ok {
			s.log.Warn().Str("source", "statsd").Str("line", line).Msg("unparseable statsd line, dropping")
			continue
		}
		if err := fanOut(s.senders, ev); err != nil {
			s.log.Error().Err(err).Str("source", "statsd").Msg("downstream queue gone, fatal")
			panic(err)
		}
	}
}

func parseStatsdLine(line string) (event.Event, bool) {
	nameRest := strings.SplitN(line, ":", 2)
	if len(nameRest) != 2 {
		return event.Event{}, false
	}
	name := nameRest[0]
	parts := strings.Split(nameRest[1], "|")
	if len(parts) < 2 {
		return event.Event{}, false
	}

	value, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return event.Event{}, false
	}

	kind, ok := statsdKind(parts[1])
	if !ok {
		return event.Event{}, false
	}

	sampleRate := 1.0
	for _, extra := range parts[2:] {
		if strings.HasPrefix(extra, "@") {
			if sr, err := strconv.ParseFloat(extra[1:], 64); err == nil {
				sampleRate = sr
			}
		}
	}

	t := event.NewTelemetry(name, value, kind, time.Now().Unix(), event.Tags{})
	t.SampleRate = sampleRate
	return event.NewTelemetryEvent(t), true
}

func statsdKind(typ string) (event.Kind, bool) {
	switch typ {
	case "c":
		return event.Counter, true
	case "g":
		return event.GaugeSet, true
	case "ms", "h":
		return event.Timer, true
	default:
		return 0, false
	}
}
