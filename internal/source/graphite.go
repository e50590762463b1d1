// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package source

import (
	"bufio"
	"net"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/signalmux/internal/event"
	"github.com/tomtom215/signalmux/internal/queue"
)

// Graphite listens on a TCP socket and parses the plaintext carbon line
// protocol: `path value timestamp\n`, one metric per line, one
// connection per client. Every accepted connection is handled on its
// own goroutine; each carries no state beyond the socket, so a dropped
// connection costs only its in-flight line.
type Graphite struct {
	addr    string
	senders []*queue.Sender
	log     zerolog.Logger
}

func NewGraphite(addr string, senders []*queue.Sender, log zerolog.Logger) *Graphite {
	return &Graphite{addr: addr, senders: senders, log: log}
}

func (g *Graphite) Run() {
	ln, err := net.Listen("tcp", g.addr)
	if err != nil {
		g.log.Error().Err(err).Str("source", "graphite").Str("addr", g.addr).Msg("listen failed, fatal")
		panic(err)
	}
	defer ln.Close()

	for {
		conn, err := ln.Accept()
		if err != nil {
			g.log.Error().Err(err).Str("source", "graphite").Msg("accept failed, fatal")
			panic(err)
		}
		go g.handleConn(conn)
	}
}

func (g *Graphite) handleConn(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		ev, ok := parseCarbonLine(line)
		if !ok {
			g.log.Warn().Str("source", "graphite").Str("line", line).Msg("unparseable carbon line, dropping")
			continue
		}
		if err := fanOut(g.senders, ev); err != nil {
			g.log.Error().Err(err).Str("source", "graphite").Msg("downstream queue gone, fatal")
			panic(err)
		}
	}
}

func parseCarbonLine(line string) (event.Event, bool) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return event.Event{}, false
	}
	path := fields[0]
	value, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return event.Event{}, false
	}
	ts, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return event.Event{}, false
	}
	return event.NewTelemetryEvent(event.NewTelemetry(path, value, event.GaugeSet, ts, event.Tags{})), true
}
