// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package source

import (
	"io"
	"net"

	"github.com/rs/zerolog"

	"github.com/tomtom215/signalmux/internal/queue"
	"github.com/tomtom215/signalmux/internal/wire"
)

// Native listens on a TCP socket and decodes signalmux's own binary
// wire format (internal/wire), playing the source-side role of spec.md
// §1's "native wire format" codec pair.
type Native struct {
	addr    string
	senders []*queue.Sender
	log     zerolog.Logger
}

func NewNative(addr string, senders []*queue.Sender, log zerolog.Logger) *Native {
	return &Native{addr: addr, senders: senders, log: log}
}

func (n *Native) Run() {
	ln, err := net.Listen("tcp", n.addr)
	if err != nil {
		n.log.Error().Err(err).Str("source", "native").Str("addr", n.addr).Msg("listen failed, fatal")
		panic(err)
	}
	defer ln.Close()

	for {
		conn, err := ln.Accept()
		if err != nil {
			n.log.Error().Err(err).Str("source", "native").Msg("accept failed, fatal")
			panic(err)
		}
		go n.handleConn(conn)
	}
}

func (n *Native) handleConn(conn net.Conn) {
	defer conn.Close()
	for {
		ev, err := wire.ReadEvent(conn)
		if err != nil {
			if err != io.EOF {
				n.log.Warn().Err(err).Str("source", "native").Msg("frame decode error, closing connection")
			}
			return
		}
		if sendErr := fanOut(n.senders, ev); sendErr != nil {
			n.log.Error().Err(sendErr).Str("source", "native").Msg("downstream queue gone, fatal")
			panic(sendErr)
		}
	}
}
