// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

// Package shard picks a target replica for a sink with more than one
// configured endpoint, using rendezvous (highest random weight) hashing
// so that a given metric name stays pinned to the same replica across
// rebalances — the spec never names this concern, but the reference
// pack supplies a concrete library for it (dgryski/go-rendezvous), so
// SPEC_FULL.md's domain-stack expansion gives it a home in any
// multi-replica sink.
package shard

import (
	"github.com/cespare/xxhash/v2"
	rendezvous "github.com/dgryski/go-rendezvous"
)

// Ring selects among a fixed set of replica endpoints.
type Ring struct {
	endpoints []string
	r         *rendezvous.Rendezvous
}

// NewRing builds a Ring over endpoints. A single-endpoint ring is valid
// and always resolves to that one endpoint.
func NewRing(endpoints []string) *Ring {
	return &Ring{
		endpoints: endpoints,
		r:         rendezvous.New(endpoints, hash),
	}
}

func hash(s string) uint64 {
	return xxhash.Sum64String(s)
}

// Pick returns the endpoint key should be routed to.
func (r *Ring) Pick(key string) string {
	if len(r.endpoints) == 1 {
		return r.endpoints[0]
	}
	return r.r.Lookup(key)
}

// Endpoints returns the configured replica set, in declaration order.
func (r *Ring) Endpoints() []string { return r.endpoints }
