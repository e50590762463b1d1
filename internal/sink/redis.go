// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package sink

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/signalmux/internal/event"
	"github.com/tomtom215/signalmux/internal/shard"
)

// Redis aggregates telemetry into per-replica hashes, flushed with one
// pipelined round trip per window per replica via HINCRBYFLOAT (additive
// kinds) or HSET (last-write-wins kinds). Every series is a field of the
// one configured hash key, the field being the metric name plus its
// serialized tag set (SPEC_FULL.md §4.4 expansion).
type Redis struct {
	clients map[string]*redis.Client
	ring    *shard.Ring
	agg     *aggregator
	hashKey string
}

// NewRedis builds a Redis sink over one or more replica endpoints
// (addr:port strings); a single endpoint skips rendezvous hashing
// entirely (shard.Ring.Pick on a ring of size one is a no-op).
func NewRedis(endpoints []string, hashKey string) *Redis {
	clients := make(map[string]*redis.Client, len(endpoints))
	for _, ep := range endpoints {
		clients[ep] = redis.NewClient(&redis.Options{Addr: ep})
	}
	return &Redis{
		clients: clients,
		ring:    shard.NewRing(endpoints),
		agg:     newAggregator(),
		hashKey: hashKey,
	}
}

func (r *Redis) Deliver(e event.Event) error {
	if !e.IsTelemetry() {
		return nil
	}
	r.agg.absorb(e.Telemetry)
	return nil
}

func (r *Redis) Flush(epoch uint64) error {
	ctx := context.Background()
	byClient := make(map[string]redis.Pipeliner)

	for _, s := range r.agg.drain() {
		target := r.ring.Pick(s.name)
		client, ok := r.clients[target]
		if !ok {
			continue
		}
		pipe, ok := byClient[target]
		if !ok {
			pipe = client.Pipeline()
			byClient[target] = pipe
		}
		field := s.name + "\x00" + s.tags.Serialize()
		if s.kind.Additive() {
			pipe.HIncrByFloat(ctx, r.hashKey, field, s.value)
		} else {
			pipe.HSet(ctx, r.hashKey, field, fmt.Sprintf("%v", s.value))
		}
	}

	for target, pipe := range byClient {
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("redis sink: flush to %s: %w", target, err)
		}
	}
	return nil
}

// Close releases every replica connection.
func (r *Redis) Close() error {
	var firstErr error
	for _, c := range r.clients {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
