// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package sink

import (
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerConfig mirrors the teacher's CircuitBreakerConfig shape
// (cartographus/internal/eventprocessor/config.go), generalized from
// per-consumer event processing to per-sink flush I/O.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultBreakerConfig returns production defaults, unchanged from the
// teacher's DefaultCircuitBreakerConfig.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 5,
	}
}

// NewBreaker builds a gobreaker instance wrapping a sink's outbound I/O
// during Flush, so repeated destination failures fail fast instead of
// exhausting the runtime's retry budget against a dead endpoint
// (spec.md §4.4, SPEC_FULL.md §4.4 expansion).
func NewBreaker(cfg BreakerConfig) *gobreaker.CircuitBreaker[any] {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
	}
	return gobreaker.NewCircuitBreaker[any](settings)
}

// Guard runs fn through cb, discarding the placeholder result value.
func Guard(cb *gobreaker.CircuitBreaker[any], fn func() error) error {
	_, err := cb.Execute(func() (any, error) {
		return nil, fn()
	})
	return err
}
