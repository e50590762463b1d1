// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package sink

import (
	"errors"
	"testing"
	"time"
)

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	cfg := DefaultBreakerConfig("test")
	cfg.FailureThreshold = 2
	cfg.Timeout = time.Hour // stay open for the duration of the test
	cb := NewBreaker(cfg)

	failing := func() error { return errors.New("boom") }

	_ = Guard(cb, failing)
	_ = Guard(cb, failing)

	// The breaker should now be open and fail fast without calling fn.
	called := false
	err := Guard(cb, func() error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatalf("expected breaker to be open and return an error")
	}
	if called {
		t.Fatalf("breaker should have failed fast without invoking fn")
	}
}

func TestBreakerPassesThroughSuccess(t *testing.T) {
	cb := NewBreaker(DefaultBreakerConfig("test-ok"))
	if err := Guard(cb, func() error { return nil }); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}
