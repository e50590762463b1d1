// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

// Package clock provides the monotonic-time cache described in spec.md
// §4.6 step 5: a background goroutine refreshes a cached "current second"
// so hot paths can read the time without a syscall per event.
package clock

import (
	"sync/atomic"
	"time"
)

// Cache holds the current Unix second, refreshed by Run.
type Cache struct {
	seconds atomic.Int64
}

// New returns a Cache pre-populated with the current time.
func New() *Cache {
	c := &Cache{}
	c.seconds.Store(time.Now().Unix())
	return c
}

// Now returns the cached current second without a syscall.
func (c *Cache) Now() int64 {
	return c.seconds.Load()
}

// Run refreshes the cache once per tick until ctx-like done channel closes.
// It is intended to be run on its own goroutine for the process lifetime,
// matching spec.md §4.6 step 5 ("internal clock updater").
func (c *Cache) Run(done <-chan struct{}) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.seconds.Store(time.Now().Unix())
		case <-done:
			return
		}
	}
}
