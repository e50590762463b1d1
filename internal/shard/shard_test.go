// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package shard

import "testing"

func TestPickStableAcrossLookups(t *testing.T) {
	r := NewRing([]string{"a:1", "b:2", "c:3"})
	first := r.Pick("metric.name")
	for i := 0; i < 10; i++ {
		if got := r.Pick("metric.name"); got != first {
			t.Fatalf("pick not stable: got %s want %s", got, first)
		}
	}
}

func TestPickDistributesAcrossKeys(t *testing.T) {
	r := NewRing([]string{"a:1", "b:2", "c:3"})
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		seen[r.Pick(string(rune('a'+i)))] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected keys to spread across more than one endpoint, got %v", seen)
	}
}

func TestSingleEndpointAlwaysPicksItself(t *testing.T) {
	r := NewRing([]string{"only:1"})
	if got := r.Pick("anything"); got != "only:1" {
		t.Fatalf("expected only:1, got %s", got)
	}
}
