// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package event

import "testing"

func TestTagsSerializeCanonicity(t *testing.T) {
	a := Tags{}
	a.Set("host", "a1")
	a.Set("region", "us-east")

	b := Tags{}
	b.Set("region", "us-east")
	b.Set("host", "a1")

	if a.Serialize() != b.Serialize() {
		t.Fatalf("serialize not order-independent: %q vs %q", a.Serialize(), b.Serialize())
	}
	if a.CanonicalHash() != b.CanonicalHash() {
		t.Fatalf("canonical hash not order-independent")
	}
	if !a.Equal(b) {
		t.Fatalf("expected equal tag maps")
	}
}

func TestTagsSerializeLexicographic(t *testing.T) {
	tg := Tags{}
	tg.Set("z", "1")
	tg.Set("a", "2")
	got := tg.Serialize()
	want := "a=2,z=1"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestTagsNotEqualOnDifferentValues(t *testing.T) {
	a := Tags{}
	a.Set("host", "a1")
	b := Tags{}
	b.Set("host", "a2")
	if a.Equal(b) {
		t.Fatalf("expected inequality")
	}
	if a.CanonicalHash() == b.CanonicalHash() {
		t.Fatalf("expected different hashes (not guaranteed but overwhelmingly likely for this input)")
	}
}
