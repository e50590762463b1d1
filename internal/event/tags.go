// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package event

import (
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

var (
	tagSeparator  = []byte{'='}
	tagTerminator = []byte{0}
)

// Tags is an ordered string-to-string mapping. Equality is order-insensitive
// (invariant 3 of spec.md §3); Serialize and CanonicalHash both normalize by
// sorting keys lexicographically so that two maps equal as multisets of
// key-value pairs always produce byte-identical output.
type Tags struct {
	keys   []string
	values map[string]string
}

// NewTags builds a Tags from a plain map, preserving no particular order
// (callers that care about insertion order should use Set).
func NewTags(m map[string]string) Tags {
	t := Tags{values: make(map[string]string, len(m))}
	for k, v := range m {
		t.Set(k, v)
	}
	return t
}

// Set inserts or overwrites a tag.
func (t *Tags) Set(key, value string) {
	if t.values == nil {
		t.values = make(map[string]string)
	}
	if _, exists := t.values[key]; !exists {
		t.keys = append(t.keys, key)
	}
	t.values[key] = value
}

// Get returns the value for key and whether it was present.
func (t Tags) Get(key string) (string, bool) {
	v, ok := t.values[key]
	return v, ok
}

// Len returns the number of tags.
func (t Tags) Len() int { return len(t.keys) }

// sortedKeys returns the tag keys in lexicographic order, independent of
// insertion order.
func (t Tags) sortedKeys() []string {
	keys := make([]string, len(t.keys))
	copy(keys, t.keys)
	sort.Strings(keys)
	return keys
}

// Serialize renders the tag map as a canonical "k1=v1,k2=v2" string with
// keys in lexicographic order, per invariant 3.
func (t Tags) Serialize() string {
	keys := t.sortedKeys()
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(t.values[k])
	}
	return b.String()
}

// CanonicalHash returns a stable 64-bit hash of the tag map. Two tag maps
// equal as multisets of key-value pairs always hash identically. The
// aggregating sinks key their per-series state on Serialize, not on this
// hash.
func (t Tags) CanonicalHash() uint64 {
	keys := t.sortedKeys()
	h := xxhash.New()
	for _, k := range keys {
		_, _ = h.Write([]byte(k))
		_, _ = h.Write(tagSeparator)
		_, _ = h.Write([]byte(t.values[k]))
		_, _ = h.Write(tagTerminator)
	}
	return h.Sum64()
}

// Equal reports whether two tag maps contain the same key-value pairs,
// regardless of insertion order.
func (t Tags) Equal(other Tags) bool {
	if t.Len() != other.Len() {
		return false
	}
	for k, v := range t.values {
		ov, ok := other.values[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Range calls fn for every tag in lexicographic key order.
func (t Tags) Range(fn func(key, value string)) {
	for _, k := range t.sortedKeys() {
		fn(k, t.values[k])
	}
}

// Map returns a copy of the tags as a plain map, for callers (e.g. JSON
// encoders) that don't need ordering.
func (t Tags) Map() map[string]string {
	m := make(map[string]string, len(t.values))
	for k, v := range t.values {
		m[k] = v
	}
	return m
}
