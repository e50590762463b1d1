// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package main

import "testing"

func TestCountVerboseFlags(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want int
	}{
		{"none", []string{"signalmux", "-C", "config.yaml"}, 0},
		{"long form once", []string{"signalmux", "--verbose"}, 1},
		{"short form repeated", []string{"signalmux", "-v", "-v", "-v"}, 3},
		{"mixed short and long", []string{"signalmux", "-v", "--verbose"}, 2},
		{"bundled short flags", []string{"signalmux", "-vvv"}, 3},
		{"ignores unrelated flags", []string{"signalmux", "-C", "config.yaml", "-v"}, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := countVerboseFlags(tc.args); got != tc.want {
				t.Fatalf("countVerboseFlags(%v) = %d, want %d", tc.args, got, tc.want)
			}
		})
	}
}
