// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

// Package nodeerr classifies the errors a filter or sink can return from
// its per-event callbacks, matching spec.md §4.3/§4.4/§7.3's transient-vs-
// fatal taxonomy: a transient error drops the current event and is
// logged; a fatal error terminates the node and is escalated to the
// supervisor.
package nodeerr

import "errors"

// fatal wraps an error to mark it as terminal for the owning node.
type fatal struct{ err error }

func (f *fatal) Error() string { return f.err.Error() }
func (f *fatal) Unwrap() error { return f.err }

// Fatal marks err as a node-terminating condition (spec.md §7.4: "a
// fatal error terminates the thread").
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatal{err: err}
}

// IsFatal reports whether err (or anything it wraps) was marked Fatal.
func IsFatal(err error) bool {
	var f *fatal
	return errors.As(err, &f)
}
