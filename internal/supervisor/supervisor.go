// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

// Package supervisor wraps thejerf/suture's thread lifecycle bookkeeping
// (start order, join, shutdown timeout) while deliberately defeating its
// default auto-restart-on-failure policy: spec.md §4.6 step 6 requires
// "a panic in any worker is fatal: the supervisor logs and exits
// non-zero," not suture's usual self-healing restart. Grounded on
// tomtom215-cartographus/internal/supervisor/tree.go's SupervisorTree,
// flattened from three layered child supervisors (data/messaging/api)
// to a single flat tree since signalmux's nodes (sources, filters,
// sinks, flush timer, clock) have no equivalent layering. Suture's own
// lifecycle events are forwarded to the process logger via
// thejerf/sutureslog, same as the teacher does.
package supervisor

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/tomtom215/signalmux/internal/logging"
)

// Tree is a flat suture supervisor over every node in the topology.
type Tree struct {
	root *suture.Supervisor
	log  zerolog.Logger
}

// New builds a Tree. name identifies the tree in suture's own logging.
// Suture's own lifecycle events (service added/stopped/panicked) are
// routed through sutureslog into the same zerolog sink as every other
// log line, via internal/logging's slog adapter -- grounded on
// tomtom215-cartographus/internal/supervisor/tree.go's
// sutureslog.Handler wiring. The EventHook only observes; it plays no
// part in the fatal-on-panic override below.
func New(name string, log zerolog.Logger) *Tree {
	handler := &sutureslog.Handler{Logger: logging.NewSlogLogger(log)}
	spec := suture.Spec{
		EventHook:        handler.MustHook(),
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		Timeout:          10 * time.Second,
	}
	return &Tree{root: suture.New(name, spec), log: log}
}

// Add registers a node's blocking Run function under the tree. A panic
// inside run is recovered, logged, and escalated via Fatal instead of
// being retried by suture's default policy.
func (t *Tree) Add(name string, run func()) {
	t.root.Add(&node{name: name, run: run, fatal: t.Fatal})
}

// Run starts the tree and blocks until ctx is canceled or a node calls
// Fatal (which exits the process directly, so Run does not normally
// return on that path).
func (t *Tree) Run(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// Fatal logs err and terminates the process immediately with a
// non-zero exit code, matching spec.md §4.6 step 6 and §7.4. Its only
// caller is node panic recovery: components that hit an unrecoverable
// condition (e.g. a send to a poisoned queue returning ErrQueueClosed)
// panic inside their node, and that panic is escalated here.
func (t *Tree) Fatal(err error) {
	t.log.Error().Err(err).Msg("fatal error, terminating process")
	os.Exit(1)
}

// node adapts a plain blocking function into a suture.Service, matching
// spec.md's "one OS thread per node" model (§5) without requiring every
// node implementation to depend on suture directly.
type node struct {
	name  string
	run   func()
	fatal func(error)
}

func (n *node) Serve(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in node %s: %v", n.name, r)
			n.fatal(err)
		}
	}()
	n.run()
	return nil
}

func (n *node) String() string { return n.name }
