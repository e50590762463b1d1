// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package queue

import "sync"

// openNames tracks which queue names are currently open in this process,
// enforcing spec.md §9's "this spec requires a startup rejection" for
// duplicate config_path.
var (
	openMu    sync.Mutex
	openNames = make(map[string]struct{})
)

func registerOpen(name string) error {
	openMu.Lock()
	defer openMu.Unlock()
	if _, exists := openNames[name]; exists {
		return ErrAlreadyOpen
	}
	openNames[name] = struct{}{}
	return nil
}

func unregisterOpen(name string) {
	openMu.Lock()
	defer openMu.Unlock()
	delete(openNames, name)
}
