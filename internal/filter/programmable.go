// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package filter

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/tomtom215/signalmux/internal/event"
)

// Programmable is the scripted filter of spec.md §4.3/§6: the script
// must define a global process(event, emit) function, where emit is a
// Go-backed closure the script calls once per output event. A single
// *lua.LState is reused across calls so the script can keep state
// between invocations (spec.md's "process must be deterministic given
// its internal state" explicitly allows internal state).
type Programmable struct {
	state *lua.LState
}

// NewProgrammable loads script (Lua source) into a fresh interpreter and
// validates that it defines process. A load failure is a configuration
// error, not a runtime one — callers should treat it as fatal at
// startup (spec.md §7.1).
func NewProgrammable(script string) (*Programmable, error) {
	L := lua.NewState()
	if err := L.DoString(script); err != nil {
		L.Close()
		return nil, fmt.Errorf("programmable filter: load script: %w", err)
	}
	if fn, ok := L.GetGlobal("process").(*lua.LFunction); !ok || fn == nil {
		L.Close()
		return nil, fmt.Errorf("programmable filter: script does not define process(event, emit)")
	}
	return &Programmable{state: L}, nil
}

// Close releases the underlying Lua interpreter.
func (p *Programmable) Close() { p.state.Close() }

func (p *Programmable) Process(e event.Event, out *Buffer) error {
	L := p.state

	var convErr error
	emit := L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		ev, err := luaToEvent(tbl)
		if err != nil {
			convErr = err
			return 0
		}
		out.Emit(ev)
		return 0
	})

	fn := L.GetGlobal("process")
	if err := L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, eventToLua(L, e), emit); err != nil {
		// A script runtime error is per spec.md §7.3 a transient filter
		// script error: log, drop the offending event, keep running --
		// not fatal. Only the script's absence/load failure at
		// NewProgrammable time is a startup-fatal condition.
		return fmt.Errorf("programmable filter: script error: %w", err)
	}
	if convErr != nil {
		return fmt.Errorf("programmable filter: %w", convErr)
	}
	return nil
}
