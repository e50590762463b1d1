// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package filter

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/tomtom215/signalmux/internal/event"
)

// eventToLua marshals an Event into the Lua table shape the script's
// process(event, emit) function receives: {variant = "telemetry"|"log"|
// "timer_flush", ...fields}.
func eventToLua(L *lua.LState, e event.Event) *lua.LTable {
	t := L.NewTable()
	switch e.Variant {
	case event.VariantTelemetry:
		t.RawSetString("variant", lua.LString("telemetry"))
		t.RawSetString("name", lua.LString(e.Telemetry.Name))
		t.RawSetString("value", lua.LNumber(e.Telemetry.Value))
		t.RawSetString("kind", lua.LString(e.Telemetry.Kind.String()))
		t.RawSetString("sample_rate", lua.LNumber(e.Telemetry.SampleRate))
		t.RawSetString("timestamp", lua.LNumber(e.Telemetry.Timestamp))
		t.RawSetString("tags", tagsToLua(L, e.Telemetry.Tags))
	case event.VariantLog:
		t.RawSetString("variant", lua.LString("log"))
		t.RawSetString("path", lua.LString(e.Log.Path))
		t.RawSetString("payload", lua.LString(e.Log.Payload))
		t.RawSetString("timestamp", lua.LNumber(e.Log.Timestamp))
		t.RawSetString("tags", tagsToLua(L, e.Log.Tags))
	case event.VariantTimerFlush:
		t.RawSetString("variant", lua.LString("timer_flush"))
		t.RawSetString("epoch", lua.LNumber(e.Epoch))
	}
	return t
}

func tagsToLua(L *lua.LState, tags event.Tags) *lua.LTable {
	t := L.NewTable()
	for k, v := range tags.Map() {
		t.RawSetString(k, lua.LString(v))
	}
	return t
}

// luaToEvent converts a table built by the script back into an Event.
// Unknown or malformed tables return an error, which the caller treats
// as a transient process error (spec.md §4.3 "process may return a
// transient error").
func luaToEvent(t *lua.LTable) (event.Event, error) {
	variant := t.RawGetString("variant").String()
	switch variant {
	case "telemetry":
		kind, err := kindFromString(t.RawGetString("kind").String())
		if err != nil {
			return event.Event{}, err
		}
		tags := luaToTags(t.RawGetString("tags"))
		value, _ := toFloat(t.RawGetString("value"))
		sampleRate, ok := toFloat(t.RawGetString("sample_rate"))
		if !ok {
			sampleRate = 1.0
		}
		timestamp, _ := toInt(t.RawGetString("timestamp"))
		return event.NewTelemetryEvent(event.Telemetry{
			Name: t.RawGetString("name").String(), Value: value, Kind: kind,
			SampleRate: sampleRate, Timestamp: timestamp, Tags: tags,
		}), nil
	case "log":
		tags := luaToTags(t.RawGetString("tags"))
		timestamp, _ := toInt(t.RawGetString("timestamp"))
		return event.NewLogEvent(event.Log{
			Path: t.RawGetString("path").String(), Payload: t.RawGetString("payload").String(),
			Timestamp: timestamp, Tags: tags,
		}), nil
	case "timer_flush":
		epoch, _ := toInt(t.RawGetString("epoch"))
		return event.NewFlushEvent(uint64(epoch)), nil
	default:
		return event.Event{}, errUnknownVariant(variant)
	}
}

func luaToTags(v lua.LValue) event.Tags {
	m := make(map[string]string)
	if t, ok := v.(*lua.LTable); ok {
		t.ForEach(func(k, val lua.LValue) {
			m[k.String()] = val.String()
		})
	}
	return event.NewTags(m)
}

func kindFromString(s string) (event.Kind, error) {
	switch s {
	case "gauge-set":
		return event.GaugeSet, nil
	case "gauge-delta":
		return event.GaugeDelta, nil
	case "counter":
		return event.Counter, nil
	case "timer":
		return event.Timer, nil
	case "histogram":
		return event.Histogram, nil
	case "summary":
		return event.Summary, nil
	default:
		return 0, errUnknownVariant("kind:" + s)
	}
}

func toFloat(v lua.LValue) (float64, bool) {
	n, ok := v.(lua.LNumber)
	return float64(n), ok
}

func toInt(v lua.LValue) (int64, bool) {
	n, ok := v.(lua.LNumber)
	return int64(n), ok
}

type errUnknownVariant string

func (e errUnknownVariant) Error() string { return "lua filter: unknown event variant " + string(e) }
