package sketch

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
)

// LogModule lets sketches write structured log lines:
//
//	local log = require("log")
//	log.info("frame", {n = 3})
type LogModule struct{}

func NewLogModule() *LogModule {
	return &LogModule{}
}

func (m *LogModule) Loader(L *lua.LState) int {
	mod := L.NewTable()
	L.SetField(mod, "debug", L.NewFunction(m.at(zerolog.DebugLevel)))
	L.SetField(mod, "info", L.NewFunction(m.at(zerolog.InfoLevel)))
	L.SetField(mod, "warn", L.NewFunction(m.at(zerolog.WarnLevel)))
	L.SetField(mod, "error", L.NewFunction(m.at(zerolog.ErrorLevel)))
	L.Push(mod)
	return 1
}

func (m *LogModule) at(level zerolog.Level) lua.LGFunction {
	return func(L *lua.LState) int {
		msg := L.CheckString(1)
		event := log.WithLevel(level).Str("source", "sketch")
		if tbl, ok := L.Get(2).(*lua.LTable); ok {
			tbl.ForEach(func(k, v lua.LValue) {
				event = event.Interface(lua.LVAsString(k), luaToGo(v))
			})
		}
		event.Msg(msg)
		return 0
	}
}

func luaToGo(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LString:
		return string(val)
	case lua.LNumber:
		return float64(val)
	case lua.LBool:
		return bool(val)
	case *lua.LNilType:
		return nil
	default:
		return v.String()
	}
}
