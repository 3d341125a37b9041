package sketch

import (
	"context"

	lua "github.com/yuin/gopher-lua"

	"github.com/coreman2200/funtimes-neosim/model"
)

func layoutConstants() map[string]uint16 {
	out := map[string]uint16{
		"NEO_KHZ800": uint16(model.NEO_KHZ800),
		"NEO_KHZ400": uint16(model.NEO_KHZ400),
	}
	for name, l := range model.StringLayouts {
		out["NEO_"+name] = uint16(l)
	}
	return out
}

func (r *Runtime) neopixelLoader(L *lua.LState) int {
	mod := L.NewTable()
	L.SetField(mod, "Color", L.NewFunction(luaColor))
	L.SetField(mod, "sine8", L.NewFunction(luaSine8))
	L.SetField(mod, "gamma8", L.NewFunction(luaGamma8))
	L.SetField(mod, "strip", r.strip)
	for name, v := range layoutConstants() {
		L.SetField(mod, name, lua.LNumber(v))
	}
	L.Push(mod)
	return 1
}

// newStripObject builds the `strip` table. Methods accept both strip.f()
// and strip:f() call styles.
func (r *Runtime) newStripObject() *lua.LTable {
	t := r.L.NewTable()
	methods := map[string]func(*lua.LState, int) int{
		"begin":         r.begin,
		"show":          r.show,
		"setPixelColor": r.setPixelColor,
		"getPixelColor": r.getPixelColor,
		"setBrightness": r.setBrightness,
		"getBrightness": r.getBrightness,
		"clear":         r.clear,
		"numPixels":     r.numPixels,
		"updateLength":  r.updateLength,
		"updateType":    r.updateType,
		"setPin":        r.setPin,
		"getPin":        r.getPin,
		"Color":         func(L *lua.LState, base int) int { return packColor(L, base) },
	}
	for name, m := range methods {
		m := m
		r.L.SetField(t, name, r.L.NewFunction(func(L *lua.LState) int {
			base := 0
			if L.GetTop() > 0 && L.Get(1) == t {
				base = 1
			}
			return m(L, base)
		}))
	}
	return t
}

func (r *Runtime) ctx(L *lua.LState) context.Context {
	if ctx := L.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func (r *Runtime) begin(L *lua.LState, _ int) int {
	if err := r.px.Begin(); err != nil {
		L.RaiseError("begin: %v", err)
	}
	return 0
}

func (r *Runtime) show(L *lua.LState, _ int) int {
	if err := r.px.Show(r.ctx(L)); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func channel(L *lua.LState, n int) uint8 {
	return uint8(L.CheckInt(n))
}

func (r *Runtime) setPixelColor(L *lua.LState, base int) int {
	n := L.CheckInt(base + 1)
	switch L.GetTop() - base {
	case 2:
		r.px.SetPixelColor(n, model.Color(uint32(L.CheckInt64(base+2))))
	case 4:
		r.px.SetPixelRGB(n, channel(L, base+2), channel(L, base+3), channel(L, base+4))
	case 5:
		r.px.SetPixelRGBW(n, channel(L, base+2), channel(L, base+3), channel(L, base+4), channel(L, base+5))
	default:
		L.ArgError(base+2, "expected a packed colour or r, g, b[, w]")
	}
	return 0
}

func (r *Runtime) getPixelColor(L *lua.LState, base int) int {
	L.Push(lua.LNumber(r.px.GetPixelColor(L.CheckInt(base + 1))))
	return 1
}

func (r *Runtime) setBrightness(L *lua.LState, base int) int {
	r.px.SetBrightness(channel(L, base+1))
	return 0
}

func (r *Runtime) getBrightness(L *lua.LState, _ int) int {
	L.Push(lua.LNumber(r.px.GetBrightness()))
	return 1
}

func (r *Runtime) clear(L *lua.LState, _ int) int {
	r.px.Clear()
	return 0
}

func (r *Runtime) numPixels(L *lua.LState, _ int) int {
	L.Push(lua.LNumber(r.px.NumPixels()))
	return 1
}

func (r *Runtime) updateLength(L *lua.LState, base int) int {
	r.px.UpdateLength(L.CheckInt(base + 1))
	return 0
}

func (r *Runtime) updateType(L *lua.LState, base int) int {
	r.px.UpdateType(model.Layout(uint16(L.CheckInt(base + 1))))
	return 0
}

func (r *Runtime) setPin(L *lua.LState, base int) int {
	if err := r.px.SetPin(L.CheckInt(base + 1)); err != nil {
		L.RaiseError("setPin: %v", err)
	}
	return 0
}

func (r *Runtime) getPin(L *lua.LState, _ int) int {
	L.Push(lua.LNumber(r.px.Pin()))
	return 1
}

func packColor(L *lua.LState, base int) int {
	r, g, b := channel(L, base+1), channel(L, base+2), channel(L, base+3)
	c := model.RGB(r, g, b)
	if L.GetTop()-base >= 4 {
		c = model.RGBW(r, g, b, channel(L, base+4))
	}
	L.Push(lua.LNumber(c))
	return 1
}

func luaColor(L *lua.LState) int {
	return packColor(L, 0)
}

func luaSine8(L *lua.LState) int {
	L.Push(lua.LNumber(model.Sine8(channel(L, 1))))
	return 1
}

func luaGamma8(L *lua.LState) int {
	L.Push(lua.LNumber(model.Gamma8(channel(L, 1))))
	return 1
}
