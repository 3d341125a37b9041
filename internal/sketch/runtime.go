package sketch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/coreman2200/funtimes-neosim/internal/sim"
)

// ErrNoLoop is returned when a sketch defines no loop function.
var ErrNoLoop = errors.New("sketch has no loop function")

// Runtime runs one sketch against one simulated strand. Sketches define
// setup() and loop() and reach the strand through the global `strip`.
// A Runtime is not safe for concurrent use.
type Runtime struct {
	L     *lua.LState
	px    *sim.NeoPixel
	start time.Time
	strip *lua.LTable
}

func NewRuntime(px *sim.NeoPixel) *Runtime {
	r := &Runtime{
		L:     lua.NewState(),
		px:    px,
		start: time.Now(),
	}
	r.registerModules()
	return r
}

func (r *Runtime) registerModules() {
	r.L.PreloadModule("log", NewLogModule().Loader)
	r.L.PreloadModule("neopixel", r.neopixelLoader)

	r.strip = r.newStripObject()
	r.L.SetGlobal("strip", r.strip)
	r.L.SetGlobal("delay", r.L.NewFunction(r.delay))
	r.L.SetGlobal("millis", r.L.NewFunction(r.millis))
	r.L.SetGlobal("Color", r.L.NewFunction(luaColor))
	r.L.SetGlobal("sine8", r.L.NewFunction(luaSine8))
	r.L.SetGlobal("gamma8", r.L.NewFunction(luaGamma8))
	for name, v := range layoutConstants() {
		r.L.SetGlobal(name, lua.LNumber(v))
	}
}

func (r *Runtime) Close() {
	r.L.Close()
}

// LoadFile executes a sketch file, defining its functions.
func (r *Runtime) LoadFile(path string) error {
	log.Info().Str("path", path).Msg("loading sketch")
	if err := r.L.DoFile(path); err != nil {
		return fmt.Errorf("load sketch: %w", err)
	}
	return nil
}

// LoadString executes sketch source held in memory.
func (r *Runtime) LoadString(src string) error {
	if err := r.L.DoString(src); err != nil {
		return fmt.Errorf("load sketch: %w", err)
	}
	return nil
}

// Run calls setup once, then loop until ctx is done or loops iterations
// have run. loops <= 0 runs forever.
func (r *Runtime) Run(ctx context.Context, loops int) error {
	r.L.SetContext(ctx)
	defer r.L.RemoveContext()

	loop, ok := r.L.GetGlobal("loop").(*lua.LFunction)
	if !ok {
		return ErrNoLoop
	}
	if setup, ok := r.L.GetGlobal("setup").(*lua.LFunction); ok {
		if err := r.call(ctx, setup); err != nil {
			return fmt.Errorf("setup: %w", err)
		}
	}
	for i := 0; loops <= 0 || i < loops; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.call(ctx, loop); err != nil {
			return fmt.Errorf("loop: %w", err)
		}
	}
	return nil
}

func (r *Runtime) call(ctx context.Context, fn *lua.LFunction) error {
	err := r.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Millis reports the milliseconds since the runtime was created.
func (r *Runtime) Millis() int64 {
	return time.Since(r.start).Milliseconds()
}

func (r *Runtime) millis(L *lua.LState) int {
	L.Push(lua.LNumber(r.Millis()))
	return 1
}

func (r *Runtime) delay(L *lua.LState) int {
	ms := L.CheckInt(1)
	if ms <= 0 {
		return 0
	}
	ctx := L.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	t := time.NewTimer(time.Duration(ms) * time.Millisecond)
	defer t.Stop()
	select {
	case <-ctx.Done():
		L.RaiseError("delay interrupted: %v", ctx.Err())
	case <-t.C:
	}
	return 0
}
