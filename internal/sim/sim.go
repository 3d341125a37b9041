package sim

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	diag "github.com/coreman2200/funtimes-neosim/internal/diagnostics"
	"github.com/coreman2200/funtimes-neosim/internal/layout"
	"github.com/coreman2200/funtimes-neosim/internal/led"
	"github.com/coreman2200/funtimes-neosim/internal/render"
	"github.com/coreman2200/funtimes-neosim/internal/ws"
	"github.com/coreman2200/funtimes-neosim/model"
)

// DefaultPixels is the 12x12 panel plus its level-shifter pixel.
const DefaultPixels = 145

// NeoPixel stands in for a strand driver: it keeps the same call surface
// but renders each shown frame as text on a sink. Not safe for concurrent
// use, except for Health.
type NeoPixel struct {
	strip    *model.Strip
	pin      int
	begun    bool
	renderer *render.Renderer
	pins     led.PinController
	drivers  []led.Driver
	hub      *ws.Hub
	log      zerolog.Logger

	grid      layout.Grid
	sink      render.Sink
	stripOpts []model.Option
	power     diag.Power
	currentMA float64
	snapshot  atomic.Pointer[diag.Snapshot]
}

type Option func(*NeoPixel)

func WithGrid(g layout.Grid) Option {
	return func(p *NeoPixel) { p.grid = g }
}

// WithSink sets where frames are rendered; defaults to discarding them.
func WithSink(s render.Sink) Option {
	return func(p *NeoPixel) { p.sink = s }
}

func WithPins(pc led.PinController) Option {
	return func(p *NeoPixel) {
		if pc != nil {
			p.pins = pc
		}
	}
}

// WithDriver adds a frame mirror. Drivers are closed with the simulator.
func WithDriver(d led.Driver) Option {
	return func(p *NeoPixel) { p.drivers = append(p.drivers, d) }
}

// WithHub publishes every shown frame to a preview hub.
func WithHub(h *ws.Hub) Option {
	return func(p *NeoPixel) { p.hub = h }
}

func WithLogger(l zerolog.Logger) Option {
	return func(p *NeoPixel) { p.log = l }
}

// WithStripOptions passes options through to the pixel buffer.
func WithStripOptions(opts ...model.Option) Option {
	return func(p *NeoPixel) { p.stripOpts = append(p.stripOpts, opts...) }
}

// WithPower sets the current model Health checks shown frames against.
func WithPower(pw diag.Power) Option {
	return func(p *NeoPixel) { p.power = pw }
}

type discard struct{}

func (discard) AvailableForWrite() int      { return 1 }
func (discard) Write(b []byte) (int, error) { return len(b), nil }

func newNeoPixel(opts []Option) *NeoPixel {
	p := &NeoPixel{
		pin:  -1,
		grid: layout.Default12x12(),
		sink: discard{},
		pins: led.NoPins{},
		log:  log.Logger,
	}
	for _, o := range opts {
		o(p)
	}
	p.renderer = render.NewRenderer(p.sink, p.grid)
	p.stripOpts = append([]model.Option{model.WithLogger(p.log)}, p.stripOpts...)
	return p
}

// New returns a simulator for n pixels of layout t on the given pin. The
// pin is not touched until Begin.
func New(n int, pin int, t model.Layout, opts ...Option) *NeoPixel {
	p := newNeoPixel(opts)
	p.strip = model.NewStrip(n, t, p.stripOpts...)
	p.pin = pin
	p.refresh()
	return p
}

// NewDeferred returns a simulator whose length, layout and pin are set
// later through UpdateLength, UpdateType and SetPin.
func NewDeferred(opts ...Option) *NeoPixel {
	p := newNeoPixel(opts)
	p.strip = model.NewEmptyStrip(p.stripOpts...)
	p.refresh()
	return p
}

// Begin claims the data pin (output, driven low) and marks the strand ready.
func (p *NeoPixel) Begin() error {
	if p.pin >= 0 {
		if err := p.pins.SetOutputLow(p.pin); err != nil {
			return fmt.Errorf("claim pin %d: %w", p.pin, err)
		}
	}
	p.begun = true
	p.log.Info().Int("pin", p.pin).Int("pixels", p.strip.NumPixels()).Stringer("layout", p.strip.Type()).Msg("strip begun")
	p.refresh()
	return nil
}

// SetPin moves the strand to another pin. Once begun, the old pin is
// released to input and the new one claimed.
func (p *NeoPixel) SetPin(pin int) error {
	if p.begun && p.pin >= 0 {
		if err := p.pins.SetInput(p.pin); err != nil {
			return fmt.Errorf("release pin %d: %w", p.pin, err)
		}
	}
	p.pin = pin
	if p.begun && pin >= 0 {
		if err := p.pins.SetOutputLow(pin); err != nil {
			return fmt.Errorf("claim pin %d: %w", pin, err)
		}
	}
	p.refresh()
	return nil
}

func (p *NeoPixel) Pin() int { return p.pin }

func (p *NeoPixel) Begun() bool { return p.begun }

// Show renders the current buffer, then mirrors the frame to every driver
// and the preview hub. Rendering errors stop the frame; driver errors are
// collected.
func (p *NeoPixel) Show(ctx context.Context) error {
	if err := p.renderer.Show(ctx, p.strip); err != nil {
		return fmt.Errorf("show: %w", err)
	}
	frame := append([]byte(nil), p.strip.Pixels()...)
	p.currentMA = p.power.Estimate(frame)

	var errs []error
	for _, d := range p.drivers {
		if err := d.Write(frame, p.strip.Type()); err != nil {
			errs = append(errs, fmt.Errorf("driver %T: %w", d, err))
		}
	}
	if p.hub != nil {
		p.hub.Publish(ws.Frame{
			Text:   p.renderer.Frame(p.strip),
			RGB:    frame,
			Layout: p.strip.Type().String(),
		})
	}
	p.refresh()
	return errors.Join(errs...)
}

// Frame returns the text grid of the current buffer.
func (p *NeoPixel) Frame() string {
	return p.renderer.Frame(p.strip)
}

func (p *NeoPixel) SetPixelRGB(n int, r, g, b uint8)     { p.strip.SetPixelRGB(n, r, g, b) }
func (p *NeoPixel) SetPixelRGBW(n int, r, g, b, w uint8) { p.strip.SetPixelRGBW(n, r, g, b, w) }
func (p *NeoPixel) SetPixelColor(n int, c model.Color)   { p.strip.SetPixel(n, c) }
func (p *NeoPixel) GetPixelColor(n int) model.Color      { return p.strip.GetPixel(n) }
func (p *NeoPixel) Clear()                               { p.strip.Clear() }
func (p *NeoPixel) NumPixels() int                       { return p.strip.NumPixels() }
func (p *NeoPixel) GetBrightness() uint8                 { return p.strip.Brightness() }
func (p *NeoPixel) GetPixels() []byte                    { return p.strip.Pixels() }
func (p *NeoPixel) Type() model.Layout                   { return p.strip.Type() }
func (p *NeoPixel) Strip() *model.Strip                  { return p.strip }
func (p *NeoPixel) Grid() layout.Grid                    { return p.grid }

func (p *NeoPixel) SetBrightness(b uint8) {
	p.strip.SetBrightness(b)
	p.refresh()
}

func (p *NeoPixel) UpdateLength(n int) {
	p.strip.UpdateLength(n)
	p.refresh()
}

func (p *NeoPixel) UpdateType(t model.Layout) {
	p.strip.UpdateType(t)
	p.refresh()
}

// Matrix returns a drawer over the grid part of the strand.
func (p *NeoPixel) Matrix() *render.Matrix {
	return render.NewMatrix(p.strip, p.grid)
}

// Health checks the state recorded at the last lifecycle change or Show.
// It may be called from any goroutine.
func (p *NeoPixel) Health() []diag.Diagnostic {
	s := p.snapshot.Load()
	if s == nil {
		return nil
	}
	return diag.Check(*s)
}

func (p *NeoPixel) refresh() {
	p.snapshot.Store(&diag.Snapshot{
		Pixels:     p.strip.NumPixels(),
		Allocated:  p.strip.Allocated(),
		Layout:     p.strip.Type(),
		Brightness: p.strip.Brightness(),
		Pin:        p.pin,
		Begun:      p.begun,
		Grid:       p.grid,
		CurrentMA:  p.currentMA,
		Power:      p.power,
	})
}

// Close releases the pin to input, closes every driver and frees the
// pixel buffer.
func (p *NeoPixel) Close() error {
	var errs []error
	if p.pin >= 0 {
		if err := p.pins.SetInput(p.pin); err != nil {
			errs = append(errs, fmt.Errorf("release pin %d: %w", p.pin, err))
		}
	}
	for _, d := range p.drivers {
		if err := d.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := p.strip.Close(); err != nil {
		errs = append(errs, err)
	}
	p.begun = false
	p.refresh()
	return errors.Join(errs...)
}
