package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/funtimes-neosim/internal/config"
	diag "github.com/coreman2200/funtimes-neosim/internal/diagnostics"
	"github.com/coreman2200/funtimes-neosim/internal/layout"
	"github.com/coreman2200/funtimes-neosim/internal/led"
	"github.com/coreman2200/funtimes-neosim/internal/serial"
	"github.com/coreman2200/funtimes-neosim/internal/sim"
	"github.com/coreman2200/funtimes-neosim/internal/ws"
	"github.com/coreman2200/funtimes-neosim/model"
)

// App is a fully wired simulator: UART sink, pins, mirrors and preview.
type App struct {
	Cfg  *config.Config
	Px   *sim.NeoPixel
	Hub  *ws.Hub
	Port *serial.Port
	Grid layout.Grid

	closers []io.Closer
}

// Build wires everything cfg asks for. Frames are written to out.
func Build(cfg *config.Config, out io.Writer) (*App, error) {
	lay, err := cfg.GetLayout()
	if err != nil {
		return nil, err
	}
	grid, err := cfg.GetGrid()
	if err != nil {
		return nil, err
	}
	alloc, err := cfg.GetAllocator()
	if err != nil {
		return nil, err
	}
	n := cfg.GetPixels()

	a := &App{
		Cfg:  cfg,
		Grid: grid,
		Port: serial.New(out, cfg.GetBaud(), serial.WithTXBuffer(cfg.GetTXBuffer())),
	}
	opts := []sim.Option{
		sim.WithGrid(grid),
		sim.WithSink(a.Port),
		sim.WithStripOptions(model.WithAllocator(alloc)),
		sim.WithPower(diag.Power{BudgetMA: cfg.Power.BudgetMA, ChannelMA: cfg.Power.ChannelMA}),
	}

	pins, err := a.openPins()
	if err != nil {
		return nil, err
	}
	opts = append(opts, sim.WithPins(pins))

	if cfg.Mirror.NRZ.Enabled {
		freq := physic.Frequency(cfg.GetNRZFreqKHz()) * physic.KiloHertz
		drv, err := led.OpenNRZ(cfg.Mirror.NRZ.Port, n, lay, freq)
		if err != nil {
			log.Warn().Err(err).Str("port", cfg.Mirror.NRZ.Port).Msg("NRZ mirror unavailable; continuing without it")
		} else {
			opts = append(opts, sim.WithDriver(drv))
		}
	}
	if cfg.Mirror.Console {
		opts = append(opts, sim.WithDriver(led.NewConsole(n)))
	}
	if cfg.Preview.Enabled {
		a.Hub = ws.NewHub()
		opts = append(opts, sim.WithHub(a.Hub))
	}

	a.Px = sim.New(n, cfg.GetPin(), lay, opts...)
	if a.Px.NumPixels() != n {
		a.Close()
		return nil, fmt.Errorf("couldn't allocate %d pixels", n)
	}
	if cfg.Brightness != nil {
		a.Px.SetBrightness(uint8(min(max(*cfg.Brightness, 0), 255)))
	}
	if a.Hub != nil {
		a.Hub.Health = a.Px.Health
	}
	log.Info().
		Int("pixels", n).
		Stringer("layout", lay).
		Int("pin", cfg.GetPin()).
		Stringer("port", a.Port).
		Msg("simulator ready")
	return a, nil
}

func (a *App) openPins() (led.PinController, error) {
	switch a.Cfg.Pins.Driver {
	case "", "none":
		return led.NoPins{}, nil
	case "gpio":
		return led.OpenGPIOPins()
	case "cdev":
		c := led.NewCdevPins(a.Cfg.Pins.Chip)
		a.closers = append(a.closers, c)
		return c, nil
	}
	return nil, fmt.Errorf("unknown pin driver %q", a.Cfg.Pins.Driver)
}

// Run begins the strand and drives it until the source completes or ctx is
// done. With the preview enabled the HTTP server keeps serving the last
// frame until ctx is done.
func (a *App) Run(ctx context.Context) error {
	var srv *http.Server
	if a.Hub != nil {
		ln, err := net.Listen("tcp", a.Cfg.GetPreviewAddr())
		if err != nil {
			return fmt.Errorf("preview listen: %w", err)
		}
		srv = &http.Server{
			Handler:      a.Hub.Handler(),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			log.Info().Str("addr", ln.Addr().String()).Msg("preview server starting")
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("preview server crashed")
			}
		}()
		defer a.shutdown(srv)
	}

	if err := a.Px.Begin(); err != nil {
		return err
	}
	err := a.drive(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		return err
	}
	if srv != nil {
		<-ctx.Done()
	}
	return nil
}

func (a *App) drive(ctx context.Context) error {
	switch {
	case a.Cfg.Sketch != "":
		return a.runSketch(ctx, a.Cfg.Sketch, a.Cfg.Loops)
	case a.Cfg.Pattern != "":
		return a.runPattern(ctx, a.Cfg.Pattern)
	case a.Cfg.Picture != "":
		return a.runPicture(ctx, a.Cfg.Picture)
	}
	return a.runDemo(ctx, a.Cfg.Loops)
}

func (a *App) shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.GetShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("preview shutdown")
	}
	_ = a.Hub.Close()
}

// Close releases the pin, the mirrors and the pixel buffer.
func (a *App) Close() error {
	var errs []error
	if a.Px != nil {
		errs = append(errs, a.Px.Close())
	}
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
