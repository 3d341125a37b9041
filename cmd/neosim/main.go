package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-neosim/internal/app"
	"github.com/coreman2200/funtimes-neosim/internal/config"
)

func main() {
	// ---- Flags (remain usable; the config file wins where it sets a value) ----
	var (
		configPath = flag.String("config", "neosim.yaml", "path to config file")
		pixels     = flag.Int("pixels", 145, "strand length, level-shifter pixel included")
		pin        = flag.Int("pin", 6, "data pin; negative for none")
		layout     = flag.String("layout", "GRB", "channel order, e.g. GRB, RGBW, GRB+KHZ400")
		brightness = flag.Int("brightness", -1, "initial brightness 0..255; negative leaves colours unscaled")
		baud       = flag.Int("baud", 115200, "emulated serial rate; negative disables pacing")
		sketch     = flag.String("sketch", "", "Lua sketch with setup() and loop()")
		loops      = flag.Int("loops", 0, "stop after this many loop() calls or demo frames; 0 runs forever")
		pattern    = flag.String("pattern", "", "test pattern: index_sweep | rgb_channels | row_sweep | palette")
		picture    = flag.String("picture", "", "SVG, PNG, JPEG, GIF, BMP or WebP to show on the grid")
		fps        = flag.Int("fps", 30, "frames per second for patterns and the demo")
		preview    = flag.String("preview", "", "serve the websocket preview on this address")
		pins       = flag.String("pins", "none", "pin driver: none | gpio | cdev")
		nrzPort    = flag.String("nrz", "", "mirror frames to a real strand on this SPI port (\"-\" for the first one)")
		console    = flag.Bool("console", false, "mirror frames as an ANSI colour line on stderr")
		logLevel   = flag.String("log-level", "info", "debug | info | warn | error")
		logJSON    = flag.Bool("log-json", false, "log as JSON")
	)
	flag.Parse()

	// ---- Load config (optional) ----
	cfg := &config.Config{}
	if c, err := config.Load(*configPath); err != nil {
		if !os.IsNotExist(err) {
			setupLogging(*logLevel, *logJSON)
			log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
		}
	} else {
		cfg = c
	}

	// ---- Effective params (config overrides flags where available) ----
	if cfg.Log.Level == "" {
		cfg.Log.Level = *logLevel
	}
	cfg.Log.JSON = cfg.Log.JSON || *logJSON
	setupLogging(cfg.Log.Level, cfg.Log.JSON)

	if cfg.Pixels == 0 {
		cfg.Pixels = *pixels
	}
	if cfg.Pin == nil {
		cfg.Pin = pin
	}
	if cfg.Layout == "" {
		cfg.Layout = *layout
	}
	if cfg.Brightness == nil && *brightness >= 0 {
		cfg.Brightness = brightness
	}
	if cfg.Serial.Baud == 0 {
		cfg.Serial.Baud = *baud
	}
	cfg.Sketch = firstNonEmpty(cfg.Sketch, *sketch)
	cfg.Pattern = firstNonEmpty(cfg.Pattern, *pattern)
	cfg.Picture = firstNonEmpty(cfg.Picture, *picture)
	if cfg.Loops == 0 {
		cfg.Loops = *loops
	}
	if cfg.FrameInterval == 0 && *fps > 0 {
		cfg.FrameInterval = config.Duration(time.Second / time.Duration(*fps))
	}
	if *preview != "" && !cfg.Preview.Enabled {
		cfg.Preview = config.PreviewCfg{Enabled: true, Addr: *preview}
	}
	cfg.Pins.Driver = firstNonEmpty(cfg.Pins.Driver, *pins)
	if *nrzPort != "" && !cfg.Mirror.NRZ.Enabled {
		cfg.Mirror.NRZ.Enabled = true
		if *nrzPort != "-" {
			cfg.Mirror.NRZ.Port = *nrzPort
		}
	}
	cfg.Mirror.Console = cfg.Mirror.Console || *console

	// ---- Build & run ----
	a, err := app.Build(cfg, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("couldn't set up simulator")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := a.Run(ctx)
	if err := a.Close(); err != nil {
		log.Warn().Err(err).Msg("close")
	}
	if runErr != nil {
		log.Fatal().Err(runErr).Msg("simulator stopped")
	}
	log.Info().Msg("shut down")
}

func setupLogging(level string, useJSON bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	if useJSON {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		// Frames go to stdout; keep logs out of the grid.
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func firstNonEmpty(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
