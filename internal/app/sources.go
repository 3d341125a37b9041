package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-neosim/internal/pattern"
	"github.com/coreman2200/funtimes-neosim/internal/picture"
	"github.com/coreman2200/funtimes-neosim/internal/render"
	"github.com/coreman2200/funtimes-neosim/internal/sketch"
)

func (a *App) runSketch(ctx context.Context, path string, loops int) error {
	rt := sketch.NewRuntime(a.Px)
	defer rt.Close()
	if err := rt.LoadFile(path); err != nil {
		return err
	}
	return rt.Run(ctx, loops)
}

// tick calls step once per frame interval, compensating for the time each
// frame took, until step reports completion or ctx is done.
func (a *App) tick(ctx context.Context, step func() (bool, error)) error {
	interval := a.Cfg.GetFrameInterval()
	t := time.NewTimer(0)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			start := time.Now()
			more, err := step()
			if err != nil || !more {
				return err
			}
			t.Reset(max(interval-time.Since(start), 0))
		}
	}
}

func (a *App) runPattern(ctx context.Context, name string) error {
	kind, err := pattern.Parse(name)
	if err != nil {
		return err
	}
	plan := pattern.Plan{Kind: kind}
	for _, e := range render.DefaultPalette().Entries {
		plan.Colors = append(plan.Colors, e.Color)
	}
	runner := pattern.NewRunner(plan)
	frames := 0
	err = a.tick(ctx, func() (bool, error) {
		if !runner.Step(a.Px.Strip(), a.Grid) {
			return false, nil
		}
		frames++
		return true, a.Px.Show(ctx)
	})
	log.Info().Str("pattern", name).Int("frames", frames).Msg("test pattern finished")
	return err
}

func (a *App) runPicture(ctx context.Context, path string) error {
	img, err := picture.Open(path, a.Grid.Dim.Cols, a.Grid.Dim.Rows)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if err := picture.Show(a.Px.Matrix(), img); err != nil {
		return err
	}
	return a.Px.Show(ctx)
}

// runDemo turns the palette wheel one cell per frame. loops <= 0 runs until
// ctx is done.
func (a *App) runDemo(ctx context.Context, loops int) error {
	colors := render.DefaultPalette().Entries
	frame := 0
	return a.tick(ctx, func() (bool, error) {
		if loops > 0 && frame >= loops {
			return false, nil
		}
		for y := 0; y < a.Grid.Dim.Rows; y++ {
			for x := 0; x < a.Grid.Dim.Cols; x++ {
				c := colors[(x+y+frame)%len(colors)].Color
				a.Px.SetPixelColor(a.Grid.Index(x, y), c)
			}
		}
		frame++
		return true, a.Px.Show(ctx)
	})
}
