package app

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-neosim/internal/config"
	diag "github.com/coreman2200/funtimes-neosim/internal/diagnostics"
	"github.com/coreman2200/funtimes-neosim/model"
)

const frameEnd = "\n\n\n\n\n\n"

func testConfig() *config.Config {
	return &config.Config{
		Serial:        config.SerialCfg{Baud: -1},
		FrameInterval: config.Duration(time.Millisecond),
	}
}

func build(t *testing.T, cfg *config.Config) (*App, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	a, err := Build(cfg, &out)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a, &out
}

func TestRunPattern(t *testing.T) {
	cfg := testConfig()
	cfg.Pattern = "row_sweep"
	a, out := build(t, cfg)

	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, 12, strings.Count(out.String(), strings.Repeat("C ", 12)))
	assert.Equal(t, 12, strings.Count(out.String(), frameEnd))
	assert.True(t, a.Px.Begun())
}

func TestRunUnknownPattern(t *testing.T) {
	cfg := testConfig()
	cfg.Pattern = "plane_z"
	a, _ := build(t, cfg)
	assert.Error(t, a.Run(context.Background()))
}

func TestRunDemoFrames(t *testing.T) {
	cfg := testConfig()
	cfg.Loops = 3
	a, out := build(t, cfg)

	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, 3, strings.Count(out.String(), frameEnd))
	assert.NotContains(t, out.String(), "X")
}

func TestRunDemoUntilCancelled(t *testing.T) {
	a, out := build(t, testConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := a.Run(ctx)
	// A deadline is not a clean stop, a cancel is.
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Positive(t, strings.Count(out.String(), frameEnd))

	ctx, cancel = context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)
	assert.NoError(t, a.Run(ctx))
}

func TestRunSketch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dot.lua")
	require.NoError(t, os.WriteFile(path, []byte(`
function loop()
  strip:clear()
  strip:setPixelColor(1, 0, 255, 0)
  strip:show()
end
`), 0o644))
	cfg := testConfig()
	cfg.Sketch = path
	cfg.Loops = 2
	a, out := build(t, cfg)

	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, 2, strings.Count(out.String(), "G \n"))
	assert.Equal(t, model.Green, a.Px.GetPixelColor(1))
}

func TestRunPicture(t *testing.T) {
	im := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		im.SetNRGBA(0, y, color.NRGBA{R: 255, A: 255})
		im.SetNRGBA(1, y, color.NRGBA{B: 255, A: 255})
	}
	path := filepath.Join(t.TempDir(), "halves.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, im))
	require.NoError(t, f.Close())

	cfg := testConfig()
	cfg.Picture = path
	a, out := build(t, cfg)
	require.NoError(t, a.Run(context.Background()))

	row := strings.Repeat("R ", 6) + strings.Repeat("B ", 6) + "\n"
	assert.Equal(t, strings.Repeat(row, 12)+"\n\n\n\n\n", out.String())
}

func TestBuildOptions(t *testing.T) {
	cfg := testConfig()
	bright := 40
	cfg.Brightness = &bright
	cfg.Preview.Enabled = true
	cfg.Allocator = "mmap"
	cfg.Layout = "GRBW"
	a, _ := build(t, cfg)

	assert.Equal(t, uint8(40), a.Px.GetBrightness())
	assert.Equal(t, model.NEO_GRBW, a.Px.Type())
	assert.Len(t, a.Px.GetPixels(), 145*4)
	require.NotNil(t, a.Hub)
	ds := a.Hub.Health()
	assert.True(t, diag.Has(ds, "STRIP.NOT_BEGUN"))
	assert.True(t, diag.Has(ds, "LAYOUT.RGBW"))
}

func TestBuildErrors(t *testing.T) {
	for _, cfg := range []*config.Config{
		{Layout: "XYZ"},
		{Allocator: "stack"},
		{Grid: config.GridCfg{Serpentine: "spiral"}},
		{Pins: config.PinsCfg{Driver: "relay"}},
	} {
		_, err := Build(cfg, &bytes.Buffer{})
		assert.Error(t, err)
	}
}
