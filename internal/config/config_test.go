package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-neosim/internal/layout"
	"github.com/coreman2200/funtimes-neosim/model"
)

func write(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "neosim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	c, err := Load(write(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, 145, c.GetPixels())
	assert.Equal(t, 6, c.GetPin())
	l, err := c.GetLayout()
	require.NoError(t, err)
	assert.Equal(t, model.NEO_GRB, l)
	g, err := c.GetGrid()
	require.NoError(t, err)
	assert.Equal(t, layout.Default12x12(), g)
	assert.Equal(t, 115200, c.GetBaud())
	assert.Equal(t, 64, c.GetTXBuffer())
	assert.Equal(t, ":8080", c.GetPreviewAddr())
	assert.Equal(t, 2500, c.GetNRZFreqKHz())
	assert.Equal(t, time.Second/30, c.GetFrameInterval())
	assert.Equal(t, 5*time.Second, c.GetShutdownTimeout())
	a, err := c.GetAllocator()
	require.NoError(t, err)
	assert.Equal(t, model.HeapAllocator{}, a)
}

func TestLoad(t *testing.T) {
	c, err := Load(write(t, `
pixels: 65
pin: -1
layout: rgbw+khz400
brightness: 40
allocator: mmap
grid:
  rows: 8
  cols: 8
  offset: 0
  serpentine: odd
serial:
  baud: -1
mirror:
  nrz:
    enabled: true
    port: SPI0.0
  console: true
preview:
  enabled: true
  addr: 127.0.0.1:9000
log:
  level: debug
sketch: rainbow.lua
loops: 10
frame_interval: 50ms
shutdown_timeout: 2s
`))
	require.NoError(t, err)
	assert.Equal(t, 65, c.GetPixels())
	assert.Equal(t, -1, c.GetPin())
	l, err := c.GetLayout()
	require.NoError(t, err)
	assert.Equal(t, model.NEO_RGBW|model.NEO_KHZ400, l)
	require.NotNil(t, c.Brightness)
	assert.Equal(t, 40, *c.Brightness)

	g, err := c.GetGrid()
	require.NoError(t, err)
	assert.Equal(t, layout.Grid{Dim: layout.Dim{Rows: 8, Cols: 8}, Order: layout.Serpentine{XFlipEveryRow: true}}, g)

	assert.Equal(t, -1, c.GetBaud())
	assert.True(t, c.Mirror.NRZ.Enabled)
	assert.Equal(t, "SPI0.0", c.Mirror.NRZ.Port)
	assert.True(t, c.Mirror.Console)
	assert.Equal(t, "127.0.0.1:9000", c.GetPreviewAddr())
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "rainbow.lua", c.Sketch)
	assert.Equal(t, 10, c.Loops)
	assert.Equal(t, 50*time.Millisecond, c.GetFrameInterval())
	assert.Equal(t, 2*time.Second, c.GetShutdownTimeout())
	a, err := c.GetAllocator()
	require.NoError(t, err)
	assert.Equal(t, model.MappedAllocator{}, a)
}

func TestInvalidValues(t *testing.T) {
	_, err := Load(write(t, "frame_interval: soon\n"))
	assert.Error(t, err)

	c := &Config{Layout: "BGRX", Allocator: "stack", Grid: GridCfg{Serpentine: "zigzag"}}
	_, err = c.GetLayout()
	assert.Error(t, err)
	_, err = c.GetAllocator()
	assert.Error(t, err)
	_, err = c.GetGrid()
	assert.Error(t, err)

	neg := -2
	_, err = (&Config{Grid: GridCfg{Offset: &neg}}).GetGrid()
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	pin := 3
	in := &Config{
		Pixels:        20,
		Pin:           &pin,
		Layout:        "GRB",
		FrameInterval: Duration(250 * time.Millisecond),
		Log:           LogCfg{Level: "warn"},
	}
	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, Save(path, in))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestExampleConfig(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "examples", "neosim.yaml"))
	require.NoError(t, err)

	g, err := c.GetGrid()
	require.NoError(t, err)
	assert.Equal(t, layout.Default12x12(), g)
	assert.Equal(t, 6, c.GetPin())
	assert.Equal(t, 2000.0, c.Power.BudgetMA)
	assert.Equal(t, 33*time.Millisecond, c.GetFrameInterval())
	assert.Equal(t, "examples/wheel.lua", c.Sketch)
	assert.True(t, c.Preview.Enabled)
}
