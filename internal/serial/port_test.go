package serial

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-neosim/internal/layout"
	"github.com/coreman2200/funtimes-neosim/internal/render"
	"github.com/coreman2200/funtimes-neosim/model"
)

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("cable unplugged") }

func TestUnpacedPassesThrough(t *testing.T) {
	var out bytes.Buffer
	p := New(&out, 0)
	assert.Equal(t, "serial{unpaced}", p.String())
	assert.Zero(t, p.Baud())
	assert.Equal(t, DefaultTXBuffer, p.AvailableForWrite())

	payload := strings.Repeat("x", 1000)
	n, err := p.Write([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, 1000, n)
	assert.Equal(t, payload, out.String())
	assert.Equal(t, DefaultTXBuffer, p.AvailableForWrite())
	assert.NoError(t, p.Flush(context.Background()))
}

func TestPacedBufferFillsAndDrains(t *testing.T) {
	var out bytes.Buffer
	// 1000 bytes/s: one byte per millisecond.
	p := New(&out, 10000, WithTXBuffer(16))
	assert.Equal(t, "serial{10000 baud}", p.String())
	assert.Equal(t, 16, p.AvailableForWrite())

	_, err := p.Write(make([]byte, 16))
	require.NoError(t, err)
	assert.Less(t, p.AvailableForWrite(), 16)

	require.NoError(t, p.Flush(context.Background()))
	assert.GreaterOrEqual(t, p.AvailableForWrite(), 15)
}

func TestPacedWriteTakesTime(t *testing.T) {
	var out bytes.Buffer
	p := New(&out, 100000, WithTXBuffer(8)) // 10 bytes/ms

	start := time.Now()
	n, err := p.Write(make([]byte, 8+200))
	require.NoError(t, err)
	assert.Equal(t, 208, n)
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
	assert.Equal(t, 208, out.Len())
}

func TestWriteContextCancelled(t *testing.T) {
	var out bytes.Buffer
	p := New(&out, 10, WithTXBuffer(4)) // one byte per second
	_, err := p.Write(make([]byte, 4))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	n, err := p.WriteContext(ctx, []byte("more"))
	assert.Error(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 4, out.Len())

	assert.ErrorIs(t, p.Flush(ctx), context.DeadlineExceeded)
}

func TestWriteErrorIsWrapped(t *testing.T) {
	p := New(brokenWriter{}, 0)
	_, err := p.Write([]byte("hi"))
	assert.ErrorContains(t, err, "cable unplugged")
}

func TestRendererOnPort(t *testing.T) {
	var out bytes.Buffer
	p := New(&out, 2000000)
	s := model.NewStrip(145, model.NEO_GRB)
	s.SetPixel(1, model.Yellow)

	r := render.NewRenderer(p, layout.Default12x12())
	require.NoError(t, r.Show(context.Background(), s))
	assert.Equal(t, r.Frame(s)+"\n\n\n\n\n", out.String())
	assert.Contains(t, out.String(), "Y \n")
}
