package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-neosim/internal/layout"
	"github.com/coreman2200/funtimes-neosim/model"
)

// gatedSink reports no room for the first `blocked` queries.
type gatedSink struct {
	bytes.Buffer
	blocked int
	queries int
	err     error
}

func (s *gatedSink) AvailableForWrite() int {
	s.queries++
	if s.blocked > 0 {
		s.blocked--
		return 0
	}
	return 1
}

func (s *gatedSink) Write(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.Buffer.Write(p)
}

func blankRow() string {
	return strings.Repeat(". ", 12) + "\n"
}

func TestShowBlankFrame(t *testing.T) {
	s := model.NewStrip(145, model.NEO_GRB)
	var out bytes.Buffer
	r := NewRenderer(WriterSink{&out}, layout.Default12x12())

	require.NoError(t, r.Show(context.Background(), s))
	assert.Equal(t, strings.Repeat(blankRow(), 12)+"\n\n\n\n\n", out.String())
}

func TestShowSerpentineGlyphs(t *testing.T) {
	s := model.NewStrip(145, model.NEO_GRB)
	s.SetPixel(0, model.White) // sacrificial, never drawn
	s.SetPixel(1, model.Red)
	s.SetPixel(12, model.Green)
	s.SetPixel(13, model.Blue)
	s.SetPixel(144, model.Azure)
	s.SetPixel(133, 0x123456)

	r := NewRenderer(WriterSink{&bytes.Buffer{}}, layout.Default12x12())
	lines := strings.Split(r.Frame(s), "\n")
	require.Len(t, lines, 13)

	assert.Equal(t, "X "+strings.Repeat(". ", 10)+"a ", lines[0])
	assert.Equal(t, "B "+strings.Repeat(". ", 11), lines[10])
	assert.Equal(t, "G "+strings.Repeat(". ", 10)+"R ", lines[11])
	assert.Empty(t, lines[12])
	assert.NotContains(t, r.Frame(s), "W")
}

func TestShowMatchesFrame(t *testing.T) {
	s := model.NewStrip(145, model.NEO_RGB)
	for i := 0; i < s.NumPixels(); i++ {
		s.SetPixel(i, defaultEntries[i%len(defaultEntries)].Color)
	}
	var out bytes.Buffer
	r := NewRenderer(WriterSink{&out}, layout.Default12x12())
	require.NoError(t, r.Show(context.Background(), s))
	assert.Equal(t, r.Frame(s)+"\n\n\n\n\n", out.String())
}

func TestShowWithoutBufferWritesNothing(t *testing.T) {
	sink := &gatedSink{}
	r := NewRenderer(sink, layout.Default12x12())
	require.NoError(t, r.Show(context.Background(), model.NewEmptyStrip()))
	assert.Zero(t, sink.Len())
	assert.Zero(t, sink.queries)
}

func TestShowWaitsForSpace(t *testing.T) {
	s := model.NewStrip(145, model.NEO_GRB)
	sink := &gatedSink{blocked: 3}
	r := NewRenderer(sink, layout.Default12x12())
	r.Poll = time.Microsecond

	require.NoError(t, r.Show(context.Background(), s))
	// One query per glyph plus one for the scroll block, plus the refusals.
	assert.Equal(t, 144+1+3, sink.queries)
	assert.Equal(t, strings.Repeat(blankRow(), 12)+"\n\n\n\n\n", sink.String())
}

func TestShowCancelledWhileBlocked(t *testing.T) {
	s := model.NewStrip(145, model.NEO_GRB)
	sink := &gatedSink{blocked: 1 << 30}
	r := NewRenderer(sink, layout.Default12x12())
	r.Poll = time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := r.Show(ctx, s)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, sink.Len())
}

func TestShowWriteError(t *testing.T) {
	s := model.NewStrip(145, model.NEO_GRB)
	boom := errors.New("line dropped")
	r := NewRenderer(&gatedSink{err: boom}, layout.Default12x12())
	assert.ErrorIs(t, r.Show(context.Background(), s), boom)
}

func TestPalette(t *testing.T) {
	p := DefaultPalette()
	assert.Equal(t, byte('o'), p.Glyph(model.FlushOrange))
	assert.Equal(t, byte('i'), p.Glyph(model.ElectricIndigo))
	assert.Equal(t, byte('X'), p.Glyph(0x010101))
	// W must match too.
	assert.Equal(t, byte('X'), p.Glyph(0x01FFFFFF))

	c, ok := p.Color('g')
	assert.True(t, ok)
	assert.Equal(t, model.SpringGreen, c)
	_, ok = p.Color('?')
	assert.False(t, ok)
}

func TestMatrixDraw(t *testing.T) {
	s := model.NewStrip(145, model.NEO_GRB)
	g := layout.Default12x12()
	m := NewMatrix(s, g)
	assert.Equal(t, image.Rect(0, 0, 12, 12), m.Bounds())
	assert.Equal(t, "Matrix{12x12@1}", m.String())

	src := image.NewNRGBA(image.Rect(0, 0, 12, 12))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(11, 11, color.NRGBA{B: 255, A: 255})
	require.NoError(t, m.Draw(m.Bounds(), src, image.Point{}))

	// Top-left of the image is the top row of the panel.
	assert.Equal(t, model.Red, s.GetPixel(g.Index(0, 11)))
	assert.Equal(t, model.Blue, s.GetPixel(g.Index(11, 0)))
	assert.Equal(t, model.Color(0), s.GetPixel(0))

	r := NewRenderer(WriterSink{&bytes.Buffer{}}, g)
	lines := strings.Split(r.Frame(s), "\n")
	assert.Equal(t, "R "+strings.Repeat(". ", 11), lines[0])
	assert.Equal(t, strings.Repeat(". ", 11)+"B ", lines[11])

	require.NoError(t, m.Halt())
	assert.Equal(t, make([]byte, 145*3), s.Pixels())
}

func TestMatrixDrawClipsToSource(t *testing.T) {
	s := model.NewStrip(145, model.NEO_GRB)
	m := NewMatrix(s, layout.Default12x12())
	src := image.NewUniform(color.White)
	require.NoError(t, m.Draw(image.Rect(10, 10, 40, 40), src, image.Point{}))
	assert.Equal(t, model.White, s.GetPixel(layout.Default12x12().Index(11, 0)))
	assert.Equal(t, model.Color(0), s.GetPixel(layout.Default12x12().Index(9, 0)))
}
