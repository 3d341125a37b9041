package render

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coreman2200/funtimes-neosim/internal/layout"
	"github.com/coreman2200/funtimes-neosim/model"
)

const (
	DefaultScrollLines = 5
	DefaultPoll        = time.Millisecond
)

// Renderer draws a strip as a glyph grid on a Sink, top row first.
type Renderer struct {
	Grid    layout.Grid
	Palette *Palette
	Sink    Sink

	// ScrollLines blank lines follow every frame.
	ScrollLines int
	// Poll is how often a full sink is re-checked.
	Poll time.Duration
}

func NewRenderer(sink Sink, g layout.Grid) *Renderer {
	return &Renderer{
		Grid:        g,
		Palette:     DefaultPalette(),
		Sink:        sink,
		ScrollLines: DefaultScrollLines,
		Poll:        DefaultPoll,
	}
}

func (r *Renderer) glyphAt(s *model.Strip, x, y int) byte {
	return r.Palette.Glyph(s.GetPixel(r.Grid.Index(x, y)))
}

// Show writes one frame. Each glyph, and the scroll block, waits until the
// sink has room. It stops at the first write error or when ctx is done.
// A strip without a buffer renders nothing.
func (r *Renderer) Show(ctx context.Context, s *model.Strip) error {
	if !s.Allocated() {
		return nil
	}
	cell := []byte{0, ' '}
	for y := r.Grid.Dim.Rows - 1; y >= 0; y-- {
		for x := 0; x < r.Grid.Dim.Cols; x++ {
			if err := r.waitForSpace(ctx); err != nil {
				return err
			}
			cell[0] = r.glyphAt(s, x, y)
			if _, err := r.Sink.Write(cell); err != nil {
				return fmt.Errorf("write glyph: %w", err)
			}
		}
		if _, err := r.Sink.Write([]byte{'\n'}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	if err := r.waitForSpace(ctx); err != nil {
		return err
	}
	if _, err := r.Sink.Write([]byte(strings.Repeat("\n", r.ScrollLines))); err != nil {
		return fmt.Errorf("write scroll: %w", err)
	}
	return nil
}

// Frame returns the grid text Show would write, without the scroll block.
func (r *Renderer) Frame(s *model.Strip) string {
	if !s.Allocated() {
		return ""
	}
	var sb strings.Builder
	sb.Grow(r.Grid.Dim.Rows * (2*r.Grid.Dim.Cols + 1))
	for y := r.Grid.Dim.Rows - 1; y >= 0; y-- {
		for x := 0; x < r.Grid.Dim.Cols; x++ {
			sb.WriteByte(r.glyphAt(s, x, y))
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (r *Renderer) waitForSpace(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.Sink.AvailableForWrite() > 0 {
		return nil
	}
	poll := r.Poll
	if poll <= 0 {
		poll = DefaultPoll
	}
	t := time.NewTicker(poll)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if r.Sink.AvailableForWrite() > 0 {
				return nil
			}
		}
	}
}
