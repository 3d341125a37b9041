package render

import (
	"fmt"
	"image"
	"image/color"

	"periph.io/x/conn/v3/display"

	"github.com/coreman2200/funtimes-neosim/internal/layout"
	"github.com/coreman2200/funtimes-neosim/model"
)

// Matrix exposes the grid portion of a strip as a display. Image row 0 is
// the top row of the panel.
type Matrix struct {
	Strip *model.Strip
	Grid  layout.Grid
}

var _ display.Drawer = (*Matrix)(nil)

func NewMatrix(s *model.Strip, g layout.Grid) *Matrix {
	return &Matrix{Strip: s, Grid: g}
}

func (m *Matrix) String() string {
	return fmt.Sprintf("Matrix{%dx%d@%d}", m.Grid.Dim.Cols, m.Grid.Dim.Rows, m.Grid.Offset)
}

// Halt turns the whole strip off.
func (m *Matrix) Halt() error {
	m.Strip.Clear()
	return nil
}

func (m *Matrix) ColorModel() color.Model {
	return color.NRGBAModel
}

func (m *Matrix) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Grid.Dim.Cols, m.Grid.Dim.Rows)
}

// Draw copies src onto r of the panel, starting at sp in src.
func (m *Matrix) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	clipped := r.Intersect(m.Bounds())
	sp = sp.Add(clipped.Min.Sub(r.Min))
	r = clipped
	srcR := src.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			p := image.Pt(sp.X+x-r.Min.X, sp.Y+y-r.Min.Y)
			if !p.In(srcR) {
				continue
			}
			row := m.Grid.Dim.Rows - 1 - y
			m.Strip.SetPixel(m.Grid.Index(x, row), model.FromColor(src.At(p.X, p.Y)))
		}
	}
	return nil
}
