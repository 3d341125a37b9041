package layout

type Dim struct{ Rows, Cols int }

// Serpentine describes how a single strand snakes through the grid.
type Serpentine struct {
	// XFlipEveryRow alternates the run direction on each row.
	XFlipEveryRow bool
	// FirstRowFlipped makes row 0 (and every other row after it) run from
	// the right edge to the left. Otherwise the odd rows are the flipped ones.
	FirstRowFlipped bool
}

// Grid is a fixed rectangular panel wired from the bottom row up.
type Grid struct {
	Dim   Dim
	Order Serpentine
	// Offset is the strand index of the first grid pixel. Panels with a
	// sacrificial level-shifter pixel at the head of the strand start at 1.
	Offset int
}

// Default12x12 is the 145-pixel panel: pixel 0 shifts levels, 1..144 form
// the grid with row 0 running right to left.
func Default12x12() Grid {
	return Grid{
		Dim:    Dim{Rows: 12, Cols: 12},
		Order:  Serpentine{XFlipEveryRow: true, FirstRowFlipped: true},
		Offset: 1,
	}
}

// Index maps column x, row y (row 0 at the bottom) to a strand index.
func (g Grid) Index(x, y int) int {
	xx := x
	if g.Order.XFlipEveryRow && (y%2 == 0) == g.Order.FirstRowFlipped {
		xx = g.Dim.Cols - 1 - x
	}
	return g.Offset + y*g.Dim.Cols + xx
}

func (g Grid) Contains(x, y int) bool {
	return x >= 0 && x < g.Dim.Cols && y >= 0 && y < g.Dim.Rows
}

// Count is the number of pixels on the grid.
func (g Grid) Count() int {
	return g.Dim.Rows * g.Dim.Cols
}

// StrandLength is the number of strand pixels needed to reach the last grid
// pixel.
func (g Grid) StrandLength() int {
	return g.Offset + g.Count()
}
