package pattern

import (
	"fmt"

	"github.com/coreman2200/funtimes-neosim/internal/layout"
	"github.com/coreman2200/funtimes-neosim/model"
)

type Kind string

const (
	None       Kind = ""
	IndexSweep Kind = "index_sweep"
	RGBTest    Kind = "rgb_channels"
	RowSweep   Kind = "row_sweep"
	Swatch     Kind = "palette"
)

var Kinds = []Kind{IndexSweep, RGBTest, RowSweep, Swatch}

func Parse(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return None, fmt.Errorf("unknown test pattern %q", s)
}

type Plan struct {
	Kind Kind
	// Colors used by the swatch, in order; rows wrap around.
	Colors []model.Color
}

type Runner struct {
	plan Plan
	step int
}

func NewRunner(plan Plan) *Runner { return &Runner{plan: plan} }
func (r *Runner) Kind() Kind      { return r.plan.Kind }

// Step clears s and draws the next frame; it returns false when complete,
// leaving s cleared.
func (r *Runner) Step(s *model.Strip, g layout.Grid) bool {
	s.Clear()
	n := s.NumPixels()

	switch r.plan.Kind {
	case IndexSweep:
		if r.step >= n {
			return false
		}
		s.SetPixel(r.step, model.White)
	case RGBTest:
		if r.step >= 3 {
			return false
		}
		c := [3]model.Color{model.Red, model.Green, model.Blue}[r.step]
		for i := 0; i < n; i++ {
			s.SetPixel(i, c)
		}
	case RowSweep:
		if r.step >= g.Dim.Rows {
			return false
		}
		for x := 0; x < g.Dim.Cols; x++ {
			s.SetPixel(g.Index(x, r.step), model.Cyan)
		}
	case Swatch:
		if r.step >= 1 || len(r.plan.Colors) == 0 {
			return false
		}
		i := 0
		for y := g.Dim.Rows - 1; y >= 0; y-- {
			for x := 0; x < g.Dim.Cols; x++ {
				s.SetPixel(g.Index(x, y), r.plan.Colors[i%len(r.plan.Colors)])
				i++
			}
		}
	default:
		return false
	}
	r.step++
	return true
}
