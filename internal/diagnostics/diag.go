package diagnostics

import (
	"github.com/coreman2200/funtimes-neosim/internal/layout"
	"github.com/coreman2200/funtimes-neosim/model"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// Snapshot is the strand state the checks look at.
type Snapshot struct {
	Pixels     int
	Allocated  bool
	Layout     model.Layout
	Brightness uint8
	Pin        int
	Begun      bool
	Grid       layout.Grid

	// CurrentMA is the estimate for the last shown frame.
	CurrentMA float64
	Power     Power
}

// Check runs every strand check against s.
func Check(s Snapshot) []Diagnostic {
	var out []Diagnostic
	if !s.Allocated || s.Pixels == 0 {
		out = append(out, Diagnostic{
			Severity: Err, Code: "STRIP.EMPTY", Summary: "Strip has no pixel buffer",
			LikelyCauses:   []string{"length set to 0", "pixel buffer allocation failed"},
			SuggestedFixes: []string{"call updateLength with a positive count"},
			Evidence:       map[string]any{"pixels": s.Pixels},
		})
		return out
	}
	if want := s.Grid.StrandLength(); s.Pixels < want {
		out = append(out, Diagnostic{
			Severity: Warn, Code: "STRIP.SHORT", Summary: "Strip is shorter than the grid",
			Detail:   "grid cells past the end of the strip are drawn dark",
			Evidence: map[string]any{"pixels": s.Pixels, "grid_needs": want},
		})
	} else if s.Pixels > want {
		out = append(out, Diagnostic{
			Severity: Info, Code: "STRIP.LONG", Summary: "Pixels beyond the grid are not drawn",
			Evidence: map[string]any{"pixels": s.Pixels, "grid_needs": want},
		})
	}
	if s.Pin < 0 {
		out = append(out, Diagnostic{
			Severity: Warn, Code: "PIN.UNSET", Summary: "No data pin assigned",
			SuggestedFixes: []string{"call setPin before begin"},
		})
	}
	if !s.Begun {
		out = append(out, Diagnostic{
			Severity: Info, Code: "STRIP.NOT_BEGUN", Summary: "begin has not been called",
		})
	}
	if s.Brightness == 0 {
		out = append(out, Diagnostic{
			Severity: Warn, Code: "BRIGHTNESS.ZERO", Summary: "Brightness is 0, every pixel is off",
		})
	} else if s.Brightness != 255 {
		out = append(out, Diagnostic{
			Severity: Info, Code: "BRIGHTNESS.SCALED", Summary: "Scaled colours may not match palette entries",
			Evidence: map[string]any{"brightness": s.Brightness},
		})
	}
	if !s.Layout.ThreeBytes() {
		out = append(out, Diagnostic{
			Severity: Info, Code: "LAYOUT.RGBW", Summary: "Pixels with white set draw as unknown",
			Evidence: map[string]any{"layout": s.Layout.String()},
		})
	}
	return append(out, checkPower(s)...)
}

// Worst returns the highest severity present, or Info for none.
func Worst(ds []Diagnostic) Severity {
	worst := Info
	for _, d := range ds {
		switch d.Severity {
		case Err:
			return Err
		case Warn:
			worst = Warn
		}
	}
	return worst
}

func Has(ds []Diagnostic, code string) bool {
	for _, d := range ds {
		if d.Code == code {
			return true
		}
	}
	return false
}
