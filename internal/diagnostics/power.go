package diagnostics

import "fmt"

// DefaultChannelMA is the draw of one WS2812 channel at full scale.
const DefaultChannelMA = 20.0

// Power estimates strand current from the raw buffer. Every byte is one
// channel; its share of ChannelMA is linear in its value.
type Power struct {
	ChannelMA float64 // mA per channel at 255; <=0 uses DefaultChannelMA
	BudgetMA  float64 // supply budget; 0 disables the budget checks
	Knee      float64 // fraction of budget that counts as close; default 0.9
}

// Estimate returns the current in mA the buffer would draw if latched.
func (p Power) Estimate(px []byte) float64 {
	chanMA := p.ChannelMA
	if chanMA <= 0 {
		chanMA = DefaultChannelMA
	}
	var sum int
	for _, b := range px {
		sum += int(b)
	}
	return float64(sum) * chanMA / 255
}

func (p Power) knee() float64 {
	if p.Knee > 0 && p.Knee < 1 {
		return p.Knee
	}
	return 0.9
}

func checkPower(s Snapshot) []Diagnostic {
	if s.Power.BudgetMA <= 0 {
		return nil
	}
	ev := map[string]any{"current_ma": s.CurrentMA, "budget_ma": s.Power.BudgetMA}
	ratio := s.CurrentMA / s.Power.BudgetMA
	switch {
	case ratio > 1:
		return []Diagnostic{{
			Severity: Warn, Code: "POWER.OVER_BUDGET",
			Summary:        "Last frame draws more current than the supply budget",
			Detail:         fmt.Sprintf("%.0f mA against %.0f mA", s.CurrentMA, s.Power.BudgetMA),
			LikelyCauses:   []string{"many pixels at full white", "brightness left at 255"},
			SuggestedFixes: []string{"lower brightness with setBrightness", "light fewer pixels at once"},
			Evidence:       ev,
		}}
	case ratio > s.Power.knee():
		return []Diagnostic{{
			Severity: Info, Code: "POWER.NEAR_BUDGET",
			Summary:  "Last frame is close to the supply budget",
			Evidence: ev,
		}}
	}
	return nil
}
