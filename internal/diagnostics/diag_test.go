package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/funtimes-neosim/internal/layout"
	"github.com/coreman2200/funtimes-neosim/model"
)

func healthy() Snapshot {
	return Snapshot{
		Pixels:     145,
		Allocated:  true,
		Layout:     model.NEO_GRB,
		Brightness: 255,
		Pin:        6,
		Begun:      true,
		Grid:       layout.Default12x12(),
	}
}

func TestHealthyStrip(t *testing.T) {
	ds := Check(healthy())
	assert.Empty(t, ds)
	assert.Equal(t, Info, Worst(ds))
}

func TestEmptyStripStopsChecks(t *testing.T) {
	s := healthy()
	s.Allocated = false
	s.Pixels = 0
	s.Pin = -1
	ds := Check(s)
	assert.Len(t, ds, 1)
	assert.True(t, Has(ds, "STRIP.EMPTY"))
	assert.Equal(t, Err, Worst(ds))
}

func TestChecks(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Snapshot)
		code   string
		sev    Severity
	}{
		{"short", func(s *Snapshot) { s.Pixels = 100 }, "STRIP.SHORT", Warn},
		{"long", func(s *Snapshot) { s.Pixels = 200 }, "STRIP.LONG", Info},
		{"pin", func(s *Snapshot) { s.Pin = -1 }, "PIN.UNSET", Warn},
		{"begin", func(s *Snapshot) { s.Begun = false }, "STRIP.NOT_BEGUN", Info},
		{"dark", func(s *Snapshot) { s.Brightness = 0 }, "BRIGHTNESS.ZERO", Warn},
		{"scaled", func(s *Snapshot) { s.Brightness = 100 }, "BRIGHTNESS.SCALED", Info},
		{"rgbw", func(s *Snapshot) { s.Layout = model.NEO_GRBW }, "LAYOUT.RGBW", Info},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := healthy()
			tt.mutate(&s)
			ds := Check(s)
			assert.Len(t, ds, 1)
			assert.True(t, Has(ds, tt.code))
			assert.Equal(t, tt.sev, Worst(ds))
		})
	}
}

func TestPowerEstimate(t *testing.T) {
	p := Power{}
	assert.Zero(t, p.Estimate(nil))
	// One pixel at full white on a 3-channel strand.
	assert.InDelta(t, 60.0, p.Estimate([]byte{255, 255, 255}), 1e-9)
	assert.InDelta(t, 10.0, Power{ChannelMA: 10}.Estimate([]byte{255, 0, 0}), 1e-9)
}

func TestPowerBudget(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		code    string
	}{
		{"under", 100, ""},
		{"near", 950, "POWER.NEAR_BUDGET"},
		{"over", 1200, "POWER.OVER_BUDGET"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := healthy()
			s.Power = Power{BudgetMA: 1000}
			s.CurrentMA = tt.current
			ds := Check(s)
			if tt.code == "" {
				assert.Empty(t, ds)
				return
			}
			assert.Len(t, ds, 1)
			assert.True(t, Has(ds, tt.code))
		})
	}

	s := healthy()
	s.CurrentMA = 1e6
	assert.Empty(t, Check(s), "no budget, no power checks")
}
