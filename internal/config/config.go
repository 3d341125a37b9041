package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-neosim/internal/layout"
	"github.com/coreman2200/funtimes-neosim/model"
)

type GridCfg struct {
	Rows   int  `yaml:"rows"`
	Cols   int  `yaml:"cols"`
	Offset *int `yaml:"offset,omitempty"`
	// Serpentine is "even" (row 0 runs right to left), "odd" or "none".
	Serpentine string `yaml:"serpentine"`
}

type SerialCfg struct {
	Baud     int `yaml:"baud"` // <0 disables pacing
	TXBuffer int `yaml:"tx_buffer"`
}

type PinsCfg struct {
	Driver string `yaml:"driver"` // "none" | "gpio" | "cdev"
	Chip   string `yaml:"chip,omitempty"`
}

type NRZCfg struct {
	Enabled bool   `yaml:"enabled"`
	Port    string `yaml:"port"`
	FreqKHz int    `yaml:"freq_khz"`
}

type MirrorCfg struct {
	NRZ     NRZCfg `yaml:"nrz"`
	Console bool   `yaml:"console"`
}

type PreviewCfg struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type PowerCfg struct {
	BudgetMA  float64 `yaml:"budget_ma,omitempty"` // 0 disables the budget checks
	ChannelMA float64 `yaml:"channel_ma,omitempty"`
}

type LogCfg struct {
	Level  string `yaml:"level"`
	JSON   bool   `yaml:"json"`
	Colors bool   `yaml:"colors"`
}

type Config struct {
	Pixels     int    `yaml:"pixels"`
	Pin        *int   `yaml:"pin,omitempty"`
	Layout     string `yaml:"layout"`
	Brightness *int   `yaml:"brightness,omitempty"`
	Allocator  string `yaml:"allocator"` // "heap" | "mmap"

	Grid    GridCfg    `yaml:"grid"`
	Serial  SerialCfg  `yaml:"serial"`
	Pins    PinsCfg    `yaml:"pins"`
	Mirror  MirrorCfg  `yaml:"mirror"`
	Preview PreviewCfg `yaml:"preview"`
	Power   PowerCfg   `yaml:"power"`
	Log     LogCfg     `yaml:"log"`

	// One of Sketch, Pattern or Picture selects what drives the strip.
	Sketch  string `yaml:"sketch,omitempty"`
	Loops   int    `yaml:"loops,omitempty"`
	Pattern string `yaml:"pattern,omitempty"`
	Picture string `yaml:"picture,omitempty"`

	FrameInterval   Duration `yaml:"frame_interval"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// Duration is a wrapper around time.Duration for YAML (un)marshalling.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// GetPixels returns the strand length, 145 by default.
func (c *Config) GetPixels() int {
	if c.Pixels <= 0 {
		return 145
	}
	return c.Pixels
}

// GetPin returns the data pin, 6 by default; negative means none.
func (c *Config) GetPin() int {
	if c.Pin == nil {
		return 6
	}
	return *c.Pin
}

func (c *Config) GetLayout() (model.Layout, error) {
	if c.Layout == "" {
		return model.NEO_GRB | model.NEO_KHZ800, nil
	}
	return model.ParseLayout(c.Layout)
}

func (c *Config) GetAllocator() (model.Allocator, error) {
	switch c.Allocator {
	case "", "heap":
		return model.HeapAllocator{}, nil
	case "mmap":
		return model.MappedAllocator{}, nil
	}
	return nil, fmt.Errorf("unknown allocator %q", c.Allocator)
}

func (c *Config) GetGrid() (layout.Grid, error) {
	g := layout.Default12x12()
	if c.Grid.Rows > 0 {
		g.Dim.Rows = c.Grid.Rows
	}
	if c.Grid.Cols > 0 {
		g.Dim.Cols = c.Grid.Cols
	}
	if c.Grid.Offset != nil {
		if *c.Grid.Offset < 0 {
			return g, fmt.Errorf("negative grid offset %d", *c.Grid.Offset)
		}
		g.Offset = *c.Grid.Offset
	}
	switch c.Grid.Serpentine {
	case "", "even":
		g.Order = layout.Serpentine{XFlipEveryRow: true, FirstRowFlipped: true}
	case "odd":
		g.Order = layout.Serpentine{XFlipEveryRow: true}
	case "none":
		g.Order = layout.Serpentine{}
	default:
		return g, fmt.Errorf("unknown serpentine order %q", c.Grid.Serpentine)
	}
	return g, nil
}

// GetBaud returns the emulated UART rate, 115200 by default.
func (c *Config) GetBaud() int {
	if c.Serial.Baud == 0 {
		return 115200
	}
	return c.Serial.Baud
}

func (c *Config) GetTXBuffer() int {
	if c.Serial.TXBuffer <= 0 {
		return 64
	}
	return c.Serial.TXBuffer
}

func (c *Config) GetPreviewAddr() string {
	if c.Preview.Addr == "" {
		return ":8080"
	}
	return c.Preview.Addr
}

func (c *Config) GetNRZFreqKHz() int {
	if c.Mirror.NRZ.FreqKHz <= 0 {
		return 2500
	}
	return c.Mirror.NRZ.FreqKHz
}

func (c *Config) GetFrameInterval() time.Duration {
	if c.FrameInterval <= 0 {
		return time.Second / 30
	}
	return c.FrameInterval.Duration()
}

func (c *Config) GetShutdownTimeout() time.Duration {
	if c.ShutdownTimeout <= 0 {
		return 5 * time.Second
	}
	return c.ShutdownTimeout.Duration()
}
