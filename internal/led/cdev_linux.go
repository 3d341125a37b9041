//go:build linux

package led

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

// CdevPins drives pins through the Linux GPIO character device. Each pin is
// requested on first use and re-requested on every mode change.
type CdevPins struct {
	Chip string

	mu    sync.Mutex
	lines map[int]*gpiocdev.Line
}

func NewCdevPins(chip string) *CdevPins {
	if chip == "" {
		chip = "gpiochip0"
	}
	return &CdevPins{Chip: chip, lines: map[int]*gpiocdev.Line{}}
}

func (c *CdevPins) request(pin int, opt gpiocdev.LineReqOption) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.lines[pin]; ok {
		_ = l.Close()
		delete(c.lines, pin)
	}
	l, err := gpiocdev.RequestLine(c.Chip, pin, opt)
	if err != nil {
		return fmt.Errorf("request %s:%d: %w", c.Chip, pin, err)
	}
	c.lines[pin] = l
	return nil
}

func (c *CdevPins) SetOutputLow(pin int) error {
	return c.request(pin, gpiocdev.AsOutput(0))
}

func (c *CdevPins) SetInput(pin int) error {
	return c.request(pin, gpiocdev.AsInput)
}

// Close releases every requested line.
func (c *CdevPins) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var first error
	for pin, l := range c.lines {
		if err := l.Close(); err != nil && first == nil {
			first = err
		}
		delete(c.lines, pin)
	}
	return first
}
