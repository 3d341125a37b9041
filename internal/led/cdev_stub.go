//go:build !linux

package led

import "fmt"

type CdevPins struct {
	Chip string
}

func NewCdevPins(chip string) *CdevPins { return &CdevPins{Chip: chip} }

func (c *CdevPins) SetOutputLow(pin int) error {
	return fmt.Errorf("gpio character device not supported on this platform")
}

func (c *CdevPins) SetInput(pin int) error {
	return fmt.Errorf("gpio character device not supported on this platform")
}

func (c *CdevPins) Close() error { return nil }
