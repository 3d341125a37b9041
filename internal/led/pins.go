package led

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PinController changes the mode of the strand's data pin. Pins are
// numbered the way the board's headers name them.
type PinController interface {
	SetOutputLow(pin int) error
	SetInput(pin int) error
}

// NoPins accepts every transition without touching hardware.
type NoPins struct{}

func (NoPins) SetOutputLow(pin int) error {
	log.Debug().Int("pin", pin).Msg("pin output low")
	return nil
}

func (NoPins) SetInput(pin int) error {
	log.Debug().Int("pin", pin).Msg("pin input")
	return nil
}

// GPIOPins drives pins through the periph gpio registry.
type GPIOPins struct {
	// Lookup resolves a pin by name; defaults to gpioreg.ByName.
	Lookup func(name string) gpio.PinIO
}

// OpenGPIOPins initializes the host drivers and returns a registry-backed
// controller.
func OpenGPIOPins() (*GPIOPins, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	return &GPIOPins{Lookup: gpioreg.ByName}, nil
}

func (g *GPIOPins) pin(n int) (gpio.PinIO, error) {
	lookup := g.Lookup
	if lookup == nil {
		lookup = gpioreg.ByName
	}
	p := lookup(strconv.Itoa(n))
	if p == nil {
		return nil, fmt.Errorf("gpio %d not found", n)
	}
	return p, nil
}

func (g *GPIOPins) SetOutputLow(n int) error {
	p, err := g.pin(n)
	if err != nil {
		return err
	}
	if err := p.Out(gpio.Low); err != nil {
		return fmt.Errorf("%s out: %w", p, err)
	}
	return nil
}

func (g *GPIOPins) SetInput(n int) error {
	p, err := g.pin(n)
	if err != nil {
		return err
	}
	if err := p.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return fmt.Errorf("%s in: %w", p, err)
	}
	return nil
}
