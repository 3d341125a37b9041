package led

import (
	"fmt"
	"io"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-neosim/model"
)

// DefaultNRZFreq is the SPI clock for the 3-bit NRZ expansion.
const DefaultNRZFreq = 2500 * physic.KiloHertz

// NRZ mirrors frames to a real strand over SPI using NRZ encoding. The
// strand keeps the length and channel count it was opened with; frames of
// another size or layout are fitted to it.
type NRZ struct {
	mu       sync.Mutex
	port     spi.Port
	dev      *nrzled.Dev
	count    int
	channels int
}

// NewNRZ drives count pixels of layout l on an already opened port. The
// port is closed with the driver when it implements io.Closer.
func NewNRZ(port spi.Port, count int, l model.Layout, freq physic.Frequency) (*NRZ, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	if freq == 0 {
		freq = DefaultNRZFreq
	}
	opts := nrzled.Opts{
		NumPixels: count,
		Channels:  l.BytesPerPixel(),
		Freq:      freq,
	}
	d, err := nrzled.NewSPI(port, &opts)
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	return &NRZ{port: port, dev: d, count: count, channels: opts.Channels}, nil
}

// OpenNRZ initializes the host and opens the named SPI port ("" for the
// first one available).
func OpenNRZ(name string, count int, l model.Layout, freq physic.Frequency) (*NRZ, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	p, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", name, err)
	}
	d, err := NewNRZ(p, count, l, freq)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	return d, nil
}

func (n *NRZ) String() string {
	return n.dev.String()
}

func (n *NRZ) Write(frame []byte, l model.Layout) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.dev == nil {
		return fmt.Errorf("nrz closed")
	}
	// nrzled takes R,G,B[,W] and applies the wire order itself.
	rgb, err := Canonical(frame, l, n.count, n.channels)
	if err != nil {
		return err
	}
	if _, err := n.dev.Write(rgb); err != nil {
		return fmt.Errorf("nrz write: %w", err)
	}
	return nil
}

func (n *NRZ) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.dev == nil {
		return nil
	}
	err := n.dev.Halt()
	n.dev = nil
	if c, ok := n.port.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
