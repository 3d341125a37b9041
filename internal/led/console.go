package led

import (
	"fmt"
	"image"

	"periph.io/x/conn/v3/display"
	"periph.io/x/extra/devices/screen"

	"github.com/coreman2200/funtimes-neosim/model"
)

// Console draws each frame as a single line of ANSI-coloured cells. The
// line grows or shrinks with the strand.
type Console struct {
	dev   display.Drawer
	count int
}

func NewConsole(count int) *Console {
	return &Console{dev: screen.New(count), count: count}
}

// Count is the number of cells currently drawn.
func (c *Console) Count() int {
	return c.count
}

func (c *Console) Write(frame []byte, l model.Layout) error {
	im, err := Decode(frame, l)
	if err != nil {
		return fmt.Errorf("console: %w", err)
	}
	if n := im.Bounds().Dx(); n != c.count {
		c.dev = screen.New(n)
		c.count = n
	}
	return c.dev.Draw(im.Bounds(), im, image.Point{})
}

func (c *Console) Close() error {
	return c.dev.Halt()
}
