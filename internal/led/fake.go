package led

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-neosim/model"
)

// Fake keeps the frames it receives and logs a compact summary of each,
// useful for headless runs and tests.
type Fake struct {
	mu     sync.Mutex
	Count  int
	Frames [][]byte
	// Keep bounds how many frames are retained; 0 keeps only the last one.
	Keep   int
	// Layout is the layout of the last frame.
	Layout model.Layout

	closed bool
}

func (d *Fake) Write(frame []byte, l model.Layout) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return fmt.Errorf("fake driver closed")
	}
	d.Count++
	d.Layout = l
	d.Frames = append(d.Frames, append([]byte(nil), frame...))
	if keep := max(d.Keep, 1); len(d.Frames) > keep {
		d.Frames = d.Frames[len(d.Frames)-keep:]
	}

	var sum int
	for _, b := range frame {
		sum += int(b)
	}
	n := max(len(frame), 1)
	log.Debug().Int("frame", d.Count).Int("bytes", len(frame)).Float64("avg", float64(sum)/float64(n)).Msg("fake frame")
	return nil
}

// Last returns a copy of the most recent frame.
func (d *Fake) Last() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.Frames) == 0 {
		return nil
	}
	return append([]byte(nil), d.Frames[len(d.Frames)-1]...)
}

func (d *Fake) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}
