package render

import (
	"io"
	"math"
)

// Sink is a byte-oriented output that can report how much it will accept
// without blocking.
type Sink interface {
	AvailableForWrite() int
	io.Writer
}

// WriterSink adapts any io.Writer into a Sink that never reports back-pressure.
type WriterSink struct {
	io.Writer
}

func (WriterSink) AvailableForWrite() int { return math.MaxInt32 }
