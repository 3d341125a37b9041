package serial

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultTXBuffer matches the transmit ring of common 8-bit UART cores.
const DefaultTXBuffer = 64

// Port emulates a UART transmitter: bytes go into a fixed TX buffer that
// drains at baud/10 bytes per second (8N1 framing). Writes block while the
// buffer is full. A Port is safe for one writer.
type Port struct {
	mu   sync.Mutex
	w    io.Writer
	baud int
	tx   int
	lim  *rate.Limiter
}

type Option func(*Port)

// WithTXBuffer sets the TX buffer size in bytes.
func WithTXBuffer(n int) Option {
	return func(p *Port) {
		if n > 0 {
			p.tx = n
		}
	}
}

// New returns a port writing to w. A baud of zero or less disables pacing.
func New(w io.Writer, baud int, opts ...Option) *Port {
	p := &Port{w: w, baud: baud, tx: DefaultTXBuffer}
	for _, o := range opts {
		o(p)
	}
	if baud > 0 {
		p.lim = rate.NewLimiter(rate.Limit(float64(baud)/10), p.tx)
	}
	return p
}

func (p *Port) String() string {
	if p.lim == nil {
		return "serial{unpaced}"
	}
	return fmt.Sprintf("serial{%d baud}", p.baud)
}

// Baud returns the configured rate, or 0 when unpaced.
func (p *Port) Baud() int {
	if p.lim == nil {
		return 0
	}
	return p.baud
}

// AvailableForWrite returns the free space in the TX buffer.
func (p *Port) AvailableForWrite() int {
	if p.lim == nil {
		return p.tx
	}
	return min(max(int(p.lim.Tokens()), 0), p.tx)
}

func (p *Port) Write(b []byte) (int, error) {
	return p.WriteContext(context.Background(), b)
}

// WriteContext writes b, waiting for TX space as needed.
func (p *Port) WriteContext(ctx context.Context, b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	written := 0
	for len(b) > 0 {
		chunk := b[:min(len(b), p.tx)]
		if p.lim != nil {
			if err := p.lim.WaitN(ctx, len(chunk)); err != nil {
				return written, fmt.Errorf("serial tx: %w", err)
			}
		}
		n, err := p.w.Write(chunk)
		written += n
		if err != nil {
			return written, fmt.Errorf("serial tx: %w", err)
		}
		b = b[len(chunk):]
	}
	return written, nil
}

// Flush waits until the TX buffer has fully drained.
func (p *Port) Flush(ctx context.Context) error {
	if p.lim == nil {
		return nil
	}
	missing := float64(p.tx) - p.lim.Tokens()
	if missing <= 0 {
		return nil
	}
	d := time.Duration(missing / float64(p.lim.Limit()) * float64(time.Second))
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
