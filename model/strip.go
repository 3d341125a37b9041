package model

import (
	"image"

	"github.com/rs/zerolog"
)

// Strip owns the pixel buffer of one strand in device-native channel order.
//
// Colours are stored already attenuated by the current brightness, so
// reading a pixel back after a brightness change is an approximation:
// the low-order bits discarded on write are gone.
//
// A Strip is not safe for concurrent use.
type Strip struct {
	numLEDs  int
	numBytes int
	typ      Layout

	rOffset uint8
	gOffset uint8
	bOffset uint8
	wOffset uint8

	// brightness is the requested level plus one, wrapping at 256. Zero
	// means colours are stored literally.
	brightness uint8

	pixels []byte
	alloc  Allocator
	log    zerolog.Logger
}

type Option func(*Strip)

// WithAllocator selects the storage backing the pixel buffer.
func WithAllocator(a Allocator) Option {
	return func(s *Strip) {
		if a != nil {
			s.alloc = a
		}
	}
}

// WithLogger sets the logger used for buffer lifecycle events.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Strip) {
		s.log = l
	}
}

func newStrip(opts []Option) *Strip {
	s := &Strip{
		alloc: HeapAllocator{},
		log:   zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewStrip returns a strip of n pixels in layout t, all off.
func NewStrip(n int, t Layout, opts ...Option) *Strip {
	s := newStrip(opts)
	s.UpdateType(t)
	s.UpdateLength(n)
	return s
}

// NewEmptyStrip returns a strip whose length and layout are not known yet.
// It defaults to GRB and holds no buffer until UpdateLength is called.
func NewEmptyStrip(opts ...Option) *Strip {
	s := newStrip(opts)
	s.typ = NEO_GRB
	s.rOffset, s.gOffset, s.bOffset, s.wOffset = NEO_GRB.Offsets()
	return s
}

// UpdateLength reallocates the buffer for n pixels. All pixels are cleared.
// If storage can't be obtained the strip becomes empty; callers detect that
// through NumPixels() == 0.
func (s *Strip) UpdateLength(n int) {
	s.release()

	size := n * s.BytesPerPixel()
	px, err := s.alloc.Alloc(size)
	if err != nil || len(px) != size {
		s.log.Warn().Err(err).Int("pixels", n).Int("bytes", size).Msg("pixel buffer allocation failed")
		s.pixels = nil
		s.numLEDs, s.numBytes = 0, 0
		return
	}
	clear(px)
	s.pixels = px
	s.numLEDs, s.numBytes = n, size
	s.log.Debug().Int("pixels", n).Int("bytes", size).Stringer("layout", s.typ).Msg("pixel buffer allocated")
}

// UpdateType switches the channel layout. If the number of bytes per pixel
// changes, the buffer is reallocated at the current length and cleared.
func (s *Strip) UpdateType(t Layout) {
	oldThreeBytesPerPixel := s.wOffset == s.rOffset

	s.typ = t
	s.rOffset, s.gOffset, s.bOffset, s.wOffset = t.Offsets()

	if s.pixels != nil {
		newThreeBytesPerPixel := s.wOffset == s.rOffset
		if newThreeBytesPerPixel != oldThreeBytesPerPixel {
			s.UpdateLength(s.numLEDs)
		}
	}
}

func (s *Strip) threeBytes() bool {
	return s.wOffset == s.rOffset
}

func (s *Strip) slot(n int) []byte {
	bpp := s.BytesPerPixel()
	return s.pixels[n*bpp : n*bpp+bpp]
}

func (s *Strip) inRange(n int) bool {
	return n >= 0 && n < s.numLEDs
}

func (s *Strip) scale(c uint8) uint8 {
	if s.brightness == 0 {
		return c
	}
	return uint8((uint16(c) * uint16(s.brightness)) >> 8)
}

func (s *Strip) unscale(c uint8) uint32 {
	if s.brightness == 0 {
		return uint32(c)
	}
	return min((uint32(c)<<8)/uint32(s.brightness), 0xFF)
}

// SetPixelRGB sets pixel n from separate components. On 4-byte strands the
// white channel is turned off. Out-of-range n is ignored.
func (s *Strip) SetPixelRGB(n int, r, g, b uint8) {
	if !s.inRange(n) {
		return
	}
	p := s.slot(n)
	if !s.threeBytes() {
		p[s.wOffset] = 0
	}
	p[s.rOffset] = s.scale(r)
	p[s.gOffset] = s.scale(g)
	p[s.bOffset] = s.scale(b)
}

// SetPixelRGBW sets pixel n including white. On 3-byte strands w is
// discarded.
func (s *Strip) SetPixelRGBW(n int, r, g, b, w uint8) {
	if !s.inRange(n) {
		return
	}
	p := s.slot(n)
	if !s.threeBytes() {
		p[s.wOffset] = s.scale(w)
	}
	p[s.rOffset] = s.scale(r)
	p[s.gOffset] = s.scale(g)
	p[s.bOffset] = s.scale(b)
}

// SetPixel sets pixel n from a packed colour. The W byte is only used on
// 4-byte strands.
func (s *Strip) SetPixel(n int, c Color) {
	if !s.inRange(n) {
		return
	}
	if s.threeBytes() {
		s.SetPixelRGB(n, c.R(), c.G(), c.B())
		return
	}
	s.SetPixelRGBW(n, c.R(), c.G(), c.B(), c.W())
}

// GetPixel returns the packed colour of pixel n, or 0 when n is out of
// range. With brightness applied the result approximates what was set.
func (s *Strip) GetPixel(n int) Color {
	if !s.inRange(n) {
		return 0
	}
	p := s.slot(n)
	c := s.unscale(p[s.rOffset])<<RED_OFFSET |
		s.unscale(p[s.gOffset])<<GREEN_OFFSET |
		s.unscale(p[s.bOffset])
	if !s.threeBytes() {
		c |= s.unscale(p[s.wOffset]) << WHITE_OFFSET
	}
	return Color(c)
}

// SetBrightness adjusts output brightness; 0 is darkest and 255 leaves
// colours unscaled. Pixels already in the buffer are rescaled in place,
// which is lossy, most visibly when stepping brightness up. Re-render the
// whole strip for a non-destructive change.
func (s *Strip) SetBrightness(b uint8) {
	newBrightness := b + 1
	if newBrightness == s.brightness {
		return
	}
	// Unscaled storage de-wraps to 255, i.e. full brightness.
	oldBrightness := s.brightness - 1
	var scale uint32
	if oldBrightness != 0 {
		scale = ((uint32(b)+1)<<8 - 1) / uint32(oldBrightness)
	}
	for i, c := range s.pixels {
		s.pixels[i] = uint8(min((uint32(c)*scale)>>8, 0xFF))
	}
	s.brightness = newBrightness
}

// Brightness returns the last level passed to SetBrightness, or 255 if it
// was never called.
func (s *Strip) Brightness() uint8 {
	return s.brightness - 1
}

// Clear turns every pixel off without changing length or layout.
func (s *Strip) Clear() {
	clear(s.pixels)
}

func (s *Strip) NumPixels() int {
	return s.numLEDs
}

func (s *Strip) NumBytes() int {
	return s.numBytes
}

func (s *Strip) BytesPerPixel() int {
	if s.threeBytes() {
		return 3
	}
	return 4
}

func (s *Strip) Type() Layout {
	return s.typ
}

// Allocated reports whether the strip currently holds a buffer.
func (s *Strip) Allocated() bool {
	return s.pixels != nil
}

// Pixels returns the raw buffer in device-native order, brightness already
// applied. The slice is only valid until the next reallocation.
func (s *Strip) Pixels() []byte {
	return s.pixels
}

// Image returns the strand as a 1-pixel-high image, left to right in strand
// order, using the colours GetPixel reports.
func (s *Strip) Image() *image.NRGBA {
	im := image.NewNRGBA(image.Rect(0, 0, s.numLEDs, 1))
	for x := 0; x < im.Rect.Max.X; x++ {
		im.SetNRGBA(x, 0, s.GetPixel(x).ToNRGBA())
	}
	return im
}

// Close releases the pixel buffer.
func (s *Strip) Close() error {
	var err error
	if s.pixels != nil {
		err = s.alloc.Free(s.pixels)
		s.pixels = nil
	}
	s.numLEDs, s.numBytes = 0, 0
	return err
}

func (s *Strip) release() {
	if s.pixels == nil {
		return
	}
	if err := s.alloc.Free(s.pixels); err != nil {
		s.log.Warn().Err(err).Msg("pixel buffer release failed")
	}
	s.pixels = nil
}
