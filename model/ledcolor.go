package model

import (
	"fmt"
	"image/color"
)

// Bit offsets of each channel inside a packed Color. Packed colours are
// always canonical W,R,G,B regardless of the strand's wire order.
const (
	WHITE_OFFSET uint8 = 0x18
	RED_OFFSET   uint8 = 0x10
	GREEN_OFFSET uint8 = 0x08
	BLUE_OFFSET  uint8 = 0x0
)

// Color is a packed 0xWWRRGGBB value. For 3-byte strands the W byte is 0.
type Color uint32

// RGB packs separate R,G,B into a Color.
func RGB(r, g, b uint8) Color {
	return Color(uint32(r)<<RED_OFFSET | uint32(g)<<GREEN_OFFSET | uint32(b))
}

// RGBW packs separate R,G,B,W into a Color.
func RGBW(r, g, b, w uint8) Color {
	return Color(uint32(w)<<WHITE_OFFSET | uint32(r)<<RED_OFFSET | uint32(g)<<GREEN_OFFSET | uint32(b))
}

func setcolor(c uint32, n uint8, off uint8) uint32 {
	var val uint32 = uint32(n) << off
	var mask uint32 = 0xFF << off
	return (c & (^mask)) | val
}

func getcolor(c uint32, off uint8) uint8 {
	var mask uint32 = 0xFF << off
	return uint8((c & (mask)) >> off)
}

func (c Color) R() uint8 { return getcolor(uint32(c), RED_OFFSET) }
func (c Color) G() uint8 { return getcolor(uint32(c), GREEN_OFFSET) }
func (c Color) B() uint8 { return getcolor(uint32(c), BLUE_OFFSET) }
func (c Color) W() uint8 { return getcolor(uint32(c), WHITE_OFFSET) }

func (c Color) WithR(r uint8) Color { return Color(setcolor(uint32(c), r, RED_OFFSET)) }
func (c Color) WithG(g uint8) Color { return Color(setcolor(uint32(c), g, GREEN_OFFSET)) }
func (c Color) WithB(b uint8) Color { return Color(setcolor(uint32(c), b, BLUE_OFFSET)) }
func (c Color) WithW(w uint8) Color { return Color(setcolor(uint32(c), w, WHITE_OFFSET)) }

// RGB24 drops the W byte.
func (c Color) RGB24() Color {
	return c & 0x00FFFFFF
}

// RGBA implements color.Color. The white channel is folded into R,G,B
// (saturating) since image consumers have no notion of a W LED.
func (c Color) RGBA() (r, g, b, a uint32) {
	w := uint32(c.W())
	r = min(uint32(c.R())+w, 0xFF)
	g = min(uint32(c.G())+w, 0xFF)
	b = min(uint32(c.B())+w, 0xFF)
	return r | r<<8, g | g<<8, b | b<<8, 0xFFFF
}

// ToNRGBA returns the opaque image colour of c.
func (c Color) ToNRGBA() color.NRGBA {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 255}
}

// FromColor converts any image colour to a packed RGB Color, ignoring alpha
// beyond the premultiplication already applied by the source.
func FromColor(c color.Color) Color {
	r, g, b, _ := c.RGBA()
	return RGB(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

func (c Color) String() string {
	if c.W() != 0 {
		return fmt.Sprintf("%02x%02x%02x%02x", c.R(), c.G(), c.B(), c.W())
	}
	return fmt.Sprintf("%02x%02x%02x", c.R(), c.G(), c.B())
}
