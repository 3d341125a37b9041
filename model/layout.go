package model

import (
	"fmt"
	"strings"
)

// Layout describes a strand's wire format. Bits 7..6 hold the W byte
// offset within a pixel, 5..4 R, 3..2 G and 1..0 B. When W and R share an
// offset the strand is 3 bytes per pixel; otherwise it is 4.
type Layout uint16

// 3-byte orders.
const (
	NEO_RGB Layout = (0 << 6) | (0 << 4) | (1 << 2) | 2
	NEO_RBG Layout = (0 << 6) | (0 << 4) | (2 << 2) | 1
	NEO_GRB Layout = (1 << 6) | (1 << 4) | (0 << 2) | 2
	NEO_GBR Layout = (2 << 6) | (2 << 4) | (0 << 2) | 1
	NEO_BRG Layout = (1 << 6) | (1 << 4) | (2 << 2) | 0
	NEO_BGR Layout = (2 << 6) | (2 << 4) | (1 << 2) | 0
)

// 4-byte orders.
const (
	NEO_WRGB Layout = (0 << 6) | (1 << 4) | (2 << 2) | 3
	NEO_WRBG Layout = (0 << 6) | (1 << 4) | (3 << 2) | 2
	NEO_WGRB Layout = (0 << 6) | (2 << 4) | (1 << 2) | 3
	NEO_WGBR Layout = (0 << 6) | (3 << 4) | (1 << 2) | 2
	NEO_WBRG Layout = (0 << 6) | (2 << 4) | (3 << 2) | 1
	NEO_WBGR Layout = (0 << 6) | (3 << 4) | (2 << 2) | 1

	NEO_RWGB Layout = (1 << 6) | (0 << 4) | (2 << 2) | 3
	NEO_RWBG Layout = (1 << 6) | (0 << 4) | (3 << 2) | 2
	NEO_RGWB Layout = (2 << 6) | (0 << 4) | (1 << 2) | 3
	NEO_RGBW Layout = (3 << 6) | (0 << 4) | (1 << 2) | 2
	NEO_RBWG Layout = (2 << 6) | (0 << 4) | (3 << 2) | 1
	NEO_RBGW Layout = (3 << 6) | (0 << 4) | (2 << 2) | 1

	NEO_GWRB Layout = (1 << 6) | (2 << 4) | (0 << 2) | 3
	NEO_GWBR Layout = (1 << 6) | (3 << 4) | (0 << 2) | 2
	NEO_GRWB Layout = (2 << 6) | (1 << 4) | (0 << 2) | 3
	NEO_GRBW Layout = (3 << 6) | (1 << 4) | (0 << 2) | 2
	NEO_GBWR Layout = (2 << 6) | (3 << 4) | (0 << 2) | 1
	NEO_GBRW Layout = (3 << 6) | (2 << 4) | (0 << 2) | 1

	NEO_BWRG Layout = (1 << 6) | (2 << 4) | (3 << 2) | 0
	NEO_BWGR Layout = (1 << 6) | (3 << 4) | (2 << 2) | 0
	NEO_BRWG Layout = (2 << 6) | (1 << 4) | (3 << 2) | 0
	NEO_BRGW Layout = (3 << 6) | (1 << 4) | (2 << 2) | 0
	NEO_BGWR Layout = (2 << 6) | (3 << 4) | (1 << 2) | 0
	NEO_BGRW Layout = (3 << 6) | (2 << 4) | (1 << 2) | 0
)

// Data-rate flags. They are carried for bookkeeping only; nothing here
// generates signal timing.
const (
	NEO_KHZ800 Layout = 0x0000
	NEO_KHZ400 Layout = 0x0100
)

var StringLayouts = map[string]Layout{
	"RGB": NEO_RGB, "RBG": NEO_RBG, "GRB": NEO_GRB,
	"GBR": NEO_GBR, "BRG": NEO_BRG, "BGR": NEO_BGR,

	"WRGB": NEO_WRGB, "WRBG": NEO_WRBG, "WGRB": NEO_WGRB,
	"WGBR": NEO_WGBR, "WBRG": NEO_WBRG, "WBGR": NEO_WBGR,
	"RWGB": NEO_RWGB, "RWBG": NEO_RWBG, "RGWB": NEO_RGWB,
	"RGBW": NEO_RGBW, "RBWG": NEO_RBWG, "RBGW": NEO_RBGW,
	"GWRB": NEO_GWRB, "GWBR": NEO_GWBR, "GRWB": NEO_GRWB,
	"GRBW": NEO_GRBW, "GBWR": NEO_GBWR, "GBRW": NEO_GBRW,
	"BWRG": NEO_BWRG, "BWGR": NEO_BWGR, "BRWG": NEO_BRWG,
	"BRGW": NEO_BRGW, "BGWR": NEO_BGWR, "BGRW": NEO_BGRW,
}

// ParseLayout accepts an order name such as "GRB" or "grbw", optionally
// suffixed with "+KHZ400".
func ParseLayout(s string) (Layout, error) {
	name, speed, _ := strings.Cut(strings.ToUpper(strings.TrimSpace(s)), "+")
	l, ok := StringLayouts[name]
	if !ok {
		return 0, fmt.Errorf("unknown channel order %q", s)
	}
	switch speed {
	case "", "KHZ800":
	case "KHZ400":
		l |= NEO_KHZ400
	default:
		return 0, fmt.Errorf("unknown data rate %q", speed)
	}
	return l, nil
}

// Offsets returns the byte positions of R, G, B and W inside a pixel slot.
// On 3-byte layouts an offset of 3 wraps to 0, so every descriptor maps
// inside its slot. Offsets that collide share a byte; the later channel
// written wins.
func (l Layout) Offsets() (r, g, b, w uint8) {
	w = uint8(l>>6) & 0b11
	r = uint8(l>>4) & 0b11
	g = uint8(l>>2) & 0b11
	b = uint8(l) & 0b11
	if r == w {
		r, g, b, w = r%3, g%3, b%3, w%3
	}
	return
}

// ThreeBytes reports whether the layout has no W slot.
func (l Layout) ThreeBytes() bool {
	return uint8(l>>6)&0b11 == uint8(l>>4)&0b11
}

// BytesPerPixel is 3 or 4.
func (l Layout) BytesPerPixel() int {
	if l.ThreeBytes() {
		return 3
	}
	return 4
}

func (l Layout) Is800KHz() bool {
	return l&NEO_KHZ400 == 0
}

// String returns the wire order, e.g. "GRB" or "RGBW".
func (l Layout) String() string {
	r, g, b, w := l.Offsets()
	n := l.BytesPerPixel()
	slot := make([]byte, n)
	for i := range slot {
		slot[i] = '?'
	}
	if n == 4 {
		slot[w] = 'W'
	}
	slot[r] = 'R'
	slot[g] = 'G'
	slot[b] = 'B'
	s := string(slot)
	if !l.Is800KHz() {
		s += "+KHZ400"
	}
	return s
}
