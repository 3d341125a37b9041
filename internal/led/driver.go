package led

import (
	"fmt"
	"image"

	"github.com/coreman2200/funtimes-neosim/model"
)

// Driver mirrors strand frames somewhere outside the simulator.
type Driver interface {
	// Write pushes one frame of device-native pixel bytes in layout l,
	// brightness already applied. The pixel count is len(frame) divided by
	// l.BytesPerPixel() and may change between frames.
	Write(frame []byte, l model.Layout) error
	// Close releases resources.
	Close() error
}

// Decode converts a device-native frame into a 1-pixel-high image in
// strand order. The white channel is folded into R,G,B.
func Decode(frame []byte, l model.Layout) (*image.NRGBA, error) {
	n, err := pixelCount(frame, l)
	if err != nil {
		return nil, err
	}
	bpp := l.BytesPerPixel()
	r, g, b, w := l.Offsets()
	im := image.NewNRGBA(image.Rect(0, 0, n, 1))
	for i := 0; i < n; i++ {
		p := frame[i*bpp : i*bpp+bpp]
		c := model.RGB(p[r], p[g], p[b])
		if !l.ThreeBytes() {
			c = c.WithW(p[w])
		}
		im.SetNRGBA(i, 0, c.ToNRGBA())
	}
	return im, nil
}

// Canonical reorders a device-native frame into count pixels of R,G,B
// (channels 3) or R,G,B,W (channels 4). Missing pixels are sent dark, extra
// ones are dropped, and W is zero when the frame has none.
func Canonical(frame []byte, l model.Layout, count, channels int) ([]byte, error) {
	n, err := pixelCount(frame, l)
	if err != nil {
		return nil, err
	}
	bpp := l.BytesPerPixel()
	r, g, b, w := l.Offsets()
	out := make([]byte, count*channels)
	for i := 0; i < min(n, count); i++ {
		p := frame[i*bpp : i*bpp+bpp]
		o := out[i*channels : i*channels+channels]
		o[0], o[1], o[2] = p[r], p[g], p[b]
		if channels == 4 && !l.ThreeBytes() {
			o[3] = p[w]
		}
	}
	return out, nil
}

func pixelCount(frame []byte, l model.Layout) (int, error) {
	bpp := l.BytesPerPixel()
	if len(frame)%bpp != 0 {
		return 0, fmt.Errorf("frame length %d is not a multiple of %d", len(frame), bpp)
	}
	return len(frame) / bpp, nil
}
