// Package picture loads artwork and fits it onto an LED panel.
package picture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"periph.io/x/conn/v3/display"
)

var ErrUnsupported = errors.New("unsupported picture format")

// Open reads the file at path. SVG files are rasterized at w x h; other
// formats are decoded at their own size.
func Open(path string, w, h int) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."), w, h)
}

// Decode reads a picture of the given format ("svg", or any registered
// raster format; "" sniffs raster formats).
func Decode(r io.Reader, format string, w, h int) (image.Image, error) {
	if format == "svg" {
		return rasterizeSVG(r, w, h)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	if errors.Is(err, image.ErrFormat) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode picture: %w", err)
	}
	return img, nil
}

func rasterizeSVG(r io.Reader, w, h int) (image.Image, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid raster size %dx%d", w, h)
	}
	icon, err := oksvg.ReadIconStream(r)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(w), float64(h))
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return rgba, nil
}

// Fit scales src to exactly w x h with nearest-neighbour sampling, so
// hard-edged pixel art stays hard-edged.
func Fit(src image.Image, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// Show fits src to the drawer and draws it.
func Show(d display.Drawer, src image.Image) error {
	b := d.Bounds()
	fitted := Fit(src, b.Dx(), b.Dy())
	if err := d.Draw(b, fitted, image.Point{}); err != nil {
		return fmt.Errorf("draw on %s: %w", d, err)
	}
	return nil
}
