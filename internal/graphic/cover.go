package graphic

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"github.com/danmuck/tincart/internal/cartridge"
)

// Cover geometry: one palette index byte per screen pixel.
const (
	CoverWidth  = 640
	CoverHeight = 384
)

var ErrInvalidCoverSize = errors.New("graphic: invalid cover size")

// fallbackColors is used when the cartridge carries no palette.
const fallbackColors = 16

// RenderCover maps cover indexes through palette. Indexes past the end of
// the palette render black.
func RenderCover(cover []byte, palette Palette) (*image.Paletted, error) {
	if len(cover) != cartridge.CoverSize {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrInvalidCoverSize, len(cover), cartridge.CoverSize)
	}
	if len(palette) == 0 {
		palette = Grayscale(fallbackColors)
	}
	if len(palette) > 0xFF {
		palette = palette[:0xFF]
	}

	colors := make(color.Palette, 0, len(palette)+1)
	for _, c := range palette {
		colors = append(colors, c.RGBA())
	}
	black := uint8(len(colors))
	colors = append(colors, color.RGBA{A: 0xFF})

	img := image.NewPaletted(image.Rect(0, 0, CoverWidth, CoverHeight), colors)
	for i, idx := range cover {
		if int(idx) >= len(palette) {
			idx = black
		}
		img.Pix[i] = idx
	}
	return img, nil
}

// Thumbnail scales img to w x h with nearest neighbour sampling.
func Thumbnail(img image.Image, w, h int) (*image.RGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("graphic: invalid thumbnail size %dx%d", w, h)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst, nil
}
