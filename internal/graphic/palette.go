package graphic

import (
	"encoding/hex"
	"errors"
	"fmt"
	"image/color"
	"strings"
)

var (
	ErrInvalidIndex = errors.New("graphic: invalid index")
	ErrInvalidHex   = errors.New("graphic: invalid palette hex")
)

// ColorSize is the number of bytes one color takes in palette data.
const ColorSize = 3

// Color is an RGB triplet.
type Color struct {
	R, G, B uint8
}

func (c Color) Hex() string {
	return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
}

// Palette is an ordered list of colors.
type Palette []Color

// PaletteFromBytes reads consecutive RGB triplets. Trailing bytes that do not
// form a whole color are ignored.
func PaletteFromBytes(b []byte) Palette {
	out := make(Palette, 0, len(b)/ColorSize)
	for i := 0; i+ColorSize <= len(b); i += ColorSize {
		out = append(out, Color{R: b[i], G: b[i+1], B: b[i+2]})
	}
	return out
}

// ParsePaletteHex decodes raw palette bytes written as one hex string, for
// example "2d1b001e". Whitespace and a leading '#' are ignored.
func ParsePaletteHex(raw string) ([]byte, error) {
	s := strings.Join(strings.Fields(strings.TrimPrefix(strings.TrimSpace(raw), "#")), "")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHex, raw)
	}
	if len(b) == 0 {
		return nil, nil
	}
	return b, nil
}

// PaletteHex is the inverse of ParsePaletteHex.
func PaletteHex(b []byte) string {
	return hex.EncodeToString(b)
}

func (p Palette) Hex() []string {
	out := make([]string, 0, len(p))
	for _, c := range p {
		out = append(out, c.Hex())
	}
	return out
}

func (p Palette) Color(i int) (Color, error) {
	if i < 0 || i >= len(p) {
		return Color{}, fmt.Errorf("%w %d for length %d", ErrInvalidIndex, i, len(p))
	}
	return p[i], nil
}

// Grayscale returns an n step ramp from black to white.
func Grayscale(n int) Palette {
	if n < 2 {
		return Palette{{}}
	}
	out := make(Palette, n)
	for i := range out {
		v := uint8(i * 0xFF / (n - 1))
		out[i] = Color{R: v, G: v, B: v}
	}
	return out
}
