package graphic

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/bmp"

	"github.com/danmuck/tincart/internal/cartridge"
)

var ErrNoCover = errors.New("graphic: cartridge has no cover")

// Export formats.
const (
	FormatPNG = "png"
	FormatBMP = "bmp"
)

// CoverOptions controls cover export. Zero Width and Height keep the native
// 640x384 size.
type CoverOptions struct {
	Format string
	Width  int
	Height int
}

// WriteCover renders the cover of cart with its own palette and encodes it.
func WriteCover(w io.Writer, cart *cartridge.Cartridge, opts CoverOptions) error {
	if len(cart.Cover) == 0 {
		return ErrNoCover
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = FormatPNG
	}
	if format != FormatPNG && format != FormatBMP {
		return fmt.Errorf("graphic: unsupported format %q", opts.Format)
	}

	var img image.Image
	cover, err := RenderCover(cart.Cover, PaletteFromBytes(cart.Palette))
	if err != nil {
		return err
	}
	img = cover
	if opts.Width != 0 || opts.Height != 0 {
		if img, err = Thumbnail(cover, opts.Width, opts.Height); err != nil {
			return err
		}
	}

	if format == FormatBMP {
		return bmp.Encode(w, img)
	}
	return png.Encode(w, img)
}
