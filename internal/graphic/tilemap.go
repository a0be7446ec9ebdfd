package graphic

import (
	"errors"
	"fmt"
)

// Map geometry: two bytes per tile, glyph index then color index.
const (
	MapWidth    = 320
	MapHeight   = 192
	MapTileSize = 2
)

var ErrInvalidCoord = errors.New("graphic: invalid coord")

// Tile is one decoded map cell.
type Tile struct {
	Glyph uint8
	Color uint8
}

// MapTile reads the tile at x, y. Map data may be shorter than a full map;
// tiles past its end read as zero.
func MapTile(data []byte, x, y int) (Tile, error) {
	if x < 0 || y < 0 || x >= MapWidth || y >= MapHeight {
		return Tile{}, fmt.Errorf("%w (%d, %d) for size (%d, %d)", ErrInvalidCoord, x, y, MapWidth, MapHeight)
	}
	off := (y*MapWidth + x) * MapTileSize
	if off+MapTileSize > len(data) {
		return Tile{}, nil
	}
	return Tile{Glyph: data[off], Color: data[off+1]}, nil
}
