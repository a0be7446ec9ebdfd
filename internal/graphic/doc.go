// Package graphic interprets cartridge payload bytes as colors, palettes,
// cover images and map tiles.
package graphic
