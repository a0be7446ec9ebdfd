package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/danmuck/tincart/internal/cartridge"
	"github.com/danmuck/tincart/internal/graphic"
)

func newInspectCommand() *cobra.Command {
	var (
		showChunks bool
		asJSON     bool
		tile       string
	)
	cmd := &cobra.Command{
		Use:   "inspect <file.cart>",
		Short: "Print cartridge metadata and payload sizes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cart, data, _, err := readCartridge(args[0])
			if err != nil {
				return err
			}
			info := cart.Summary()
			if asJSON {
				out, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}
				cmd.Println(string(out))
				return nil
			}

			palette := graphic.PaletteFromBytes(cart.Palette)
			printInfo(cmd.OutOrStdout(), info, palette.Hex())
			if tile != "" {
				if err := printTile(cmd, cart.Map, palette, tile); err != nil {
					return err
				}
			}
			if !showChunks {
				return nil
			}
			return printChunks(cmd.OutOrStdout(), data)
		},
	}
	cmd.Flags().BoolVar(&showChunks, "chunks", false, "list the chunk records in wire order")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	cmd.Flags().StringVar(&tile, "tile", "", "print the map tile at x,y")
	return cmd
}

func printInfo(w io.Writer, info cartridge.Info, colors []string) {
	out := tablewriter.NewWriter(w)
	out.SetHeader([]string{"Field", "Value"})
	out.SetAlignment(tablewriter.ALIGN_LEFT)
	out.SetAutoWrapText(false)
	out.AppendBulk([][]string{
		{"name", info.Name},
		{"desc", info.Desc},
		{"author", info.Author},
		{"version", strconv.Itoa(int(info.Version))},
		{"cover", sizeCell(info.CoverSize)},
		{"code", sizeCell(info.CodeSize)},
		{"font", sizeCell(info.FontSize)},
		{"palette", sizeCell(info.PaletteSize)},
		{"colors", strings.Join(colors, " ")},
		{"map", sizeCell(info.MapSize)},
		{"chunks", strings.Join(info.Chunks, ",")},
	})
	out.Render()
}

func printChunks(w io.Writer, data []byte) error {
	out := tablewriter.NewWriter(w)
	out.SetHeader([]string{"#", "Type", "Tag", "Size"})
	out.SetAlignment(tablewriter.ALIGN_LEFT)
	i := 0
	_, err := cartridge.ScanChunks(bytes.NewReader(data), func(h cartridge.ChunkHeader) error {
		out.Append([]string{
			strconv.Itoa(i),
			h.Type.String(),
			strconv.Itoa(int(h.Type)),
			strconv.FormatUint(uint64(h.Size), 10),
		})
		i++
		return nil
	})
	if err != nil {
		return err
	}
	out.Render()
	return nil
}

// printTile resolves the tile at "x,y" and the palette color its color
// index selects.
func printTile(cmd *cobra.Command, mapData []byte, palette graphic.Palette, raw string) error {
	xs, ys, ok := strings.Cut(raw, ",")
	x, errX := strconv.Atoi(strings.TrimSpace(xs))
	y, errY := strconv.Atoi(strings.TrimSpace(ys))
	if !ok || errX != nil || errY != nil {
		return fmt.Errorf("invalid --tile %q, expected x,y", raw)
	}
	t, err := graphic.MapTile(mapData, x, y)
	if err != nil {
		return err
	}
	rgb := "-"
	if c, err := palette.Color(int(t.Color)); err == nil {
		rgb = c.Hex()
	}
	cmd.Printf("tile %d,%d: glyph=%d color=%d rgb=%s\n", x, y, t.Glyph, t.Color, rgb)
	return nil
}

func sizeCell(n int) string {
	if n == 0 {
		return "-"
	}
	return fmt.Sprintf("%d bytes", n)
}
