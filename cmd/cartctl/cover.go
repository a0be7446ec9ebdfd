package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danmuck/tincart/internal/graphic"
)

func newCoverCommand() *cobra.Command {
	var (
		output string
		format string
		width  int
		height int
	)
	cmd := &cobra.Command{
		Use:   "cover <file.cart>",
		Short: "Render the cartridge cover to an image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cart, _, _, err := readCartridge(args[0])
			if err != nil {
				return err
			}
			if format == "" {
				format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("cover: %w", err)
			}
			opts := graphic.CoverOptions{Format: format, Width: width, Height: height}
			if err := graphic.WriteCover(f, cart, opts); err != nil {
				_ = f.Close()
				_ = os.Remove(output)
				return fmt.Errorf("cover: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("cover: %w", err)
			}
			cmd.Printf("wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "image output path")
	cmd.Flags().StringVar(&format, "format", "", "png or bmp (defaults to the output extension)")
	cmd.Flags().IntVar(&width, "width", 0, "thumbnail width")
	cmd.Flags().IntVar(&height, "height", 0, "thumbnail height")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
