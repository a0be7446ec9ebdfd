package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/danmuck/tincart/internal/manifest"
)

func newUnpackCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "unpack <file.cart>",
		Short: "Write a cartridge back out as a manifest and asset files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cart, _, _, err := readCartridge(args[0])
			if err != nil {
				return err
			}
			path, err := manifest.Unpack(cart, dir)
			if err != nil {
				return err
			}
			log.Info().Str("cart", cart.Name).Str("dir", dir).Msg("cartridge unpacked")
			cmd.Printf("wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "output directory")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}
