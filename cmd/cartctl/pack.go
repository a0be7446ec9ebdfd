package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/danmuck/tincart/internal/manifest"
)

func newPackCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "pack <manifest.toml>",
		Short: "Pack a manifest and its assets into a cartridge file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cart, err := manifest.Load(args[0])
			if err != nil {
				return err
			}
			data, err := cart.Encode()
			if err != nil {
				return fmt.Errorf("pack: %w", err)
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("pack: %w", err)
			}
			log.Info().
				Str("cart", cart.Name).
				Str("path", output).
				Int("bytes", len(data)).
				Strs("chunks", cart.Summary().Chunks).
				Msg("cartridge packed")
			cmd.Printf("wrote %s (%d bytes)\n", output, len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "cartridge output path")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
