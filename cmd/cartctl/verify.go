package main

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var errRoundTrip = errors.New("re-encoded cartridge differs from file")

func newVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file.cart>",
		Short: "Decode and re-encode a cartridge and compare the bytes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			cart, data, consumed, err := readCartridge(path)
			if err != nil {
				return err
			}
			canonical, err := cart.Encode()
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if trailing := len(data) - consumed; trailing > 0 {
				log.Warn().Str("path", path).Int("bytes", trailing).Msg("trailing bytes after end chunk")
			}
			if !bytes.Equal(canonical, data[:consumed]) {
				return fmt.Errorf("%s: %w", path, errRoundTrip)
			}
			cmd.Printf("%s: ok (%d bytes)\n", path, consumed)
			return nil
		},
	}
}
