package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danmuck/tincart/internal/logging"
)

func newRootCommand() *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:           "cartctl",
		Short:         "Build and inspect tincart cartridges",
		Long:          `cartctl packs cartridges from a TOML manifest, inspects and verifies cartridge files, and unpacks them back into assets.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logging.ConfigureRuntime()
			if logLevel != "" && !logging.SetLevel(logLevel) {
				return fmt.Errorf("unknown log level %q", logLevel)
			}
			return nil
		},
	}
	root.SetOut(os.Stdout)
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace|debug|info|warn|error|off)")
	root.AddCommand(
		newPackCommand(),
		newInspectCommand(),
		newUnpackCommand(),
		newCoverCommand(),
		newVerifyCommand(),
	)
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "cartctl: %v\n", err)
		os.Exit(1)
	}
}
