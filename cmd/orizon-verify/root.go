// Command orizon-verify is the CLI front end for the deductive verifier:
// check a project's `.oriz` sources, watch them for changes, inspect the
// result cache, or run the QUIC daemon in-process. Its multi-subcommand
// shape (`check|watch|cache|serve`, each its own file under this package)
// follows the pattern the rest of the retrieved corpus uses for
// multi-command tools — roach88-nysm/brutalist's internal/cli and
// vovakirdan-surge/cmd/surge both build a spf13/cobra root command and
// attach one NewXCommand per verb, which the teacher itself never does
// (its own cmd/ binaries are all single-purpose, flag-parsing mains).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orizon-lang/orizon-verify/internal/verifyconfig"
)

// rootOptions holds the flags every subcommand reads.
type rootOptions struct {
	configPath string
	cfg        *verifyconfig.Config
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "orizon-verify",
		Short: "Deductive verifier for Orizon function contracts",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := verifyconfig.LoadOrDefault(opts.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			opts.cfg = cfg
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", verifyconfig.DefaultFileName, "project config file")

	cmd.AddCommand(newCheckCommand(opts))
	cmd.AddCommand(newWatchCommand(opts))
	cmd.AddCommand(newCacheCommand(opts))
	cmd.AddCommand(newServeCommand(opts))
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
