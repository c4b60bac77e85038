// Package cli implements the snapdiff command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"snapdiff/internal/platform/config"
	perr "snapdiff/internal/platform/errors"
	"snapdiff/internal/platform/fsx"
	"snapdiff/internal/platform/logger"
	"snapdiff/internal/snapdiff/service"
)

var genJSON bool

// rootCmd is the single snapdiff command; there are no subcommands
var rootCmd = &cobra.Command{
	Use:   "snapdiff <snapdir-path> <snap1> <snap2> <resultdir-path>",
	Short: "Repackage a snapshot diff stream into replay artifacts",
	Long: `Snapdiff drains the paginated diff stream between two filesystem snapshots
into the result directory and repackages it for replay: verbatim page captures
under raw/, per-level partitions under parallel_diff/, one causally-ordered
serialized_diff, and (unless disabled) stat-enriched JSON batches under
serialized_json/. Diagnostics for the run are written to <resultdir>/out.log.

The result directory must exist and be empty. Tunables are read from the
environment: SNAPDIFF_RETRIES, SNAPDIFF_RETRY_DELAY, SNAPDIFF_BATCH and LOG_*.`,
	Args:          cobra.ExactArgs(4),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Init(logger.FromEnv())

		opts := service.FromConfig(config.New())
		p := service.New(fsx.NewOS(), service.Config{
			Retries:    opts.Retries,
			RetryDelay: opts.RetryDelay,
			BatchSize:  opts.BatchSize,
		})

		prm := service.Params{
			SnapDir:   args[0],
			Snap1:     args[1],
			Snap2:     args[2],
			ResultDir: args[3],
			JSON:      genJSON,
		}
		if err := p.Run(cmd.Context(), prm); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Snapshot diff operation failed, please check log file for details")
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Snapshot diff operation completed successfully, result exported to "+prm.ResultDir)
		return nil
	},
}

func init() {
	rootCmd.Flags().BoolVar(&genJSON, "json", true, "emit batched json artifacts under serialized_json/")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "snapdiff:", err)
		os.Exit(perr.ExitStatus(err))
	}
}

// RootCmd returns the root command for testing.
func RootCmd() *cobra.Command {
	return rootCmd
}
