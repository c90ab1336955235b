package main

import (
	"github.com/spf13/cobra"

	"github.com/nauticalab/dotcfg/internal/cli"
)

var validateWorkers int

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <dir|file>...",
	Short: "Check that configuration files resolve",
	Long: `Resolve every configuration file found under the given directories
or named directly, in parallel, and report each one.

A file fails when it cannot be read or decoded, or when one of its keys
collides with a reserved accessor name.

Examples:
  dotcfg validate ./config
  dotcfg validate app.toml --workers 8`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flagSettings.Workers = validateWorkers
		settings, log, err := setup()
		if err != nil {
			return err
		}

		opts := cli.ValidateOptions{
			Paths:    args,
			Verbose:  verbose,
			Settings: settings,
		}
		_, err = cli.RunValidate(cmd.OutOrStdout(), opts, log)
		return err
	},
}

func init() {
	validateCmd.Flags().IntVar(&validateWorkers, "workers", 0, "Number of files resolved in parallel (default 4)")
}
