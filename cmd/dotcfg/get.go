package main

import (
	"github.com/spf13/cobra"

	"github.com/nauticalab/dotcfg/internal/cli"
)

var (
	getSource cli.SourceOptions
	getOutput string
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <path> [file...]",
	Short: "Print one value of the resolved configuration",
	Long: `Resolve the configuration and print the value at a dotted path.

Examples:
  dotcfg get database.url app.toml
  dotcfg get servers.0.name app.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flagSettings.Output = getOutput
		settings, log, err := setup()
		if err != nil {
			return err
		}

		getSource.Files = args[1:]
		return cli.RunGet(cmd.Context(), cmd.OutOrStdout(), args[0], getSource, settings, log)
	},
}

func init() {
	getCmd.Flags().StringVarP(&getOutput, "output", "o", "", "Output format for sections: json, yaml or toml (default json)")
	addSourceFlags(getCmd, &getSource)
}
