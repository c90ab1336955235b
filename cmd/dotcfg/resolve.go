package main

import (
	"github.com/spf13/cobra"

	"github.com/nauticalab/dotcfg/internal/cli"
)

var (
	resolveSource cli.SourceOptions
	resolveOutput string
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve [file...]",
	Short: "Print the resolved configuration",
	Long: `Merge the given files in order, apply environment overrides and
resolve references, then print the result.

Examples:
  dotcfg resolve defaults.toml production.yaml
  dotcfg resolve app.toml --env-prefix APP --output yaml
  dotcfg resolve conf/app.toml --git-repo . --git-rev v1.2.0
  dotcfg resolve --configmap prod/app --key app.toml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flagSettings.Output = resolveOutput
		settings, log, err := setup()
		if err != nil {
			return err
		}

		resolveSource.Files = args
		return cli.RunResolve(cmd.Context(), cmd.OutOrStdout(), resolveSource, settings, log)
	},
}

func init() {
	resolveCmd.Flags().StringVarP(&resolveOutput, "output", "o", "", "Output format: json, yaml or toml (default json)")
	addSourceFlags(resolveCmd, &resolveSource)
}
