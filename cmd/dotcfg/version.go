package main

import (
	"github.com/spf13/cobra"

	"github.com/nauticalab/dotcfg/internal/cli"
)

var versionRepo string

// Version subcommand
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := cli.BuildInfo{
			Version:   version,
			BuildTime: buildTime,
			GitCommit: gitCommit,
			GoVersion: goVersion,
		}
		return cli.RunVersion(cmd.OutOrStdout(), info, versionRepo, verbose)
	},
}

func init() {
	versionCmd.Flags().StringVar(&versionRepo, "repo", "", "Also describe the configuration repository at this path")
}
