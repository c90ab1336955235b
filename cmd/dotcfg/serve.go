package main

import (
	"github.com/spf13/cobra"

	"github.com/nauticalab/dotcfg/internal/cli"
)

var (
	serveSource cli.SourceOptions
	serveHost   string
	servePort   int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve [file...]",
	Short: "Serve the resolved configuration over HTTP",
	Long: `Start an HTTP API serving the resolved configuration.

The configuration is loaded once at startup; POST /api/v1/reload re-reads
every source and swaps the served snapshot. A failed reload keeps the
previous snapshot.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flagSettings.Host = serveHost
		flagSettings.Port = servePort
		settings, log, err := setup()
		if err != nil {
			return err
		}

		serveSource.Files = args
		return cli.RunServe(cmd.OutOrStdout(), cli.ServeOptions{
			Source:    serveSource,
			Settings:  settings,
			Version:   version,
			BuildTime: buildTime,
			GitCommit: gitCommit,
			GoVersion: goVersion,
		}, log)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveHost, "bind", "b", "", "Address to bind to (default 0.0.0.0)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default 8080)")
	addSourceFlags(serveCmd, &serveSource)
}
