package main

import (
	"github.com/spf13/cobra"

	"github.com/nauticalab/dotcfg/internal/api/client"
	"github.com/nauticalab/dotcfg/internal/cli"
)

var remoteServer string

// remoteCmd groups commands talking to a running dotcfg server
var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Query a running dotcfg API server",
}

var remoteGetCmd = &cobra.Command{
	Use:   "get [path]",
	Short: "Print a value, or the whole configuration, from the server",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		return cli.RunRemoteGet(cmd.Context(), cmd.OutOrStdout(), client.NewClient(remoteServer), path)
	},
}

var remoteReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Make the server re-read its configuration sources",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunRemoteReload(cmd.Context(), cmd.OutOrStdout(), client.NewClient(remoteServer))
	},
}

func init() {
	remoteCmd.PersistentFlags().StringVarP(&remoteServer, "server", "s", "http://localhost:8080", "Base URL of the dotcfg server")
	remoteCmd.AddCommand(remoteGetCmd)
	remoteCmd.AddCommand(remoteReloadCmd)
}
