package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nauticalab/dotcfg/internal/cli"
	"github.com/nauticalab/dotcfg/internal/logger"
)

var (
	// Global flags (available to all commands)
	verbose bool

	// flagSettings holds settings given on the command line. Zero values
	// leave lower settings layers in place.
	flagSettings cli.Settings
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dotcfg",
	Short: "Resolve layered configuration files",
	Long: `dotcfg merges TOML, JSON and YAML configuration files, applies
environment variable overrides and resolves ${dotted.path} references.

Settings for dotcfg itself are read from ~/.dotcfg/config.yaml and
DOTCFG_* environment variables; flags take precedence over both.`,
	SilenceUsage: true,
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flagSettings.EnvPrefix, "env-prefix", "", "Apply PREFIX__section__key environment overrides")
	rootCmd.PersistentFlags().StringVar(&flagSettings.Format, "format", "", "Input format: auto, toml, json or yaml (default auto)")
	rootCmd.PersistentFlags().StringVar(&flagSettings.LogLevel, "log-level", "", "Log level: trace, debug, info, warn or error (default warn)")

	// Add subcommands to root
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(remoteCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads the effective settings and the logger for a command run.
func setup() (*cli.Settings, *logger.Logger, error) {
	settings, err := cli.LoadSettings(&flagSettings)
	if err != nil {
		return nil, nil, err
	}

	level, err := logger.ParseLevel(settings.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		level = min(level, zerolog.DebugLevel)
	}

	return settings, logger.New("cli", level, true), nil
}

// addSourceFlags registers the flags selecting where documents are read from.
func addSourceFlags(cmd *cobra.Command, src *cli.SourceOptions) {
	cmd.Flags().StringVar(&src.GitRepo, "git-repo", "", "Read files from this Git repository instead of the working tree")
	cmd.Flags().StringVar(&src.GitRev, "git-rev", "", "Revision to read with --git-repo (default HEAD)")
	cmd.Flags().StringVar(&src.ConfigMap, "configmap", "", "Merge a Kubernetes ConfigMap document last (namespace/name)")
	cmd.Flags().StringVar(&src.ConfigMapKey, "key", "", "ConfigMap key holding the document")
	cmd.Flags().BoolVar(&src.NoReferences, "no-references", false, "Leave ${...} references unresolved")
}
