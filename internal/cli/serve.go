package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nauticalab/dotcfg/internal/api"
	"github.com/nauticalab/dotcfg/internal/logger"
	"github.com/nauticalab/dotcfg/pkg/config"
)

// ServeOptions holds configuration for the serve command
type ServeOptions struct {
	Source    SourceOptions
	Settings  *Settings
	Version   string
	BuildTime string
	GitCommit string
	GoVersion string
}

// RunServe starts the configuration API and blocks until interrupted.
func RunServe(w io.Writer, opts ServeOptions, log *logger.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	server, err := NewConfigServer(ctx, opts, log)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", opts.Settings.Host, opts.Settings.Port)
	fmt.Fprintf(w, "Starting dotcfg API server on %s\n", addr)
	fmt.Fprintf(w, "\nEndpoints:\n")
	fmt.Fprintf(w, "  GET  /api/v1/health          - Health check\n")
	fmt.Fprintf(w, "  GET  /api/v1/version         - Version information\n")
	fmt.Fprintf(w, "  GET  /api/v1/config          - Resolved configuration\n")
	fmt.Fprintf(w, "  GET  /api/v1/config/{path}   - Value at a dotted path\n")
	fmt.Fprintf(w, "  POST /api/v1/reload          - Re-read all sources\n")
	fmt.Fprintf(w, "\n")

	if err := server.StartWithContext(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	fmt.Fprintln(w, "Server shutdown complete")
	return nil
}

// NewConfigServer builds the API server whose loader re-reads every source.
func NewConfigServer(ctx context.Context, opts ServeOptions, log *logger.Logger) (*api.Server, error) {
	loader := func(ctx context.Context) (*config.Config, error) {
		return LoadConfig(ctx, opts.Source, opts.Settings, log)
	}

	server, err := api.NewServer(ctx, api.ServerConfig{
		Host:      opts.Settings.Host,
		Port:      opts.Settings.Port,
		Loader:    loader,
		Logger:    log.Child("api"),
		Version:   opts.Version,
		GitCommit: opts.GitCommit,
		BuildTime: opts.BuildTime,
		GoVersion: opts.GoVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}
	return server, nil
}
