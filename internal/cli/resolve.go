package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/nauticalab/dotcfg/internal/logger"
	"github.com/nauticalab/dotcfg/pkg/config"
)

// RunResolve prints the fully resolved configuration in the output format.
func RunResolve(ctx context.Context, w io.Writer, src SourceOptions, settings *Settings, log *logger.Logger) error {
	cfg, err := LoadConfig(ctx, src, settings, log)
	if err != nil {
		return fmt.Errorf("failed to resolve configuration: %w", err)
	}

	format, err := config.ParseFormat(settings.Output)
	if err != nil {
		return err
	}
	return cfg.Encode(w, format)
}

// RunGet prints the value at a dotted path. Sections are encoded in the
// output format, lists as JSON, scalars as plain text.
func RunGet(ctx context.Context, w io.Writer, path string, src SourceOptions, settings *Settings, log *logger.Logger) error {
	cfg, err := LoadConfig(ctx, src, settings, log)
	if err != nil {
		return fmt.Errorf("failed to resolve configuration: %w", err)
	}

	value, ok := cfg.Get(path)
	if !ok {
		return fmt.Errorf("key %q not found", path)
	}

	if sub, ok := cfg.Sub(path); ok {
		format, err := config.ParseFormat(settings.Output)
		if err != nil {
			return err
		}
		return sub.Encode(w, format)
	}

	switch v := value.(type) {
	case []any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", path, err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case nil:
		_, err = fmt.Fprintln(w, "null")
		return err
	default:
		_, err = fmt.Fprintln(w, v)
		return err
	}
}
