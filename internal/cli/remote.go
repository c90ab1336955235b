package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/nauticalab/dotcfg/internal/api/client"
)

// RunRemoteGet prints the value at path, or the whole configuration when
// path is empty, as served by a running dotcfg API.
func RunRemoteGet(ctx context.Context, w io.Writer, c *client.Client, path string) error {
	var value any
	if path == "" {
		resp, err := c.Config(ctx)
		if err != nil {
			return err
		}
		value = resp.Config
	} else {
		resp, err := c.Value(ctx, path)
		if err != nil {
			return err
		}
		value = resp.Value
	}

	if s, ok := value.(string); ok {
		_, err := fmt.Fprintln(w, s)
		return err
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// RunRemoteReload triggers a reload on a running dotcfg API.
func RunRemoteReload(ctx context.Context, w io.Writer, c *client.Client) error {
	resp, err := c.Reload(ctx)
	if err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}

	fmt.Fprintf(w, "%s Reloaded %d keys at %s\n", okMark("✅"), resp.Keys, resp.LoadedAt.Format("15:04:05"))
	return nil
}
