package config

import (
	"fmt"

	"github.com/nauticalab/dotcfg/pkg/flatmap"
)

// Load reads one configuration file and interpolates it.
func Load(path string, opts ...Option) (*Config, error) {
	return LoadFiles([]string{path}, opts...)
}

// LoadFiles reads every file in order, merges each one over the previous
// ones (later files win), and interpolates the merged result. References may
// point into any of the files.
func LoadFiles(paths []string, opts ...Option) (*Config, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no configuration files given", ErrConfiguration)
	}

	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	merged := map[string]any{}
	for _, path := range paths {
		raw, err := ReadFile(path, o.Format)
		if err != nil {
			return nil, err
		}
		o.Logger.Debug().Str("path", path).Msg("configuration file read")
		merged = flatmap.Merge(merged, raw)
	}

	cfg, err := interpolate(merged, o)
	if err != nil {
		return nil, fmt.Errorf("failed to interpolate configuration: %w", err)
	}
	return cfg, nil
}

// LoadBytes decodes data in the given format and interpolates it.
func LoadBytes(data []byte, format Format, opts ...Option) (*Config, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	if format == FormatAuto || format == "" {
		return nil, fmt.Errorf("%w: an explicit format is required for in-memory data", ErrUnsupportedFileType)
	}

	raw, err := DecodeBytes(data, format)
	if err != nil {
		return nil, err
	}
	return interpolate(raw, o)
}
