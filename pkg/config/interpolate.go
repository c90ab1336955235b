package config

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nauticalab/dotcfg/pkg/flatmap"
)

// Option configures Interpolate and the loaders.
type Option func(*options)

type options struct {
	EnvPrefix   string            `validate:"omitempty,env_prefix"`
	Environment map[string]string `validate:"-"`
	References  bool
	Format      Format         `validate:"oneof=auto toml json yaml"`
	Logger      zerolog.Logger `validate:"-"`
}

// WithEnvPrefix enables environment overrides named PREFIX__section__key.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.EnvPrefix = prefix
	}
}

// WithEnvironment sets the environment scanned for overrides instead of the
// process environment.
func WithEnvironment(env map[string]string) Option {
	return func(o *options) {
		o.Environment = env
	}
}

// WithoutReferences leaves ${...} placeholders unresolved.
func WithoutReferences() Option {
	return func(o *options) {
		o.References = false
	}
}

// WithLogger sets the logger used for unresolved and cyclic references.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.Logger = logger
	}
}

// WithFormat forces the format of files read by the loaders.
func WithFormat(format Format) Option {
	return func(o *options) {
		o.Format = format
	}
}

func newOptions(opts []Option) (*options, error) {
	o := &options{
		References: true,
		Format:     FormatAuto,
		Logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	if err := validateOptions(o); err != nil {
		return nil, err
	}

	if o.EnvPrefix != "" && o.Environment == nil {
		o.Environment = Environ()
	}
	return o, nil
}

// Interpolate turns a raw nested structure into a Config:
//
//  1. raw is flattened;
//  2. with WithEnvPrefix, matching environment variables override file values;
//  3. unless WithoutReferences is given, ${...} placeholders are resolved;
//  4. the result is rebuilt into nested maps and checked for reserved names.
//
// raw is not modified. A Config built with WithoutReferences can be passed
// back through Interpolate via its Map method to resolve its placeholders.
func Interpolate(raw map[string]any, opts ...Option) (*Config, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return interpolate(raw, o)
}

func interpolate(raw map[string]any, o *options) (*Config, error) {
	flat := flatmap.Flatten(normalize(raw))

	if o.EnvPrefix != "" {
		flat = applyEnvOverrides(flat, o.EnvPrefix, o.Environment)
	}

	if o.References {
		flat = NewResolver(flat, o.Logger).Resolve()
	}

	tree, err := flatmap.Unflatten(flat)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to rebuild configuration: %w", ErrConfiguration, err)
	}

	if err := Validate(tree); err != nil {
		return nil, err
	}

	o.Logger.Debug().Int("keys", len(flat)).Msg("configuration resolved")
	return newConfig(tree), nil
}
