package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/nauticalab/dotcfg/pkg/config"
)

// EnvPrefix is the prefix of environment variables that configure the CLI
// itself, for example DOTCFG_OUTPUT=yaml.
const EnvPrefix = "DOTCFG_"

var (
	validate       = validator.New()
	envPrefixRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

func init() {
	_ = validate.RegisterValidation("env_prefix", func(fl validator.FieldLevel) bool {
		return envPrefixRegex.MatchString(fl.Field().String())
	})
}

// Settings configures the dotcfg command. Values are layered, lowest
// precedence first: defaults, ~/.dotcfg/config.yaml, DOTCFG_* environment
// variables, command flags.
type Settings struct {
	EnvPrefix string `yaml:"envPrefix" env:"ENV_PREFIX" validate:"omitempty,env_prefix"`
	Format    string `yaml:"format" env:"FORMAT" validate:"omitempty,oneof=auto toml json yaml yml"`
	Output    string `yaml:"output" env:"OUTPUT" validate:"required,oneof=json yaml toml"`
	LogLevel  string `yaml:"logLevel" env:"LOG_LEVEL" validate:"required,oneof=trace debug info warn error"`
	Workers   int    `yaml:"workers" env:"WORKERS" validate:"min=1,max=64"`
	Host      string `yaml:"host" env:"HOST" validate:"required"`
	Port      int    `yaml:"port" env:"PORT" validate:"min=1,max=65535"`
}

// DefaultSettings returns the lowest settings layer.
func DefaultSettings() *Settings {
	return &Settings{
		Format:   "auto",
		Output:   "json",
		LogLevel: "warn",
		Workers:  4,
		Host:     "0.0.0.0",
		Port:     8080,
	}
}

// SettingsPath is the location of the user settings file.
func SettingsPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	return filepath.Join(homeDir, ".dotcfg", "config.yaml"), nil
}

// LoadSettings builds the effective settings from every layer. flags holds
// only the values the user set on the command line; zero fields are ignored.
func LoadSettings(flags *Settings) (*Settings, error) {
	b := newSettingsBuilder().withDefaults()
	if path, err := SettingsPath(); err == nil {
		b = b.withFile(path)
	}
	return b.withEnv(config.Environ()).withFlags(flags).build()
}

type settingsBuilder struct {
	layers []*Settings
	err    error
}

func newSettingsBuilder() *settingsBuilder {
	return &settingsBuilder{layers: make([]*Settings, 0, 4)}
}

func (b *settingsBuilder) build() (*Settings, error) {
	if b.err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", b.err)
	}

	settings := new(Settings)
	for _, layer := range b.layers {
		if err := mergo.Merge(settings, layer, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge settings: %w", err)
		}
	}

	if err := validate.Struct(settings); err != nil {
		return nil, formatValidationError(err)
	}
	return settings, nil
}

func (b *settingsBuilder) withDefaults() *settingsBuilder {
	b.layers = append(b.layers, DefaultSettings())
	return b
}

// withFile adds the YAML settings file. A missing file is not an error.
func (b *settingsBuilder) withFile(path string) *settingsBuilder {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return b
	}
	if err != nil {
		b.err = errors.Join(b.err, fmt.Errorf("failed to read settings file %s: %w", path, err))
		return b
	}

	fileSettings := &Settings{}
	if err := yaml.Unmarshal(data, fileSettings); err != nil {
		b.err = errors.Join(b.err, fmt.Errorf("failed to parse settings file %s: %w", path, err))
		return b
	}

	b.layers = append(b.layers, fileSettings)
	return b
}

// withEnv reads DOTCFG_* variables from environment. A nil environment is
// treated as empty rather than the process environment.
func (b *settingsBuilder) withEnv(environment map[string]string) *settingsBuilder {
	if environment == nil {
		environment = map[string]string{}
	}

	envSettings := &Settings{}
	err := env.ParseWithOptions(envSettings, env.Options{
		Prefix:      EnvPrefix,
		Environment: environment,
	})
	if err != nil {
		b.err = errors.Join(b.err, fmt.Errorf("failed to read %s* environment: %w", EnvPrefix, err))
		return b
	}

	b.layers = append(b.layers, envSettings)
	return b
}

func (b *settingsBuilder) withFlags(flags *Settings) *settingsBuilder {
	if flags != nil {
		b.layers = append(b.layers, flags)
	}
	return b
}

// formatValidationError converts validator errors into user-friendly messages
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("invalid settings: %w", err)
	}

	var messages []string
	for _, fieldError := range validationErrors {
		messages = append(messages, formatFieldError(fieldError))
	}
	return fmt.Errorf("invalid settings: %s", strings.Join(messages, "; "))
}

func formatFieldError(fieldError validator.FieldError) string {
	field := fieldError.Field()
	value := fieldError.Value()

	switch fieldError.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got '%v'", field, fieldError.Param(), value)
	case "min":
		return fmt.Sprintf("%s must be at least %s, got %v", field, fieldError.Param(), value)
	case "max":
		return fmt.Sprintf("%s must be at most %s, got %v", field, fieldError.Param(), value)
	case "env_prefix":
		return fmt.Sprintf("%s must be a valid environment variable prefix, got '%v'", field, value)
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fieldError.Tag())
	}
}
