package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettingsFile(t *testing.T, home, content string) string {
	t.Helper()
	dir := filepath.Join(home, ".dotcfg")
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestSettingsBuilder_Defaults(t *testing.T) {
	settings, err := newSettingsBuilder().withDefaults().build()
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), settings)
}

func TestSettingsBuilder_Precedence(t *testing.T) {
	path := writeSettingsFile(t, t.TempDir(), `
envPrefix: FILE
output: yaml
workers: 2
port: 9000
`)

	tests := []struct {
		name  string
		env   map[string]string
		flags *Settings
		want  func(s *Settings)
	}{
		{
			name: "file over defaults",
			want: func(s *Settings) {
				s.EnvPrefix = "FILE"
				s.Output = "yaml"
				s.Workers = 2
				s.Port = 9000
			},
		},
		{
			name: "environment over file",
			env:  map[string]string{"DOTCFG_OUTPUT": "toml", "DOTCFG_WORKERS": "8", "OTHER_OUTPUT": "json"},
			want: func(s *Settings) {
				s.EnvPrefix = "FILE"
				s.Output = "toml"
				s.Workers = 8
				s.Port = 9000
			},
		},
		{
			name:  "flags over environment",
			env:   map[string]string{"DOTCFG_OUTPUT": "toml"},
			flags: &Settings{Output: "json", EnvPrefix: "FLAG"},
			want: func(s *Settings) {
				s.EnvPrefix = "FLAG"
				s.Output = "json"
				s.Workers = 2
				s.Port = 9000
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings, err := newSettingsBuilder().
				withDefaults().
				withFile(path).
				withEnv(tt.env).
				withFlags(tt.flags).
				build()
			require.NoError(t, err)

			want := DefaultSettings()
			tt.want(want)
			assert.Equal(t, want, settings)
		})
	}
}

func TestSettingsBuilder_MissingFile(t *testing.T) {
	settings, err := newSettingsBuilder().
		withDefaults().
		withFile(filepath.Join(t.TempDir(), "missing.yaml")).
		build()
	require.NoError(t, err)
	assert.Equal(t, "json", settings.Output)
}

func TestSettingsBuilder_Errors(t *testing.T) {
	t.Run("bad yaml", func(t *testing.T) {
		path := writeSettingsFile(t, t.TempDir(), "output: [unclosed\n")
		_, err := newSettingsBuilder().withDefaults().withFile(path).build()
		assert.ErrorContains(t, err, "failed to parse settings file")
	})

	t.Run("bad env value", func(t *testing.T) {
		_, err := newSettingsBuilder().withDefaults().
			withEnv(map[string]string{"DOTCFG_WORKERS": "many"}).
			build()
		assert.ErrorContains(t, err, "DOTCFG_*")
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			flags *Settings
			msg   string
		}{
			{&Settings{Output: "xml"}, "Output must be one of"},
			{&Settings{Workers: 1000}, "Workers must be at most 64"},
			{&Settings{EnvPrefix: "1BAD"}, "EnvPrefix must be a valid environment variable prefix"},
			{&Settings{LogLevel: "loud"}, "LogLevel must be one of"},
			{&Settings{Format: "ini"}, "Format must be one of"},
		}
		for _, tt := range tests {
			_, err := newSettingsBuilder().withDefaults().withFlags(tt.flags).build()
			assert.ErrorContains(t, err, tt.msg)
		}
	})
}

func TestLoadSettings(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeSettingsFile(t, home, "logLevel: debug\nport: 7000\n")
	t.Setenv("DOTCFG_PORT", "7100")

	settings, err := LoadSettings(&Settings{Host: "127.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "debug", settings.LogLevel)
	assert.Equal(t, 7100, settings.Port)
	assert.Equal(t, "127.0.0.1", settings.Host)
}
