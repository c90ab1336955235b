package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/nauticalab/dotcfg/internal/git"
	"github.com/nauticalab/dotcfg/internal/k8s"
	"github.com/nauticalab/dotcfg/internal/logger"
	"github.com/nauticalab/dotcfg/pkg/config"
	"github.com/nauticalab/dotcfg/pkg/flatmap"
)

// SourceOptions selects where raw configuration documents come from.
// Files are read from disk, or from GitRepo at GitRev when GitRepo is set.
// A ConfigMap document, when named, is merged last.
type SourceOptions struct {
	Files        []string
	GitRepo      string
	GitRev       string
	ConfigMap    string
	ConfigMapKey string
	NoReferences bool
}

// newK8sClient is replaced in tests with a client over a fake clientset.
var newK8sClient = k8s.NewClient

// ReadSources reads every configured document in order.
func ReadSources(ctx context.Context, src SourceOptions, format config.Format) ([]map[string]any, error) {
	if len(src.Files) == 0 && src.ConfigMap == "" {
		return nil, errors.New("no configuration sources given")
	}

	docs := make([]map[string]any, 0, len(src.Files)+1)
	for _, path := range src.Files {
		doc, err := readFileSource(src, path, format)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if src.ConfigMap != "" {
		doc, err := readConfigMapSource(ctx, src, format)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

func readFileSource(src SourceOptions, path string, format config.Format) (map[string]any, error) {
	if src.GitRepo == "" {
		return config.ReadFile(path, format)
	}

	data, err := git.ReadFile(src.GitRepo, src.GitRev, path)
	if err != nil {
		return nil, err
	}
	return decode(data, path, format)
}

func readConfigMapSource(ctx context.Context, src SourceOptions, format config.Format) (map[string]any, error) {
	if src.ConfigMapKey == "" {
		return nil, errors.New("--key is required with --configmap")
	}

	namespace, name, err := k8s.ParseConfigMapRef(src.ConfigMap)
	if err != nil {
		return nil, err
	}

	client, err := newK8sClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create k8s client: %w", err)
	}

	data, err := client.GetConfigMapData(ctx, namespace, name, src.ConfigMapKey)
	if err != nil {
		return nil, err
	}
	return decode(data, src.ConfigMapKey, format)
}

// decode picks the format from name when none is forced.
func decode(data []byte, name string, format config.Format) (map[string]any, error) {
	if format == config.FormatAuto {
		detected, err := config.DetectFormat(name)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	doc, err := config.DecodeBytes(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return doc, nil
}

// LoadConfig reads, merges and interpolates every source.
func LoadConfig(ctx context.Context, src SourceOptions, settings *Settings, log *logger.Logger) (*config.Config, error) {
	format, err := config.ParseFormat(settings.Format)
	if err != nil {
		return nil, err
	}

	docs, err := ReadSources(ctx, src, format)
	if err != nil {
		return nil, err
	}

	merged := map[string]any{}
	for _, doc := range docs {
		merged = flatmap.Merge(merged, doc)
	}

	log.Debug().
		Int("sources", len(docs)).
		Str("env_prefix", settings.EnvPrefix).
		Msg("interpolating configuration")

	return config.Interpolate(merged, interpolateOptions(src, settings, log)...)
}

func interpolateOptions(src SourceOptions, settings *Settings, log *logger.Logger) []config.Option {
	opts := []config.Option{config.WithLogger(log.Logger)}
	if settings.EnvPrefix != "" {
		opts = append(opts, config.WithEnvPrefix(settings.EnvPrefix))
	}
	if src.NoReferences {
		opts = append(opts, config.WithoutReferences())
	}
	return opts
}
