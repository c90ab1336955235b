package cli

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fatih/color"

	"github.com/nauticalab/dotcfg/internal/logger"
	"github.com/nauticalab/dotcfg/pkg/config"
)

// ValidateOptions holds configuration for the validate command
type ValidateOptions struct {
	Paths    []string
	Verbose  bool
	Settings *Settings
}

// ValidationJob is one configuration file to resolve
type ValidationJob struct {
	Path string
}

// ValidationResult represents the outcome of resolving one file
type ValidationResult struct {
	Path     string
	Success  bool
	Keys     int
	Error    error
	Duration time.Duration
}

// ValidationSummary collects every result of a run.
type ValidationSummary struct {
	Results   []ValidationResult
	Succeeded int
	Failed    int
}

var (
	okMark   = color.New(color.FgGreen).SprintFunc()
	failMark = color.New(color.FgRed).SprintFunc()
	warnMark = color.New(color.FgYellow).SprintFunc()
)

// RunValidate resolves every configuration file under opts.Paths
// concurrently and prints one line per file. The returned error is non-nil
// when any file failed.
func RunValidate(w io.Writer, opts ValidateOptions, log *logger.Logger) (*ValidationSummary, error) {
	files, err := FindConfigFiles(opts.Paths)
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		fmt.Fprintf(w, "%s No configuration files found in %v\n", warnMark("⚠️"), opts.Paths)
		return &ValidationSummary{}, nil
	}

	fmt.Fprintf(w, "🔍 Validating %d configuration files...\n", len(files))

	loadOpts, err := validateLoadOptions(opts.Settings, log)
	if err != nil {
		return nil, err
	}

	numWorkers := opts.Settings.Workers
	if numWorkers > len(files) {
		numWorkers = len(files)
	}
	jobs := make(chan ValidationJob, len(files))
	results := make(chan ValidationResult, len(files))

	for i := 0; i < numWorkers; i++ {
		go validationWorker(jobs, results, loadOpts)
	}

	for _, file := range files {
		jobs <- ValidationJob{Path: file}
	}
	close(jobs)

	summary := &ValidationSummary{Results: make([]ValidationResult, 0, len(files))}
	for i := 0; i < len(files); i++ {
		result := <-results
		summary.Results = append(summary.Results, result)

		if result.Success {
			summary.Succeeded++
			fmt.Fprintf(w, "[%d/%d] %s %s (%.1fs)\n",
				i+1, len(files), okMark("✅"), result.Path, result.Duration.Seconds())
			if opts.Verbose {
				fmt.Fprintf(w, "   Keys: %d\n", result.Keys)
			}
		} else {
			summary.Failed++
			fmt.Fprintf(w, "[%d/%d] %s %s (%.1fs): %v\n",
				i+1, len(files), failMark("❌"), result.Path, result.Duration.Seconds(), result.Error)
		}
	}

	sort.Slice(summary.Results, func(i, j int) bool {
		return summary.Results[i].Path < summary.Results[j].Path
	})
	printValidationSummary(w, summary)

	if summary.Failed > 0 {
		return summary, fmt.Errorf("%d of %d configuration files failed validation", summary.Failed, len(files))
	}
	return summary, nil
}

func validationWorker(jobs <-chan ValidationJob, results chan<- ValidationResult, opts []config.Option) {
	for job := range jobs {
		startTime := time.Now()
		cfg, err := config.Load(job.Path, opts...)

		result := ValidationResult{
			Path:     job.Path,
			Success:  err == nil,
			Error:    err,
			Duration: time.Since(startTime),
		}
		if cfg != nil {
			result.Keys = len(cfg.Flatten())
		}
		results <- result
	}
}

func validateLoadOptions(settings *Settings, log *logger.Logger) ([]config.Option, error) {
	format, err := config.ParseFormat(settings.Format)
	if err != nil {
		return nil, err
	}

	opts := []config.Option{config.WithFormat(format), config.WithLogger(log.Logger)}
	if settings.EnvPrefix != "" {
		opts = append(opts, config.WithEnvPrefix(settings.EnvPrefix))
	}
	return opts, nil
}

func printValidationSummary(w io.Writer, summary *ValidationSummary) {
	fmt.Fprintf(w, "\n🎉 Validation complete!\n")
	fmt.Fprintf(w, "%s Successful: %d\n", okMark("✅"), summary.Succeeded)
	if summary.Failed == 0 {
		return
	}

	fmt.Fprintf(w, "%s Failed: %d\n", failMark("❌"), summary.Failed)
	fmt.Fprintf(w, "\nFailures:\n")
	for _, result := range summary.Results {
		if !result.Success {
			fmt.Fprintf(w, "  - %s: %v\n", result.Path, result.Error)
		}
	}
}

// FindConfigFiles expands directories into the configuration files they
// contain, recursively. Files named explicitly are kept whatever their
// extension; files found in directories must have a known one.
func FindConfigFiles(paths []string) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range paths {
		root = config.ExpandPath(root)
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", root, err)
		}

		if !info.IsDir() {
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				if path != root && entry.Name()[0] == '.' {
					return filepath.SkipDir
				}
				return nil
			}
			if _, err := config.DetectFormat(path); err == nil {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}

	sort.Strings(files)
	return files, nil
}
