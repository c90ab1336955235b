package cli

import (
	"fmt"
	"io"

	"github.com/nauticalab/dotcfg/internal/git"
)

// BuildInfo is stamped into the binary at link time.
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
	GoVersion string
}

// RunVersion prints build information. With repoPath set it also describes
// the state of the configuration repository found there.
func RunVersion(w io.Writer, info BuildInfo, repoPath string, verbose bool) error {
	fmt.Fprintf(w, "dotcfg version %s\n", info.Version)

	if verbose {
		fmt.Fprintf(w, "  Build time: %s\n", info.BuildTime)
		fmt.Fprintf(w, "  Git commit: %s\n", info.GitCommit)
		fmt.Fprintf(w, "  Go version: %s\n", info.GoVersion)
	}

	if repoPath == "" {
		return nil
	}

	repo, err := git.GetRepoInfo(repoPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "  Config repo: %s\n", repo.Describe())
	if verbose && len(repo.Tags) > 0 {
		fmt.Fprintf(w, "  Tags: %v\n", repo.Tags)
	}
	return nil
}
