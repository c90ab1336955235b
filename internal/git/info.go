// Package git reads configuration sources from Git repositories and reports
// repository state for build information.
package git

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// RepoInfo holds information about a git repository
type RepoInfo struct {
	// CommitHash is the current HEAD commit hash
	CommitHash string
	// Branch is the current branch name, empty on a detached HEAD
	Branch string
	// Tags lists the tags pointing to the current commit
	Tags []string
	// IsDirty indicates if the working tree has uncommitted changes
	IsDirty bool
}

// openRepository opens the repository repoPath belongs to, seeking upwards
// for the .git directory.
func openRepository(repoPath string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to find a Git repository that path %q belongs to: %w", repoPath, err)
	}
	return repo, nil
}

// GetRepoInfo reports HEAD, branch, tags and dirty state of the repository
// repoPath belongs to.
func GetRepoInfo(repoPath string) (*RepoInfo, error) {
	repo, err := openRepository(repoPath)
	if err != nil {
		return nil, err
	}

	headRef, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD reference for repository %q: %w", repoPath, err)
	}

	info := &RepoInfo{CommitHash: headRef.Hash().String()}
	if headRef.Name().IsBranch() {
		info.Branch = headRef.Name().Short()
	}

	// Find all tags pointing to the current commit
	tagRefs, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	err = tagRefs.ForEach(func(ref *plumbing.Reference) error {
		revHash, err := repo.ResolveRevision(plumbing.Revision(ref.Name()))
		if err != nil {
			return fmt.Errorf("failed to resolve tag %q: %w", ref.Name().Short(), err)
		}
		if *revHash == headRef.Hash() {
			info.Tags = append(info.Tags, ref.Name().Short())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate over tags: %w", err)
	}

	// Bare repositories have no worktree and are never dirty.
	worktree, err := repo.Worktree()
	if err == nil {
		status, err := worktree.Status()
		if err != nil {
			return nil, fmt.Errorf("failed to get worktree status for repository %q: %w", repoPath, err)
		}
		info.IsDirty = !status.IsClean()
	}

	return info, nil
}

// Describe renders the info as "<tag|branch>@<short hash>[-dirty]".
func (i *RepoInfo) Describe() string {
	name := i.Branch
	if len(i.Tags) > 0 {
		name = strings.Join(i.Tags, ",")
	}
	if name == "" {
		name = "detached"
	}

	hash := i.CommitHash
	if len(hash) > 7 {
		hash = hash[:7]
	}

	out := name + "@" + hash
	if i.IsDirty {
		out += "-dirty"
	}
	return out
}
