package git

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrFileNotFound is returned when the file does not exist at the revision.
var ErrFileNotFound = errors.New("file not found at revision")

// ReadFile returns the content of filePath, relative to the repository root,
// as committed at revision. revision accepts anything go-git can resolve:
// "HEAD", a branch or tag name, a hash, or expressions such as "HEAD~1".
func ReadFile(repoPath, revision, filePath string) ([]byte, error) {
	repo, err := openRepository(repoPath)
	if err != nil {
		return nil, err
	}

	if revision == "" {
		revision = "HEAD"
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve revision %q: %w", revision, err)
	}

	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to load commit %s: %w", hash, err)
	}

	name := strings.TrimPrefix(path.Clean("/"+filePath), "/")
	file, err := commit.File(name)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, fmt.Errorf("%w: %s at %s", ErrFileNotFound, name, revision)
		}
		return nil, fmt.Errorf("failed to read %s at %s: %w", name, revision, err)
	}

	contents, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s at %s: %w", name, revision, err)
	}
	return []byte(contents), nil
}
