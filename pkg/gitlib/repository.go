package gitlib

import (
	"errors"
	"fmt"
	"path/filepath"

	git2go "github.com/libgit2/git2go/v34"
)

// Sentinel errors for repository lookups.
var (
	// ErrNotRepository indicates that no repository encloses the given directory.
	ErrNotRepository = errors.New("not a git repository")
	// ErrBareRepository indicates a repository without a working tree.
	ErrBareRepository = errors.New("repository has no working tree")
	// ErrRevisionNotFound indicates that a revision does not resolve to a commit.
	ErrRevisionNotFound = errors.New("revision not found")
	// ErrAmbiguousRevision indicates that an abbreviated hash matches several objects.
	ErrAmbiguousRevision = errors.New("ambiguous revision")
)

// Repository wraps a libgit2 repository.
type Repository struct {
	repo *git2go.Repository
	path string
}

// OpenRepository opens a git repository at the given path.
func OpenRepository(path string) (*Repository, error) {
	repo, err := git2go.OpenRepository(path)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	return &Repository{repo: repo, path: path}, nil
}

// Discover walks up from dir to the enclosing repository and opens it.
// Discovery stops at filesystem boundaries.
func Discover(dir string) (*Repository, error) {
	gitDir, err := git2go.Discover(dir, false, nil)
	if err != nil {
		if git2go.IsErrorCode(err, git2go.ErrorCodeNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotRepository, dir)
		}

		return nil, fmt.Errorf("discover repository from %s: %w", dir, err)
	}

	return OpenRepository(gitDir)
}

// Path returns the path the repository was opened with.
func (r *Repository) Path() string {
	return r.path
}

// WorkDir returns the root of the working tree without a trailing separator.
func (r *Repository) WorkDir() (string, error) {
	if r.repo.IsBare() {
		return "", fmt.Errorf("%w: %s", ErrBareRepository, r.path)
	}

	return filepath.Clean(r.repo.Workdir()), nil
}

// Free releases the repository resources.
func (r *Repository) Free() {
	if r.repo != nil {
		r.repo.Free()
		r.repo = nil
	}
}

// ResolveCommit resolves any revision expression (full or abbreviated hash,
// branch, tag, "HEAD~2", ...) to the hash of the commit it names.
func (r *Repository) ResolveCommit(ref string) (Hash, error) {
	obj, err := r.repo.RevparseSingle(ref)
	if err != nil {
		return Hash{}, classifyRevparseError(ref, err)
	}
	defer obj.Free()

	commit, err := obj.Peel(git2go.ObjectCommit)
	if err != nil {
		return Hash{}, fmt.Errorf("%w: %s is not a commit", ErrRevisionNotFound, ref)
	}
	defer commit.Free()

	return HashFromOid(commit.Id()), nil
}

// TreeOf returns the root tree hash of a commit.
func (r *Repository) TreeOf(hash Hash) (Hash, error) {
	commit, err := r.repo.LookupCommit(hash.ToOid())
	if err != nil {
		return Hash{}, fmt.Errorf("lookup commit: %w", err)
	}
	defer commit.Free()

	return HashFromOid(commit.TreeId()), nil
}

func classifyRevparseError(ref string, err error) error {
	switch {
	case git2go.IsErrorCode(err, git2go.ErrorCodeAmbiguous):
		return fmt.Errorf("%w: %s", ErrAmbiguousRevision, ref)
	case git2go.IsErrorCode(err, git2go.ErrorCodeNotFound),
		git2go.IsErrorCode(err, git2go.ErrorCodeInvalidSpec):
		return fmt.Errorf("%w: %s", ErrRevisionNotFound, ref)
	default:
		return fmt.Errorf("resolve %s: %w", ref, err)
	}
}

// Native returns the underlying libgit2 repository for advanced operations.
func (r *Repository) Native() *git2go.Repository {
	return r.repo
}
