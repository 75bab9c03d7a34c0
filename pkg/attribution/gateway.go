package attribution

import "context"

// Gateway fetches raw git reports. Every method takes a directory inside the
// working tree so that one process can serve many repositories.
//
// RepositoryRoot must return an error matching ErrNotRepository when dir is
// not inside a working tree, and ResolveRevision an error matching
// ErrNotFound when ref names no commit.
type Gateway interface {
	// RepositoryRoot returns the top of the working tree enclosing dir.
	RepositoryRoot(ctx context.Context, dir string) (string, error)
	// RawBlame returns `git blame --line-porcelain` output for a file.
	RawBlame(ctx context.Context, filePath string) (string, error)
	// ResolveRevision returns the full hash of the commit ref names.
	ResolveRevision(ctx context.Context, dir, ref string) (string, error)
	// ShowHeader returns the fuller header of a commit, including its tree line.
	ShowHeader(ctx context.Context, dir, hash string) (string, error)
	// ShowNameStatus returns the name-status listing of a commit.
	ShowNameStatus(ctx context.Context, dir, hash string) (string, error)
	// ShowNumstat returns the numstat listing of a commit.
	ShowNumstat(ctx context.Context, dir, hash string) (string, error)
	// ShowFullDiff returns the commit header followed by its patch.
	ShowFullDiff(ctx context.Context, dir, hash string) (string, error)
	// ShowPatch returns only the patch of a commit.
	ShowPatch(ctx context.Context, dir, hash string) (string, error)
}
