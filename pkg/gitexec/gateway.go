package gitexec

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Sumatoshi-tech/gitattr/pkg/attribution"
	"github.com/Sumatoshi-tech/gitattr/pkg/gitlib"
)

// ErrInvalidHash indicates a report was requested for something other than a
// full object hash.
var ErrInvalidHash = errors.New("expected a full 40-character object hash")

// Gateway implements attribution.Gateway. Structural lookups go through
// libgit2; textual reports come from the git binary so that their format
// matches what users see in a terminal.
type Gateway struct {
	runner *Runner
}

var _ attribution.Gateway = (*Gateway)(nil)

// NewGateway creates a Gateway that runs git through runner.
func NewGateway(runner *Runner) *Gateway {
	return &Gateway{runner: runner}
}

// RepositoryRoot returns the working tree root enclosing dir.
func (g *Gateway) RepositoryRoot(_ context.Context, dir string) (string, error) {
	repo, err := discover(dir)
	if err != nil {
		return "", err
	}
	defer repo.Free()

	root, err := repo.WorkDir()
	if err != nil {
		return "", mapRepositoryError(err)
	}

	return root, nil
}

// RawBlame runs blame from the file's own directory, which keeps symlinked
// checkouts and nested repositories consistent with RepositoryRoot.
func (g *Gateway) RawBlame(ctx context.Context, filePath string) (string, error) {
	return g.runner.Run(ctx, filepath.Dir(filePath),
		"blame", "--line-porcelain", "--", filepath.Base(filePath))
}

// ResolveRevision resolves ref to the full hash of a commit.
func (g *Gateway) ResolveRevision(_ context.Context, dir, ref string) (string, error) {
	repo, err := discover(dir)
	if err != nil {
		return "", err
	}
	defer repo.Free()

	hash, err := repo.ResolveCommit(ref)
	if err != nil {
		return "", mapRepositoryError(err)
	}

	return hash.String(), nil
}

// ShowHeader returns the fuller header of hash with a "tree" line inserted
// after the "commit" line.
func (g *Gateway) ShowHeader(ctx context.Context, dir, hash string) (string, error) {
	err := checkFullHash(hash)
	if err != nil {
		return "", err
	}

	text, err := g.runner.Run(ctx, dir,
		"show", "--no-patch", "--no-abbrev-commit", "--format=fuller", hash)
	if err != nil {
		return "", err
	}

	tree, err := g.treeOf(dir, hash)
	if err != nil {
		return "", err
	}

	first, rest, _ := strings.Cut(text, "\n")

	return first + "\ntree " + tree + "\n" + rest, nil
}

// ShowNameStatus returns the name-status listing of hash with renames detected.
func (g *Gateway) ShowNameStatus(ctx context.Context, dir, hash string) (string, error) {
	return g.show(ctx, dir, hash, "--format=", "--name-status", "-M")
}

// ShowNumstat returns the numstat listing of hash with renames detected.
func (g *Gateway) ShowNumstat(ctx context.Context, dir, hash string) (string, error) {
	return g.show(ctx, dir, hash, "--format=", "--numstat", "-M")
}

// ShowFullDiff returns the default show output of hash: header and patch.
func (g *Gateway) ShowFullDiff(ctx context.Context, dir, hash string) (string, error) {
	return g.show(ctx, dir, hash, "--patch", "-M", "--src-prefix=a/", "--dst-prefix=b/")
}

// ShowPatch returns only the patch of hash.
func (g *Gateway) ShowPatch(ctx context.Context, dir, hash string) (string, error) {
	return g.show(ctx, dir, hash, "--format=", "--patch", "-M", "--src-prefix=a/", "--dst-prefix=b/")
}

func (g *Gateway) show(ctx context.Context, dir, hash string, flags ...string) (string, error) {
	err := checkFullHash(hash)
	if err != nil {
		return "", err
	}

	args := append([]string{"show"}, flags...)
	args = append(args, hash)

	return g.runner.Run(ctx, dir, args...)
}

func (g *Gateway) treeOf(dir, hash string) (string, error) {
	repo, err := discover(dir)
	if err != nil {
		return "", err
	}
	defer repo.Free()

	tree, err := repo.TreeOf(gitlib.NewHash(hash))
	if err != nil {
		return "", fmt.Errorf("tree of %s: %w", hash, err)
	}

	return tree.String(), nil
}

// checkFullHash keeps user input from reaching git's argument list: only
// hashes produced by ResolveRevision are accepted.
func checkFullHash(hash string) error {
	if len(hash) != gitlib.HashHexSize || !gitlib.IsHexHash(hash) {
		return fmt.Errorf("%w: %q", ErrInvalidHash, hash)
	}

	return nil
}

func discover(dir string) (*gitlib.Repository, error) {
	repo, err := gitlib.Discover(dir)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	return repo, nil
}

// mapRepositoryError lifts gitlib sentinels into the attribution error classes.
func mapRepositoryError(err error) error {
	switch {
	case errors.Is(err, gitlib.ErrNotRepository), errors.Is(err, gitlib.ErrBareRepository):
		return fmt.Errorf("%w: %w", attribution.ErrNotRepository, err)
	case errors.Is(err, gitlib.ErrRevisionNotFound), errors.Is(err, gitlib.ErrAmbiguousRevision):
		return fmt.Errorf("%w: %w", attribution.ErrNotFound, err)
	default:
		return err
	}
}
