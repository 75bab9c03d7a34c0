package attribution

import (
	"errors"
	"fmt"
)

// Error classes. Every error returned by Service matches exactly one of them
// through errors.Is, and also matches its underlying cause.
var (
	// ErrValidation indicates a missing or malformed request field.
	ErrValidation = errors.New("invalid request")
	// ErrNotFound indicates a missing file or an unresolvable revision.
	ErrNotFound = errors.New("not found")
	// ErrNotRepository indicates that the file is not under version control.
	ErrNotRepository = errors.New("not a git repository")
	// ErrUpstream indicates that a mandatory git call failed.
	ErrUpstream = errors.New("git command failed")
)

// Validation causes.
var (
	ErrEmptyFilePath       = errors.New("file_path is required and must not be empty")
	ErrFilePathNotAbsolute = errors.New("file_path must be an absolute path")
	ErrNotRegularFile      = errors.New("file_path must reference a regular file")
	ErrEmptyCommitHash     = errors.New("commit_hash is required and must not be empty")
	ErrInvalidLineBound    = errors.New("line bounds must be at least 1")
	ErrInvertedLineRange   = errors.New("line_from must not exceed line_to")
)

func classed(class error, op string, cause error) error {
	return fmt.Errorf("%w: %s: %w", class, op, cause)
}

func validationError(cause error) error {
	return fmt.Errorf("%w: %w", ErrValidation, cause)
}
