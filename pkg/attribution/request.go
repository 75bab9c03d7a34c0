package attribution

import (
	"github.com/Sumatoshi-tech/gitattr/pkg/blame"
)

// BlameRequest asks for the attribution of a file or a window of it.
type BlameRequest struct {
	FilePath string
	// LineFrom and LineTo are optional inclusive 1-based bounds.
	LineFrom *int
	LineTo   *int
}

// LineRange is the effective window of a blame result.
type LineRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// BlameResult is the attribution of the requested lines.
type BlameResult struct {
	FilePath       string       `json:"file_path"`
	TotalLines     int          `json:"total_lines"`
	RequestedLines int          `json:"requested_lines"`
	LineRange      LineRange    `json:"line_range"`
	Blame          []blame.Line `json:"blame"`
}

// RevisionDetailRequest asks for the detail of one commit. FilePath selects
// the repository.
type RevisionDetailRequest struct {
	CommitHash string
	FilePath   string
	// IncludeDiff adds the full diff text and implies IncludeFileDiffs.
	IncludeDiff bool
	// IncludeFileDiffs adds a patch to every changed file.
	IncludeFileDiffs bool
}

func (r BlameRequest) validate() error {
	err := validateFilePath(r.FilePath)
	if err != nil {
		return err
	}

	if (r.LineFrom != nil && *r.LineFrom < 1) || (r.LineTo != nil && *r.LineTo < 1) {
		return validationError(ErrInvalidLineBound)
	}

	if r.LineFrom != nil && r.LineTo != nil && *r.LineFrom > *r.LineTo {
		return validationError(ErrInvertedLineRange)
	}

	return nil
}

func (r RevisionDetailRequest) validate() error {
	if r.CommitHash == "" {
		return validationError(ErrEmptyCommitHash)
	}

	return validateFilePath(r.FilePath)
}
