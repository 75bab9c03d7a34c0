// Package blame decodes `git blame --line-porcelain` output into ordered
// per-line attribution records and restricts them to line windows.
package blame

// Line is the attribution of one line of the file at its current revision.
type Line struct {
	LineNumber       int    `json:"line_number"`
	Hash             string `json:"hash"`
	Author           string `json:"author"`
	AuthorMail       string `json:"author_mail"`
	AuthorTime       string `json:"author_time"`
	AuthorTZ         string `json:"author_tz"`
	Committer        string `json:"committer"`
	CommitterMail    string `json:"committer_mail"`
	CommitterTime    string `json:"committer_time"`
	CommitterTZ      string `json:"committer_tz"`
	Summary          string `json:"summary"`
	PreviousHash     string `json:"previous_hash,omitempty"`
	PreviousFilename string `json:"previous_filename,omitempty"`
	Filename         string `json:"filename"`
	Boundary         bool   `json:"boundary,omitempty"`
	Content          string `json:"content"`
}
