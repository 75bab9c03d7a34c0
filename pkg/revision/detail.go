// Package revision assembles the detail record of a single commit from the
// independently formatted reports git produces for it: the fuller header,
// the name-status listing, the numstat listing and an optional full diff.
package revision

// Status letters of the name-status listing.
const (
	StatusAdded       = "A"
	StatusCopied      = "C"
	StatusDeleted     = "D"
	StatusModified    = "M"
	StatusRenamed     = "R"
	StatusTypeChanged = "T"
	StatusUnmerged    = "U"
	StatusUnknown     = "X"
	StatusBroken      = "B"
)

// shortHashLen is the prefix length of Detail.ShortHash.
const shortHashLen = 7

// Detail describes one revision.
type Detail struct {
	Hash           string        `json:"hash"`
	ShortHash      string        `json:"short_hash"`
	Author         string        `json:"author"`
	AuthorEmail    string        `json:"author_email"`
	AuthorDate     string        `json:"author_date"`
	AuthorTZ       string        `json:"author_tz"`
	Committer      string        `json:"committer"`
	CommitterEmail string        `json:"committer_email"`
	CommitDate     string        `json:"commit_date"`
	CommitterTZ    string        `json:"committer_tz"`
	Summary        string        `json:"summary"`
	Message        string        `json:"message"`
	Parents        []string      `json:"parents"`
	Tree           string        `json:"tree"`
	FilesChanged   int           `json:"files_changed"`
	Insertions     int           `json:"insertions"`
	Deletions      int           `json:"deletions"`
	Diff           *string       `json:"diff,omitempty"`
	Files          []ChangedFile `json:"files"`
}

// ChangedFile is the change of one path within a revision.
type ChangedFile struct {
	Status  string `json:"status"`
	Path    string `json:"path"`
	OldPath string `json:"old_path,omitempty"`
	// Insertions and Deletions are nil for binary changes.
	Insertions *int    `json:"insertions,omitempty"`
	Deletions  *int    `json:"deletions,omitempty"`
	Patch      *string `json:"patch,omitempty"`
}

// IsBinary reports whether numstat marked the change as binary.
func (f ChangedFile) IsBinary() bool {
	return f.Insertions == nil && f.Deletions == nil
}

// IsRename reports whether the status classifies the change as a rename or a copy.
func (f ChangedFile) IsRename() bool {
	return f.Status == StatusRenamed || f.Status == StatusCopied
}
