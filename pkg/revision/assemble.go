package revision

import (
	"github.com/Sumatoshi-tech/gitattr/pkg/patch"
)

// Assemble builds a Detail from the header, name-status and numstat reports
// of one revision. It performs no I/O.
func Assemble(headerText, statusText, numstatText string) *Detail {
	header := ParseHeader(headerText)
	files := MergeReports(ParseStatus(statusText), ParseNumstat(numstatText))
	changed, insertions, deletions := Totals(files)

	return &Detail{
		Hash:           header.Hash,
		ShortHash:      shortHash(header.Hash),
		Author:         header.Author,
		AuthorEmail:    header.AuthorEmail,
		AuthorDate:     header.AuthorDate,
		AuthorTZ:       header.AuthorTZ,
		Committer:      header.Committer,
		CommitterEmail: header.CommitterEmail,
		CommitDate:     header.CommitDate,
		CommitterTZ:    header.CommitterTZ,
		Summary:        header.Summary,
		Message:        header.Message,
		Parents:        header.Parents,
		Tree:           header.Tree,
		FilesChanged:   changed,
		Insertions:     insertions,
		Deletions:      deletions,
		Files:          files,
	}
}

func shortHash(hash string) string {
	if len(hash) <= shortHashLen {
		return hash
	}

	return hash[:shortHashLen]
}

// AttachPatches sets each file's Patch from the index, looking up the
// current path first and the old path second. Files without a match keep a
// nil Patch. It returns the number of files that received a patch.
func AttachPatches(detail *Detail, index *patch.Index) int {
	attached := 0

	for i := range detail.Files {
		file := &detail.Files[i]

		text, ok := index.Lookup(file.Path)
		if !ok && file.OldPath != "" {
			text, ok = index.Lookup(file.OldPath)
		}

		if !ok {
			continue
		}

		file.Patch = &text
		attached++
	}

	return attached
}
