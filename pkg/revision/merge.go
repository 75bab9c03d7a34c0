package revision

// fileSet is an insertion-ordered map of changed files keyed by current path.
type fileSet struct {
	order  []string
	byPath map[string]*ChangedFile
}

func newFileSet() *fileSet {
	return &fileSet{byPath: make(map[string]*ChangedFile)}
}

// upsert returns the entry for path, creating an empty one on first sight.
func (s *fileSet) upsert(path string) *ChangedFile {
	if file, ok := s.byPath[path]; ok {
		return file
	}

	file := &ChangedFile{Path: path}
	s.byPath[path] = file
	s.order = append(s.order, path)

	return file
}

func (s *fileSet) files() []ChangedFile {
	out := make([]ChangedFile, 0, len(s.order))
	for _, path := range s.order {
		out = append(out, *s.byPath[path])
	}

	return out
}

// MergeReports joins the name-status and numstat listings on current path.
// Status entries seed the set; numstat entries only fill fields that are
// still empty, so a status or old path set by the status report is never
// overwritten. Paths present only in numstat are appended in numstat order.
func MergeReports(status []StatusEntry, numstat []NumstatEntry) []ChangedFile {
	set := newFileSet()

	for _, entry := range status {
		file := set.upsert(entry.Path)
		fillString(&file.Status, entry.Status)
		fillString(&file.OldPath, entry.OldPath)
	}

	for _, entry := range numstat {
		file := set.upsert(entry.Path)
		fillString(&file.OldPath, entry.OldPath)
		fillCount(&file.Insertions, entry.Insertions)
		fillCount(&file.Deletions, entry.Deletions)
	}

	return set.files()
}

func fillString(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}

func fillCount(dst **int, value *int) {
	if *dst == nil && value != nil {
		count := *value
		*dst = &count
	}
}

// Totals sums the numeric counts of files. Binary entries count as changed
// files but add nothing to insertions or deletions.
func Totals(files []ChangedFile) (changed, insertions, deletions int) {
	for _, file := range files {
		if file.Insertions != nil {
			insertions += *file.Insertions
		}

		if file.Deletions != nil {
			deletions += *file.Deletions
		}
	}

	return len(files), insertions, deletions
}
