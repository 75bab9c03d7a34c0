// Package patch splits a multi-file unified diff into per-file sections.
package patch

import (
	"regexp"
	"strings"
)

const (
	srcPrefix = "a/"
	dstPrefix = "b/"
)

// sectionHeader matches "diff --git a/<old> b/<new>". Paths may contain
// spaces; the greedy old side ends at the last " b/".
var sectionHeader = regexp.MustCompile(`^diff --git (a/.+) (b/.+)$`)

// Section is the text of one file's diff, header line included.
type Section struct {
	// OldPath and NewPath are the header paths with the a/ and b/ prefixes removed.
	OldPath string
	NewPath string
	Text    string
}

// Index maps file paths to their diff sections.
type Index struct {
	sections []Section
	byPath   map[string]int
}

// Split scans a full diff and indexes each "diff --git" section under both
// its old and new path. Lines before the first header belong to no section.
// When two sections claim the same path the later one wins.
func Split(diff string) *Index {
	idx := &Index{byPath: make(map[string]int)}

	var (
		open    bool
		current Section
		buffer  []string
	)

	closeSection := func() {
		if !open {
			return
		}

		current.Text = strings.Join(buffer, "\n")
		idx.add(current)
	}

	for line := range strings.SplitSeq(diff, "\n") {
		match := sectionHeader.FindStringSubmatch(line)
		if match != nil {
			closeSection()

			open = true
			current = Section{
				OldPath: strings.TrimPrefix(match[1], srcPrefix),
				NewPath: strings.TrimPrefix(match[2], dstPrefix),
			}
			buffer = []string{line}

			continue
		}

		if open {
			buffer = append(buffer, line)
		}
	}

	closeSection()

	return idx
}

func (idx *Index) add(section Section) {
	pos := len(idx.sections)
	idx.sections = append(idx.sections, section)
	idx.byPath[section.OldPath] = pos
	idx.byPath[section.NewPath] = pos
}

// Lookup returns the section text for a path on either side of the diff.
func (idx *Index) Lookup(path string) (string, bool) {
	pos, ok := idx.byPath[path]
	if !ok {
		return "", false
	}

	return idx.sections[pos].Text, true
}

// Sections returns the sections in the order they were declared.
func (idx *Index) Sections() []Section {
	out := make([]Section, len(idx.sections))
	copy(out, idx.sections)

	return out
}

// Len returns the number of sections.
func (idx *Index) Len() int {
	return len(idx.sections)
}

// Paths returns the number of distinct indexed paths.
func (idx *Index) Paths() int {
	return len(idx.byPath)
}
