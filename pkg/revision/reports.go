package revision

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	fieldSeparator = "\t"
	renameArrow    = " => "
)

// StatusEntry is one record of the name-status listing.
type StatusEntry struct {
	Status  string
	Path    string
	OldPath string
}

// NumstatEntry is one record of the numstat listing. Nil counts mark binary changes.
type NumstatEntry struct {
	Insertions *int
	Deletions  *int
	Path       string
	OldPath    string
}

// ParseStatus reads `--name-status` output: "<status>\t<path>" or, for
// renames and copies, "<status><score>\t<old>\t<new>". Blank and malformed
// lines are skipped.
func ParseStatus(text string) []StatusEntry {
	entries := make([]StatusEntry, 0)

	for line := range strings.SplitSeq(text, "\n") {
		fields := strings.Split(line, fieldSeparator)
		if len(fields) < 2 || fields[0] == "" || fields[1] == "" {
			continue
		}

		entry := StatusEntry{Status: fields[0][:1], Path: fields[1]}

		if entry.Status == StatusRenamed || entry.Status == StatusCopied {
			entry.OldPath = fields[1]
			if len(fields) > 2 && fields[2] != "" {
				entry.Path = fields[2]
			}
		}

		entries = append(entries, entry)
	}

	return entries
}

// ParseNumstat reads `--numstat` output. Paths come as a single field, as
// separate old and new fields, or in git's "old => new" and
// "dir/{old => new}/file" rename notation. A count that is not a number
// ("-" for binary files) is left nil.
func ParseNumstat(text string) []NumstatEntry {
	entries := make([]NumstatEntry, 0)

	for line := range strings.SplitSeq(text, "\n") {
		fields := strings.Split(line, fieldSeparator)
		if len(fields) < 3 || fields[2] == "" {
			continue
		}

		entry := NumstatEntry{
			Insertions: parseCount(fields[0]),
			Deletions:  parseCount(fields[1]),
		}

		if len(fields) > 3 && fields[3] != "" {
			entry.OldPath, entry.Path = fields[2], fields[3]
		} else {
			entry.OldPath, entry.Path = expandRename(fields[2])
		}

		entries = append(entries, entry)
	}

	return entries
}

func parseCount(field string) *int {
	count, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil {
		return nil
	}

	return &count
}

// braceRename matches the compact "prefix{old => new}suffix" notation.
var braceRename = regexp.MustCompile(`^(.*)\{(.*) => (.*)\}(.*)$`)

// expandRename returns (oldPath, path). oldPath is empty for a plain path.
func expandRename(field string) (oldPath, path string) {
	if match := braceRename.FindStringSubmatch(field); match != nil {
		prefix, from, to, suffix := match[1], match[2], match[3], match[4]

		return joinRenamePart(prefix, from, suffix), joinRenamePart(prefix, to, suffix)
	}

	if from, to, ok := strings.Cut(field, renameArrow); ok {
		return from, to
	}

	return "", field
}

// joinRenamePart rebuilds one side of a brace rename. An empty side such as
// "{ => sub}/f.go" must not leave a doubled separator behind.
func joinRenamePart(prefix, middle, suffix string) string {
	if middle == "" {
		return prefix + strings.TrimPrefix(suffix, "/")
	}

	return prefix + middle + suffix
}
