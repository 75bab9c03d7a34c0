package revision

import (
	"regexp"
	"strings"
)

const (
	prefixCommit     = "commit "
	prefixAuthor     = "Author: "
	prefixCommitter  = "Commit: "
	prefixAuthorDate = "AuthorDate: "
	prefixCommitDate = "CommitDate: "
	prefixMerge      = "Merge: "
	prefixTree       = "tree "

	bodyIndent = "    "
)

var (
	identityPattern = regexp.MustCompile(`^(.*?)\s*<([^>]*)>\s*$`)
	trailingZone    = regexp.MustCompile(`\s*([+-]\d{4})$`)
)

// Header holds the fields of a `git show --format=fuller` header.
type Header struct {
	Hash           string
	Tree           string
	Parents        []string
	Author         string
	AuthorEmail    string
	AuthorDate     string
	AuthorTZ       string
	Committer      string
	CommitterEmail string
	CommitDate     string
	CommitterTZ    string
	Summary        string
	Message        string
}

// ParseHeader reads a fuller-format header. Lines indented by four spaces
// form the message body, together with the blank lines between them;
// unrecognized lines are skipped.
func ParseHeader(text string) Header {
	header := Header{Parents: []string{}}

	var body []string

	for line := range strings.SplitSeq(text, "\n") {
		if rest, ok := strings.CutPrefix(line, bodyIndent); ok {
			body = append(body, rest)

			continue
		}

		// Some git versions print blank message lines without the indent.
		if line == "" && len(body) > 0 {
			body = append(body, "")

			continue
		}

		header.applyField(line)
	}

	for _, line := range body {
		if strings.TrimSpace(line) != "" {
			header.Summary = strings.TrimSpace(line)

			break
		}
	}

	header.Message = strings.TrimSpace(strings.Join(body, "\n"))

	return header
}

func (h *Header) applyField(line string) {
	switch {
	case strings.HasPrefix(line, prefixCommit):
		// "commit <hash> (HEAD -> main)" decorations are dropped.
		fields := strings.Fields(strings.TrimPrefix(line, prefixCommit))
		if len(fields) > 0 {
			h.Hash = fields[0]
		}
	case strings.HasPrefix(line, prefixTree):
		h.Tree = strings.TrimSpace(strings.TrimPrefix(line, prefixTree))
	case strings.HasPrefix(line, prefixMerge):
		h.Parents = strings.Fields(strings.TrimPrefix(line, prefixMerge))
	case strings.HasPrefix(line, prefixAuthorDate):
		h.AuthorDate, h.AuthorTZ = splitZone(strings.TrimPrefix(line, prefixAuthorDate))
	case strings.HasPrefix(line, prefixCommitDate):
		h.CommitDate, h.CommitterTZ = splitZone(strings.TrimPrefix(line, prefixCommitDate))
	case strings.HasPrefix(line, prefixAuthor):
		h.Author, h.AuthorEmail = splitIdentity(strings.TrimPrefix(line, prefixAuthor))
	case strings.HasPrefix(line, prefixCommitter):
		h.Committer, h.CommitterEmail = splitIdentity(strings.TrimPrefix(line, prefixCommitter))
	}
}

// splitIdentity parses "name <email>". A value without brackets is all name.
func splitIdentity(value string) (name, email string) {
	match := identityPattern.FindStringSubmatch(strings.TrimSpace(value))
	if match == nil {
		return strings.TrimSpace(value), ""
	}

	return strings.TrimSpace(match[1]), strings.TrimSpace(match[2])
}

// splitZone separates a trailing "+hhmm"/"-hhmm" offset from a date string.
func splitZone(value string) (date, zone string) {
	value = strings.TrimSpace(value)

	loc := trailingZone.FindStringSubmatchIndex(value)
	if loc == nil {
		return value, ""
	}

	return strings.TrimSpace(value[:loc[0]]), value[loc[2]:loc[3]]
}
