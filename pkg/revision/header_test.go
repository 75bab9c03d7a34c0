package revision_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/gitattr/pkg/revision"
)

const fullerHeader = `commit 0123456789abcdef0123456789abcdef01234567
tree fedcba9876543210fedcba9876543210fedcba98
Author:     Jane Doe <jane@example.com>
AuthorDate: Thu Nov 14 22:13:20 2023 +0100
Commit:     John Roe <john@example.com>
CommitDate: Fri Nov 15 08:00:00 2023 -0700

    Add attribution parser

    The parser is a two-state machine.

    Trailing paragraph.
`

const mergeHeader = `commit 1111111111111111111111111111111111111111
Merge: abc1234 def5678
Author: Jane Doe <jane@example.com>
AuthorDate: Thu Nov 14 22:13:20 2023 +0100
Commit: Jane Doe <jane@example.com>
CommitDate: Thu Nov 14 22:13:20 2023 +0100

    Merge branch 'feature'
`

func TestParseHeader_Fuller(t *testing.T) {
	t.Parallel()

	header := revision.ParseHeader(fullerHeader)

	assert.Equal(t, "0123456789abcdef0123456789abcdef01234567", header.Hash)
	assert.Equal(t, "fedcba9876543210fedcba9876543210fedcba98", header.Tree)
	assert.Equal(t, "Jane Doe", header.Author)
	assert.Equal(t, "jane@example.com", header.AuthorEmail)
	assert.Equal(t, "Thu Nov 14 22:13:20 2023", header.AuthorDate)
	assert.Equal(t, "+0100", header.AuthorTZ)
	assert.Equal(t, "John Roe", header.Committer)
	assert.Equal(t, "john@example.com", header.CommitterEmail)
	assert.Equal(t, "Fri Nov 15 08:00:00 2023", header.CommitDate)
	assert.Equal(t, "-0700", header.CommitterTZ)
	assert.Equal(t, "Add attribution parser", header.Summary)
	assert.Equal(t,
		"Add attribution parser\n\nThe parser is a two-state machine.\n\nTrailing paragraph.",
		header.Message)
	assert.Empty(t, header.Parents)
	assert.NotNil(t, header.Parents)
}

func TestParseHeader_MergeParents(t *testing.T) {
	t.Parallel()

	header := revision.ParseHeader(mergeHeader)

	assert.Equal(t, []string{"abc1234", "def5678"}, header.Parents)
	assert.Equal(t, "Merge branch 'feature'", header.Summary)
}

func TestParseHeader_DateWithoutZone(t *testing.T) {
	t.Parallel()

	header := revision.ParseHeader("AuthorDate: 2023-11-14T22:13:20Z\nCommitDate:   1700000000  \n")

	assert.Equal(t, "2023-11-14T22:13:20Z", header.AuthorDate)
	assert.Empty(t, header.AuthorTZ)
	assert.Equal(t, "1700000000", header.CommitDate)
	assert.Empty(t, header.CommitterTZ)
}

func TestParseHeader_RawDate(t *testing.T) {
	t.Parallel()

	header := revision.ParseHeader("AuthorDate: 1700000000 -0330\n")

	assert.Equal(t, "1700000000", header.AuthorDate)
	assert.Equal(t, "-0330", header.AuthorTZ)
}

func TestParseHeader_IdentityWithoutEmail(t *testing.T) {
	t.Parallel()

	header := revision.ParseHeader("Author: build bot\nCommit: Empty Mail <>\n")

	assert.Equal(t, "build bot", header.Author)
	assert.Empty(t, header.AuthorEmail)
	assert.Equal(t, "Empty Mail", header.Committer)
	assert.Empty(t, header.CommitterEmail)
}

func TestParseHeader_DecoratedCommitLine(t *testing.T) {
	t.Parallel()

	header := revision.ParseHeader("commit abcdef0123 (HEAD -> main, origin/main)\n")

	assert.Equal(t, "abcdef0123", header.Hash)
}

func TestParseHeader_SummarySkipsLeadingBlankBodyLines(t *testing.T) {
	t.Parallel()

	header := revision.ParseHeader("commit abc\n\n    \n    first real line\n")

	assert.Equal(t, "first real line", header.Summary)
	assert.Equal(t, "first real line", header.Message)
}

func TestParseHeader_Empty(t *testing.T) {
	t.Parallel()

	header := revision.ParseHeader("")

	assert.Empty(t, header.Hash)
	assert.Empty(t, header.Summary)
	assert.Empty(t, header.Message)
	assert.Empty(t, header.Parents)
}
