package revision_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitattr/pkg/revision"
)

func intPtr(v int) *int { return &v }

func TestParseStatus(t *testing.T) {
	t.Parallel()

	text := "\nM\tmain.go\nA\tdocs/new file.md\nR087\told.txt\tnew.txt\nC100\tsrc.go\tcopy.go\nD\tgone.go\n"

	entries := revision.ParseStatus(text)

	assert.Equal(t, []revision.StatusEntry{
		{Status: "M", Path: "main.go"},
		{Status: "A", Path: "docs/new file.md"},
		{Status: "R", Path: "new.txt", OldPath: "old.txt"},
		{Status: "C", Path: "copy.go", OldPath: "src.go"},
		{Status: "D", Path: "gone.go"},
	}, entries)
}

func TestParseStatus_RenameWithoutNewPath(t *testing.T) {
	t.Parallel()

	entries := revision.ParseStatus("R100\tsame.txt\n")

	require.Len(t, entries, 1)
	assert.Equal(t, "same.txt", entries[0].Path)
	assert.Equal(t, "same.txt", entries[0].OldPath)
}

func TestParseStatus_SkipsMalformed(t *testing.T) {
	t.Parallel()

	entries := revision.ParseStatus("garbage\n\tno-status\nM\t\nT\tlink\n")

	assert.Equal(t, []revision.StatusEntry{{Status: "T", Path: "link"}}, entries)
}

func TestParseNumstat(t *testing.T) {
	t.Parallel()

	text := "3\t1\tmain.go\n-\t-\tlogo.png\n2\t0\told.txt\tnew.txt\n"

	entries := revision.ParseNumstat(text)

	assert.Equal(t, []revision.NumstatEntry{
		{Insertions: intPtr(3), Deletions: intPtr(1), Path: "main.go"},
		{Path: "logo.png"},
		{Insertions: intPtr(2), Deletions: intPtr(0), Path: "new.txt", OldPath: "old.txt"},
	}, entries)
}

func TestParseNumstat_RenameNotations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		field   string
		oldPath string
		path    string
	}{
		{"arrow", "old.txt => new.txt", "old.txt", "new.txt"},
		{"brace file", "{old.txt => new.txt}", "old.txt", "new.txt"},
		{"brace dir", "pkg/{a => b}/file.go", "pkg/a/file.go", "pkg/b/file.go"},
		{"brace into subdir", "{ => sub}/file.go", "file.go", "sub/file.go"},
		{"brace out of subdir", "pkg/{sub => }/file.go", "pkg/sub/file.go", "pkg/file.go"},
		{"plain", "plain.go", "", "plain.go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			entries := revision.ParseNumstat("1\t1\t" + tt.field)
			require.Len(t, entries, 1)
			assert.Equal(t, tt.oldPath, entries[0].OldPath)
			assert.Equal(t, tt.path, entries[0].Path)
		})
	}
}

func TestParseNumstat_SkipsMalformed(t *testing.T) {
	t.Parallel()

	entries := revision.ParseNumstat("\n1\t2\n1\t2\t\nnot a record\n")

	assert.Empty(t, entries)
	assert.NotNil(t, entries)
}

func TestParseNumstat_PartialBinary(t *testing.T) {
	t.Parallel()

	entries := revision.ParseNumstat("5\t-\tweird.bin\n")

	require.Len(t, entries, 1)
	assert.Equal(t, intPtr(5), entries[0].Insertions)
	assert.Nil(t, entries[0].Deletions)
}
