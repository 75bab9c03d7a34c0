package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/gitattr/pkg/attribution"
	"github.com/Sumatoshi-tech/gitattr/pkg/blame"
	"github.com/Sumatoshi-tech/gitattr/pkg/revision"
)

func intPtr(v int) *int { return &v }

func sampleBlame() *attribution.BlameResult {
	return &attribution.BlameResult{
		FilePath:       "/repo/main.go",
		TotalLines:     3,
		RequestedLines: 2,
		LineRange:      attribution.LineRange{From: 1, To: 2},
		Blame: []blame.Line{
			{
				LineNumber: 1,
				Hash:       "1111111111111111111111111111111111111111",
				Author:     "Alice",
				AuthorTime: "1709287200",
				Filename:   "main.go",
				Boundary:   true,
				Content:    "package main",
			},
			{
				LineNumber: 2,
				Hash:       "2222222222222222222222222222222222222222",
				Author:     "Bob",
				AuthorTime: "not-a-number",
				Filename:   "main.go",
				Content:    "\t// entry point",
			},
		},
	}
}

func sampleDetail() *revision.Detail {
	diff := "diff --git a/main.go b/main.go\n--- a/main.go\n+++ b/main.go\n@@ -1 +1 @@\n-old\n+new\n"

	return &revision.Detail{
		Hash:           "2222222222222222222222222222222222222222",
		ShortHash:      "2222222",
		Author:         "Bob",
		AuthorEmail:    "bob@example.com",
		AuthorDate:     "Fri Mar 1 12:00:00 2024 +0200",
		Committer:      "Bob",
		CommitterEmail: "bob@example.com",
		CommitDate:     "Fri Mar 1 12:00:00 2024 +0200",
		Summary:        "Document main",
		Message:        "Document main\n\nMore words.",
		Parents:        []string{"1111111111111111111111111111111111111111"},
		FilesChanged:   3,
		Insertions:     1,
		Deletions:      1,
		Diff:           &diff,
		Files: []revision.ChangedFile{
			{Status: revision.StatusModified, Path: "main.go", Insertions: intPtr(1), Deletions: intPtr(1)},
			{Status: revision.StatusRenamed, Path: "new.go", OldPath: "old.go", Insertions: intPtr(0), Deletions: intPtr(0)},
			{Status: revision.StatusAdded, Path: "logo.png"},
		},
	}
}

func TestRenderBlame_Table(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, renderBlame(&buf, FormatTable, sampleBlame()))

	out := buf.String()
	assert.Contains(t, out, "^11111111")
	assert.Contains(t, out, "22222222")
	assert.NotContains(t, out, "222222222")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "not-a-number")
	assert.Contains(t, out, "    // entry point")
	assert.Contains(t, out, "2 of 3 lines")
}

func TestRenderBlame_EmptyWindow(t *testing.T) {
	t.Parallel()

	result := &attribution.BlameResult{
		FilePath:   "/repo/main.go",
		TotalLines: 3,
		LineRange:  attribution.LineRange{From: 10, To: 20},
		Blame:      []blame.Line{},
	}

	var buf bytes.Buffer

	require.NoError(t, renderBlame(&buf, FormatTable, result))
	assert.Contains(t, buf.String(), "no lines in 10-20 (file has 3)")
}

func TestRenderBlame_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, renderBlame(&buf, FormatJSON, sampleBlame()))

	var decoded attribution.BlameResult

	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, *sampleBlame(), decoded)
}

func TestRenderBlame_YAMLKeepsJSONKeys(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, renderBlame(&buf, FormatYAML, sampleBlame()))

	out := buf.String()
	assert.Contains(t, out, "file_path: /repo/main.go\n")
	assert.Contains(t, out, "total_lines: 3\n")
	assert.Contains(t, out, "line_number: 1")
	assert.NotContains(t, out, "{")

	var decoded map[string]any

	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "/repo/main.go", decoded["file_path"])
	assert.Len(t, decoded["blame"], 2)
}

func TestRenderDetail_Table(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, renderDetail(&buf, FormatTable, sampleDetail()))

	out := buf.String()
	assert.Contains(t, out, "commit 2222222222222222222222222222222222222222")
	assert.Contains(t, out, "Author:     Bob <bob@example.com>")
	assert.Contains(t, out, "    More words.")
	assert.NotContains(t, out, "Merge:")
	assert.Contains(t, out, "old.go → new.go")
	assert.Contains(t, out, "bin")
	assert.Contains(t, out, "3 files changed, 1 insertions(+), 1 deletions(-)")
	assert.Contains(t, out, "@@ -1 +1 @@")
	assert.Contains(t, out, "+new")
}

func TestRenderDetail_MergeAndFilePatches(t *testing.T) {
	t.Parallel()

	detail := sampleDetail()
	detail.Diff = nil
	detail.Parents = append(detail.Parents, "3333333333333333333333333333333333333333")
	patch := "diff --git a/main.go b/main.go\n-only\n"
	detail.Files[0].Patch = &patch

	var buf bytes.Buffer

	require.NoError(t, renderDetail(&buf, FormatTable, detail))

	out := buf.String()
	assert.Contains(t, out, "Merge:      1111111111111111111111111111111111111111 3333333333333333333333333333333333333333")
	assert.Contains(t, out, "-only")
	assert.NotContains(t, out, "+new")
}

func TestRenderDetail_YAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, renderDetail(&buf, FormatYAML, sampleDetail()))

	var decoded map[string]any

	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "2222222", decoded["short_hash"])
	assert.Equal(t, "Document main\n\nMore words.", decoded["message"])
	assert.Len(t, decoded["files"], 3)
}

func TestOptions_OutputFormat(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		in   string
		want string
	}{
		{"", FormatTable},
		{FormatTable, FormatTable},
		{FormatJSON, FormatJSON},
		{FormatYAML, FormatYAML},
	} {
		opts := Options{Format: tc.in}

		got, err := opts.outputFormat()
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	opts := Options{Format: "xml"}

	_, err := opts.outputFormat()
	require.ErrorIs(t, err, ErrInvalidFormat)
}
