package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/gitattr/pkg/attribution"
	"github.com/Sumatoshi-tech/gitattr/pkg/blame"
	"github.com/Sumatoshi-tech/gitattr/pkg/revision"
)

const (
	blameHashWidth = 8
	yamlIndent     = 2
	tabWidth       = 4
)

var (
	hashColor    = color.New(color.FgYellow)
	headColor    = color.New(color.Bold)
	hunkColor    = color.New(color.FgCyan)
	addedColor   = color.New(color.FgGreen)
	deletedColor = color.New(color.FgRed)

	statusColors = map[string]*color.Color{
		revision.StatusAdded:       addedColor,
		revision.StatusDeleted:     deletedColor,
		revision.StatusModified:    hashColor,
		revision.StatusRenamed:     hunkColor,
		revision.StatusCopied:      hunkColor,
		revision.StatusTypeChanged: color.New(color.FgMagenta),
	}
)

func renderBlame(w io.Writer, format string, result *attribution.BlameResult) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatYAML:
		return writeYAML(w, result)
	}

	tbl := newTable(w)
	tbl.AppendHeader(table.Row{"LINE", "COMMIT", "AUTHOR", "WHEN", "CONTENT"})

	for _, line := range result.Blame {
		tbl.AppendRow(table.Row{
			line.LineNumber,
			blameCommit(line),
			line.Author,
			relativeTime(line.AuthorTime),
			strings.ReplaceAll(line.Content, "\t", strings.Repeat(" ", tabWidth)),
		})
	}

	tbl.AppendFooter(table.Row{"", "", "", "", blameSummary(result)})
	tbl.Render()

	return nil
}

func blameCommit(line blame.Line) string {
	hash := line.Hash[:min(blameHashWidth, len(line.Hash))]
	if line.Boundary {
		hash = "^" + hash
	}

	return hashColor.Sprint(hash)
}

func relativeTime(unixSeconds string) string {
	seconds, err := strconv.ParseInt(unixSeconds, 10, 64)
	if err != nil {
		return unixSeconds
	}

	return humanize.Time(time.Unix(seconds, 0))
}

func blameSummary(result *attribution.BlameResult) string {
	if result.RequestedLines == 0 {
		return fmt.Sprintf("no lines in %d-%d (file has %d)", result.LineRange.From, result.LineRange.To, result.TotalLines)
	}

	return fmt.Sprintf("%d of %d lines", result.RequestedLines, result.TotalLines)
}

func renderDetail(w io.Writer, format string, detail *revision.Detail) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, detail)
	case FormatYAML:
		return writeYAML(w, detail)
	}

	writeHeader(w, detail)

	if len(detail.Files) > 0 {
		writeFiles(w, detail)
	}

	if detail.Diff != nil {
		writeDiff(w, *detail.Diff)

		return nil
	}

	for _, file := range detail.Files {
		if file.Patch != nil {
			writeDiff(w, *file.Patch)
		}
	}

	return nil
}

func writeHeader(w io.Writer, detail *revision.Detail) {
	hashColor.Fprintf(w, "commit %s\n", detail.Hash)

	if len(detail.Parents) > 1 {
		fmt.Fprintf(w, "Merge:      %s\n", strings.Join(detail.Parents, " "))
	}

	fmt.Fprintf(w, "Author:     %s <%s>\n", detail.Author, detail.AuthorEmail)
	fmt.Fprintf(w, "AuthorDate: %s\n", detail.AuthorDate)
	fmt.Fprintf(w, "Commit:     %s <%s>\n", detail.Committer, detail.CommitterEmail)
	fmt.Fprintf(w, "CommitDate: %s\n", detail.CommitDate)

	if detail.Tree != "" {
		fmt.Fprintf(w, "Tree:       %s\n", detail.Tree)
	}

	fmt.Fprintln(w)

	for line := range strings.SplitSeq(detail.Message, "\n") {
		fmt.Fprintf(w, "    %s\n", line)
	}

	fmt.Fprintln(w)
}

func writeFiles(w io.Writer, detail *revision.Detail) {
	tbl := newTable(w)
	tbl.AppendHeader(table.Row{"STATUS", "PATH", "+", "-"})

	for _, file := range detail.Files {
		ins, del := "bin", "bin"
		if !file.IsBinary() {
			ins, del = countOrDash(file.Insertions), countOrDash(file.Deletions)
		}

		tbl.AppendRow(table.Row{statusLetter(file.Status), filePath(file), ins, del})
	}

	tbl.AppendFooter(table.Row{"", fmt.Sprintf("%d files changed, %s insertions(+), %s deletions(-)",
		detail.FilesChanged, humanize.Comma(int64(detail.Insertions)), humanize.Comma(int64(detail.Deletions))), "", ""})
	tbl.Render()
	fmt.Fprintln(w)
}

func statusLetter(status string) string {
	if status == "" {
		return "?"
	}

	if c, ok := statusColors[status]; ok {
		return c.Sprint(status)
	}

	return status
}

func filePath(file revision.ChangedFile) string {
	if file.OldPath != "" && file.OldPath != file.Path {
		return file.OldPath + " → " + file.Path
	}

	return file.Path
}

func countOrDash(n *int) string {
	if n == nil {
		return "-"
	}

	return strconv.Itoa(*n)
}

func writeDiff(w io.Writer, diff string) {
	for line := range strings.SplitSeq(strings.TrimSuffix(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "diff --git"), strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			headColor.Fprintln(w, line)
		case strings.HasPrefix(line, "@@"):
			hunkColor.Fprintln(w, line)
		case strings.HasPrefix(line, "+"):
			addedColor.Fprintln(w, line)
		case strings.HasPrefix(line, "-"):
			deletedColor.Fprintln(w, line)
		default:
			fmt.Fprintln(w, line)
		}
	}
}

func newTable(w io.Writer) table.Writer {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Format.Footer = text.FormatDefault

	return tbl
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(value)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	return nil
}

// writeYAML emits value with the same keys and key order as its JSON form.
func writeYAML(w io.Writer, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	var doc yaml.Node

	err = yaml.Unmarshal(data, &doc)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	blockStyle(&doc)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(yamlIndent)

	err = enc.Encode(&doc)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	return enc.Close()
}

// blockStyle clears the flow and quoting styles inherited from JSON.
func blockStyle(node *yaml.Node) {
	node.Style = 0

	for _, child := range node.Content {
		blockStyle(child)
	}
}
