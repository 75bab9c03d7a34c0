package blame

import (
	"regexp"
	"strconv"
	"strings"
)

// State is the position of the parser within a porcelain record.
type State int

const (
	// StateScanning waits for a header line. Anything else is skipped.
	StateScanning State = iota
	// StateAccumulating collects metadata until the content line arrives.
	StateAccumulating
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StateAccumulating:
		return "accumulating"
	default:
		return "unknown"
	}
}

const (
	contentDelimiter = '\t'
	boundaryMarker   = "boundary"

	headerHashGroup  = 1
	headerFinalGroup = 3
)

// headerPattern matches "<hash> <orig-line> <final-line> [<group-size>]".
var headerPattern = regexp.MustCompile(`^([0-9a-fA-F]{8,40})\s+(\d+)\s+(\d+)(?:\s+(\d+))?$`)

type fieldSetter func(line *Line, value string)

// metadataFields is scanned in order; no prefix is a prefix of another.
var metadataFields = []struct {
	prefix string
	set    fieldSetter
}{
	{"author ", func(l *Line, v string) { l.Author = v }},
	{"author-mail ", func(l *Line, v string) { l.AuthorMail = v }},
	{"author-time ", func(l *Line, v string) { l.AuthorTime = v }},
	{"author-tz ", func(l *Line, v string) { l.AuthorTZ = v }},
	{"committer ", func(l *Line, v string) { l.Committer = v }},
	{"committer-mail ", func(l *Line, v string) { l.CommitterMail = v }},
	{"committer-time ", func(l *Line, v string) { l.CommitterTime = v }},
	{"committer-tz ", func(l *Line, v string) { l.CommitterTZ = v }},
	{"summary ", func(l *Line, v string) { l.Summary = v }},
	{"previous ", setPrevious},
	{"filename ", func(l *Line, v string) { l.Filename = v }},
}

// setPrevious splits "<hash> <filename>"; the filename may contain spaces.
func setPrevious(l *Line, value string) {
	hash, filename, _ := strings.Cut(value, " ")
	l.PreviousHash = hash
	l.PreviousFilename = filename
}

// Parser is a two-state reducer over porcelain lines. The zero value is a
// parser in StateScanning. Step never mutates its receiver, so every
// transition can be observed and tested in isolation.
type Parser struct {
	state   State
	current Line
}

// State reports the current parser state.
func (p Parser) State() State {
	return p.state
}

// Pending returns the record being accumulated, if any.
func (p Parser) Pending() (Line, bool) {
	return p.current, p.state == StateAccumulating
}

// Step consumes one physical line and returns the next parser. When the line
// completes a record, the finished Line is returned with emitted set.
func (p Parser) Step(raw string) (next Parser, line Line, emitted bool) {
	if header, ok := parseHeader(raw); ok {
		// An unfinished record is discarded: it never reached its content.
		return Parser{state: StateAccumulating, current: header}, Line{}, false
	}

	if p.state != StateAccumulating {
		return p, Line{}, false
	}

	if raw != "" && raw[0] == contentDelimiter {
		done := p.current
		done.Content = raw[1:]

		return Parser{state: StateScanning}, done, true
	}

	if raw == boundaryMarker {
		p.current.Boundary = true

		return p, Line{}, false
	}

	for _, field := range metadataFields {
		value, found := strings.CutPrefix(raw, field.prefix)
		if found {
			field.set(&p.current, value)

			return p, Line{}, false
		}
	}

	return p, Line{}, false
}

func parseHeader(raw string) (Line, bool) {
	match := headerPattern.FindStringSubmatch(raw)
	if match == nil {
		return Line{}, false
	}

	final, err := strconv.Atoi(match[headerFinalGroup])
	if err != nil {
		return Line{}, false
	}

	return Line{Hash: match[headerHashGroup], LineNumber: final}, true
}

// Parse converts one block of line-porcelain text into attribution lines in
// input order. Lines are split on '\n' only, so a '\r' that belongs to the
// file content is preserved. A trailing record without content is dropped.
func Parse(raw string) []Line {
	var (
		parser Parser
		lines  []Line
	)

	for physical := range strings.SplitSeq(raw, "\n") {
		next, line, emitted := parser.Step(physical)
		if emitted {
			lines = append(lines, line)
		}

		parser = next
	}

	if lines == nil {
		return []Line{}
	}

	return lines
}
