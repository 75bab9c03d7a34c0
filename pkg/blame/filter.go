package blame

// firstLine is the implicit lower bound of a window.
const firstLine = 1

// Window is the result of restricting attribution lines to an inclusive range.
type Window struct {
	// From and To are the effective bounds after defaults were applied.
	From int
	To   int
	// Total is the number of lines before filtering.
	Total int
	// Requested is the number of lines inside the window.
	Requested int
	Lines     []Line
}

// Filter keeps the lines whose LineNumber lies in [from, to], preserving
// input order. A nil from defaults to 1; a nil to defaults to the largest
// line number present, or 0 for empty input. A window outside the data
// yields an empty result rather than an error.
func Filter(lines []Line, from, to *int) Window {
	window := Window{
		From:  firstLine,
		To:    maxLineNumber(lines),
		Total: len(lines),
	}

	if from != nil {
		window.From = *from
	}

	if to != nil {
		window.To = *to
	}

	window.Lines = make([]Line, 0, len(lines))

	for _, line := range lines {
		if line.LineNumber >= window.From && line.LineNumber <= window.To {
			window.Lines = append(window.Lines, line)
		}
	}

	window.Requested = len(window.Lines)

	return window
}

func maxLineNumber(lines []Line) int {
	highest := 0

	for _, line := range lines {
		highest = max(highest, line.LineNumber)
	}

	return highest
}
