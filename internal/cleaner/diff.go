package cleaner

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// diffContext is the number of unchanged lines shown around each change.
const diffContext = 2

// RenderDiff returns a line-oriented diff between before and after. Runs of
// unchanged lines longer than the context window are elided with "@@".
func RenderDiff(path, before, after string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	sb.WriteString("--- " + path + "\n")
	sb.WriteString("+++ " + path + " (cleaned)\n")

	for i, d := range diffs {
		chunk := splitDiffLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			writeLines(&sb, "-", chunk)
		case diffmatchpatch.DiffInsert:
			writeLines(&sb, "+", chunk)
		case diffmatchpatch.DiffEqual:
			first, last := i == 0, i == len(diffs)-1
			writeContext(&sb, chunk, first, last)
		}
	}

	return sb.String()
}

func writeContext(sb *strings.Builder, chunk []string, first, last bool) {
	head, tail := diffContext, diffContext
	if first {
		head = 0
	}
	if last {
		tail = 0
	}
	if len(chunk) <= head+tail {
		writeLines(sb, " ", chunk)
		return
	}

	writeLines(sb, " ", chunk[:head])
	sb.WriteString("@@\n")
	writeLines(sb, " ", chunk[len(chunk)-tail:])
}

func writeLines(sb *strings.Builder, prefix string, lines []string) {
	for _, line := range lines {
		sb.WriteString(prefix)
		sb.WriteString(line)
		if !strings.HasSuffix(line, "\n") {
			sb.WriteString("\n")
		}
	}
}

func splitDiffLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
