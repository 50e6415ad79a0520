package rewrite

import "strings"

// BlockState tracks which removable block, if any, the segmenter is inside.
type BlockState int

const (
	StateNormal BlockState = iota
	StateInsideMainBlock
	StateInsideExportBlock
)

func (s BlockState) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateInsideMainBlock:
		return "main-block"
	case StateInsideExportBlock:
		return "export-block"
	default:
		return "unknown"
	}
}

// SourceLine is one physical line of the input, terminator included.
type SourceLine struct {
	Index int
	Text  string
}

const exportName = "__all__"

var mainGuards = []string{
	`if __name__ == "__main__":`,
	`if __name__ == '__main__':`,
}

// SplitLines splits text into lines, keeping each line's terminator.
func SplitLines(text string) []SourceLine {
	if text == "" {
		return nil
	}
	parts := strings.SplitAfter(text, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}

	lines := make([]SourceLine, len(parts))
	for i, p := range parts {
		lines[i] = SourceLine{Index: i, Text: p}
	}
	return lines
}

// IsMainGuard reports whether the line opens a module-is-main block.
func IsMainGuard(line string) bool {
	content := strings.TrimSpace(line)
	for _, guard := range mainGuards {
		if content == guard {
			return true
		}
	}
	return false
}

// IsExportOpener reports whether the line starts an __all__ assignment.
func IsExportOpener(line string) bool {
	content := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(content, exportName) {
		return false
	}
	rest := strings.TrimLeft(content[len(exportName):], " \t")
	return strings.HasPrefix(rest, "=") && !strings.HasPrefix(rest, "==")
}

// IsIndentedOrBlank reports whether the line continues an open block:
// it starts with a tab, starts with at least four spaces, or is blank.
func IsIndentedOrBlank(line string) bool {
	if strings.HasPrefix(line, "\t") || strings.HasPrefix(line, "    ") {
		return true
	}
	return strings.TrimSpace(line) == ""
}

// IsExportCloser reports whether the line is the closing bracket of an
// export block, either a list or a tuple.
func IsExportCloser(line string) bool {
	content := strings.TrimSpace(line)
	return strings.HasPrefix(content, "]") || strings.HasPrefix(content, ")")
}

// closesOnOpener reports whether an export opener line also closes its list,
// as in `__all__ = []` or `__all__ = ("a", "b")`. Brackets inside string
// literals and comments are not counted.
func closesOnOpener(line string) bool {
	if eq := strings.Index(line, "="); eq >= 0 {
		line = line[eq+1:]
	}

	depth, opened := 0, false
	var quote rune
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '#':
			return opened && depth <= 0
		case r == '[' || r == '(':
			depth++
			opened = true
		case r == ']' || r == ')':
			depth--
		}
	}
	return opened && depth <= 0
}

// Segmenter drops main blocks and export blocks from a line sequence.
// A Segmenter holds state for a single file and must not be reused.
type Segmenter struct {
	state   BlockState
	removed int
}

// NewSegmenter returns a segmenter in the normal state.
func NewSegmenter() *Segmenter {
	return &Segmenter{state: StateNormal}
}

// State returns the current block state.
func (s *Segmenter) State() BlockState {
	return s.state
}

// Removed returns the number of lines dropped so far.
func (s *Segmenter) Removed() int {
	return s.removed
}

// Keep feeds one line through the state machine and reports whether it
// belongs in the output.
func (s *Segmenter) Keep(line string) bool {
	if s.state != StateNormal {
		if IsIndentedOrBlank(line) {
			s.removed++
			return false
		}
		closing := s.state == StateInsideExportBlock && IsExportCloser(line)
		s.state = StateNormal
		if closing {
			s.removed++
			return false
		}
	}

	switch {
	case IsMainGuard(line):
		s.state = StateInsideMainBlock
	case IsExportOpener(line):
		if !closesOnOpener(line) {
			s.state = StateInsideExportBlock
		}
	default:
		return true
	}
	s.removed++
	return false
}

// Segment returns the lines that survive block removal, in order.
func (s *Segmenter) Segment(lines []SourceLine) []SourceLine {
	kept := make([]SourceLine, 0, len(lines))
	for _, line := range lines {
		if s.Keep(line.Text) {
			kept = append(kept, line)
		}
	}
	return kept
}
