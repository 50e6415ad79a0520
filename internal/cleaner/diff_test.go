package cleaner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderDiff_MarksChangedLines(t *testing.T) {
	t.Parallel()

	before := "a\nb\nc\n"
	after := "a\nc\nd\n"

	got := RenderDiff("pkg/__init__.py", before, after)

	assert.True(t, strings.HasPrefix(got, "--- pkg/__init__.py\n+++ pkg/__init__.py (cleaned)\n"))
	assert.Contains(t, got, "-b\n")
	assert.Contains(t, got, "+d\n")
	assert.Contains(t, got, " a\n")
}

func TestRenderDiff_ElidesLongUnchangedRuns(t *testing.T) {
	t.Parallel()

	var lines []string
	for i := 0; i < 20; i++ {
		lines = append(lines, "line"+strings.Repeat("x", i))
	}
	before := strings.Join(lines, "\n") + "\n"
	after := before + "tail\n"

	got := RenderDiff("f.py", before, after)

	assert.Contains(t, got, "@@\n")
	assert.Contains(t, got, "+tail\n")
	// Only the last two unchanged lines precede the insertion.
	assert.NotContains(t, got, " line\n")
	assert.Contains(t, got, " "+lines[19]+"\n")
	assert.Contains(t, got, " "+lines[18]+"\n")
	assert.NotContains(t, got, " "+lines[17]+"\n")
}

func TestRenderDiff_MissingFinalNewline(t *testing.T) {
	t.Parallel()

	got := RenderDiff("f.py", "import os", "import os\n__all__ = []\n")
	assert.True(t, strings.HasSuffix(got, "\n"))
	assert.Contains(t, got, "+__all__ = []\n")
}
