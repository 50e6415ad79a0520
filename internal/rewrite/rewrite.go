// Package rewrite turns the text of a Python package __init__.py into its
// cleaned form: script-entry blocks are dropped and the __all__ list is
// regenerated from the file's own imports.
//
// The package is pure. It performs no I/O and keeps no state between calls,
// so distinct files may be cleaned concurrently.
package rewrite

import (
	"fmt"
	"strings"
)

// Result is the outcome of cleaning one file.
type Result struct {
	// Content is the full replacement text.
	Content string

	// Statements are the imports found in the original text, pattern-major.
	Statements []ImportStatement

	// Exports are the names written to __all__, sorted.
	Exports []BoundName

	// RemovedLines counts lines dropped by block removal.
	RemovedLines int
}

// Changed reports whether the cleaned content differs from original.
func (r *Result) Changed(original string) bool {
	return r.Content != original
}

// Clean computes the replacement content for src.
//
// Imports are scanned on the unfiltered text, but only statements starting
// in column zero are recognized. Imports indented inside a main block, a
// try/except or a function never contribute exports. Any existing __all__
// block is discarded.
func Clean(src string) (*Result, error) {
	seg := NewSegmenter()
	kept := seg.Segment(SplitLines(src))

	statements := Extract(src)
	bound, err := ResolveAll(statements)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve imports: %w", err)
	}
	exports := NewExportSet(bound...)

	var b strings.Builder
	for _, line := range kept {
		b.WriteString(line.Text)
	}
	if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
		b.WriteString("\n")
	}
	b.WriteString(exports.Render())

	return &Result{
		Content:      b.String(),
		Statements:   statements,
		Exports:      exports.Names(),
		RemovedLines: seg.Removed(),
	}, nil
}
