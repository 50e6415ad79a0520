package rewrite

import (
	"sort"
	"strconv"
	"strings"
)

const exportIndent = "    "

// ExportSet is the deduplicated set of names a file re-exports.
type ExportSet struct {
	names map[BoundName]struct{}
}

// NewExportSet returns a set seeded with names.
func NewExportSet(names ...BoundName) *ExportSet {
	set := &ExportSet{names: make(map[BoundName]struct{}, len(names))}
	set.Add(names...)
	return set
}

// Add inserts names, ignoring ones already present.
func (s *ExportSet) Add(names ...BoundName) {
	for _, name := range names {
		s.names[name] = struct{}{}
	}
}

// Len returns the number of distinct names.
func (s *ExportSet) Len() int {
	return len(s.names)
}

// Names returns the names sorted in ascending byte order.
func (s *ExportSet) Names() []BoundName {
	names := make([]BoundName, 0, len(s.names))
	for name := range s.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render serializes the set as an __all__ assignment ending in a newline.
func (s *ExportSet) Render() string {
	if s.Len() == 0 {
		return exportName + " = []\n"
	}

	var b strings.Builder
	b.WriteString(exportName + " = [\n")
	for _, name := range s.Names() {
		b.WriteString(exportIndent)
		b.WriteString(strconv.Quote(name))
		b.WriteString(",\n")
	}
	b.WriteString("]\n")
	return b.String()
}
