package rewrite

import (
	"regexp"
	"strings"
)

// ImportStatement is one import construct collapsed onto a single line.
type ImportStatement string

// importPattern describes one recognized surface form of an import. The
// statement itself is the first submatch; the rest of the pattern only
// checks that the statement is not cut off mid-token.
type importPattern struct {
	name    string
	pattern *regexp.Regexp
}

const (
	// identifier covers Python identifiers, including non-ASCII letters.
	identifier = `[\p{L}\p{Mn}\p{Mc}\p{Nd}\p{Pc}]+`
	dotted     = identifier + `(?:\.` + identifier + `)*`
	relative   = `(?:\.+(?:` + dotted + `)?|` + dotted + `)`
	alias      = `(?:[\t ]+as[\t ]+` + identifier + `)?`

	// statementEnd must follow a single-line statement.
	statementEnd = `(?:[\t \r;#]|$)`
)

// importPatterns are applied in order; extraction output is pattern-major.
// Only statements starting in column zero are recognized, so imports nested
// in try/if blocks or functions never contribute exports.
var importPatterns = []importPattern{
	{
		// import pkg.mod [as alias]
		name:    "import",
		pattern: regexp.MustCompile(`(?m)^(import[\t ]+` + dotted + alias + `)` + statementEnd),
	},
	{
		// from pkg.mod import name [as alias]
		name:    "from-import",
		pattern: regexp.MustCompile(`(?m)^(from[\t ]+` + relative + `[\t ]+import[\t ]+` + identifier + alias + `)` + statementEnd),
	},
	{
		// from pkg.mod import { a, b as c } across any number of lines
		name:    "from-import-braced",
		pattern: regexp.MustCompile(`(?m)^(from[\t ]+` + relative + `[\t ]+import[\t ]+\{[^}]*[\p{L}\p{Nd}_][^}]*\})`),
	},
}

// PatternNames returns the names of the recognized import forms in the
// order they are applied.
func PatternNames() []string {
	names := make([]string, len(importPatterns))
	for i, p := range importPatterns {
		names[i] = p.name
	}
	return names
}

// Extract scans text for import statements. All matches of the first
// pattern come first in text order, then all matches of the second, and so
// on. Text matching no pattern is ignored.
func Extract(text string) []ImportStatement {
	var statements []ImportStatement
	for _, p := range importPatterns {
		for _, match := range p.pattern.FindAllStringSubmatch(text, -1) {
			statements = append(statements, normalize(match[1]))
		}
	}
	return statements
}

// normalize collapses every whitespace run, newlines included, to a single
// space and trims the ends.
func normalize(s string) ImportStatement {
	return ImportStatement(strings.Join(strings.Fields(s), " "))
}
