package rewrite

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedImport indicates a statement that does not have the shape the
// extractor guarantees. It is never expected for extractor output.
var ErrMalformedImport = errors.New("malformed import")

// MalformedImportError describes which statement failed to resolve and why.
type MalformedImportError struct {
	Statement ImportStatement
	Reason    string
}

func (e *MalformedImportError) Error() string {
	return fmt.Sprintf("%s: %s: %q", ErrMalformedImport, e.Reason, string(e.Statement))
}

func (e *MalformedImportError) Unwrap() error {
	return ErrMalformedImport
}

func malformed(stmt ImportStatement, reason string) error {
	return &MalformedImportError{Statement: stmt, Reason: reason}
}

// BoundName is a name an import introduces into the importing namespace.
type BoundName = string

// Resolve returns the names bound by a single normalized import statement.
//
// For `import a.b.c` the bound name is the leaf `c`. When more than one token
// follows the module, the last token is taken as the alias, so
// `import a.b as x` binds `x`.
func Resolve(stmt ImportStatement) ([]BoundName, error) {
	tokens := strings.Fields(string(stmt))
	if len(tokens) == 0 {
		return nil, malformed(stmt, "empty statement")
	}

	switch tokens[0] {
	case "import":
		return resolveImport(stmt, tokens)
	case "from":
		return resolveFrom(stmt, tokens)
	default:
		return nil, malformed(stmt, "unexpected keyword "+tokens[0])
	}
}

func resolveImport(stmt ImportStatement, tokens []string) ([]BoundName, error) {
	if len(tokens) < 2 {
		return nil, malformed(stmt, "missing module")
	}
	module, rest := tokens[1], tokens[2:]
	if len(rest) > 1 {
		return []BoundName{rest[len(rest)-1]}, nil
	}

	leaf := module[strings.LastIndex(module, ".")+1:]
	if leaf == "" {
		return nil, malformed(stmt, "module has no name")
	}
	return []BoundName{leaf}, nil
}

func resolveFrom(stmt ImportStatement, tokens []string) ([]BoundName, error) {
	if len(tokens) < 3 || tokens[2] != "import" {
		if len(tokens) < 2 || tokens[1] == "import" {
			return nil, malformed(stmt, "missing module")
		}
		return nil, malformed(stmt, "missing import keyword")
	}

	tail := strings.Join(tokens[3:], " ")
	if strings.HasPrefix(tail, "{") {
		return resolveBraced(stmt, tail)
	}

	names := strings.Fields(tail)
	if len(names) == 0 {
		return nil, malformed(stmt, "missing imported name")
	}
	return []BoundName{names[len(names)-1]}, nil
}

func resolveBraced(stmt ImportStatement, tail string) ([]BoundName, error) {
	end := strings.Index(tail, "}")
	if end < 0 {
		return nil, malformed(stmt, "unterminated brace list")
	}

	var bound []BoundName
	for _, entry := range strings.Split(tail[1:end], ",") {
		fields := strings.Fields(entry)
		if len(fields) == 0 {
			continue
		}
		bound = append(bound, fields[len(fields)-1])
	}
	if len(bound) == 0 {
		return nil, malformed(stmt, "empty brace list")
	}
	return bound, nil
}

// ResolveAll resolves every statement in order, stopping at the first
// malformed one.
func ResolveAll(statements []ImportStatement) ([]BoundName, error) {
	var bound []BoundName
	for _, stmt := range statements {
		names, err := Resolve(stmt)
		if err != nil {
			return nil, err
		}
		bound = append(bound, names...)
	}
	return bound, nil
}
