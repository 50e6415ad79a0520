// Package pyast inspects Python sources with tree-sitter. It is used only for
// diagnostics; rewriting never depends on it.
package pyast

import (
	"context"
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

var importKinds = map[string]bool{
	"import_statement":        true,
	"import_from_statement":   true,
	"future_import_statement": true,
}

// tryParts are the nodes of a module-level try statement whose imports
// still run at import time.
var tryParts = map[string]bool{
	"try_statement":       true,
	"block":               true,
	"except_clause":       true,
	"except_group_clause": true,
	"else_clause":         true,
	"finally_clause":      true,
}

// ImportNode is one module-level import statement as parsed by tree-sitter.
type ImportNode struct {
	Line   int    // 1-based line the statement starts on
	Column int    // 0-based byte column the statement starts at
	Text   string // source text of the statement
}

// Inspector parses Python source into a syntax tree.
type Inspector struct {
	language *sitter.Language
}

// NewInspector creates a Python inspector.
func NewInspector() *Inspector {
	return &Inspector{
		language: sitter.NewLanguage(python.Language()),
	}
}

// ModuleImports returns the import statements executed when the module is
// imported: direct children of the module and those inside module-level
// try statements. Statements containing parse errors are skipped.
func (i *Inspector) ModuleImports(ctx context.Context, source []byte) ([]ImportNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(i.language); err != nil {
		return nil, fmt.Errorf("failed to set python language: %w", err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse python source")
	}
	defer tree.Close()

	var imports []ImportNode
	collectImports(tree.RootNode(), source, &imports)
	return imports, nil
}

func collectImports(node *sitter.Node, source []byte, imports *[]ImportNode) {
	for idx := 0; idx < int(node.ChildCount()); idx++ {
		child := node.Child(uint(idx))
		if child == nil || child.HasError() {
			continue
		}
		if tryParts[child.Kind()] {
			collectImports(child, source, imports)
			continue
		}
		if !importKinds[child.Kind()] {
			continue
		}
		start := child.StartPosition()
		*imports = append(*imports, ImportNode{
			Line:   int(start.Row) + 1,
			Column: int(start.Column),
			Text:   string(source[child.StartByte():child.EndByte()]),
		})
	}
}
