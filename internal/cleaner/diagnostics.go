package cleaner

import (
	"strings"

	"github.com/mvp-joe/initclean/internal/pyast"
	"github.com/mvp-joe/initclean/internal/rewrite"
)

// Unrecognized returns the parsed import statements that the rewrite
// extractor either misses entirely or only partly covers, such as
// `from m import (a, b)`, `import a, b` or any indented import such as one
// inside a try block. Names bound by them are absent from the regenerated
// __all__.
func Unrecognized(nodes []pyast.ImportNode) []pyast.ImportNode {
	var missed []pyast.ImportNode
	for _, node := range nodes {
		if node.Column > 0 {
			missed = append(missed, node)
			continue
		}
		normalized := strings.Join(strings.Fields(node.Text), " ")
		statements := rewrite.Extract(normalized)
		if len(statements) == 1 && string(statements[0]) == normalized {
			continue
		}
		missed = append(missed, node)
	}
	return missed
}
