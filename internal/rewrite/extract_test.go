package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Extract:
// - Each of the three surface forms is recognized and normalized
// - Output is pattern-major regardless of textual order
// - Braced imports spanning lines collapse to one line
// - Relative module paths are accepted
// - Unrecognized import-like text is skipped silently
// - Indented imports are not recognized
// - Non-ASCII identifiers are taken whole, partial identifiers never match
// - Braced imports need a space before the brace and a name inside
// - Every extracted statement resolves without error

func TestExtract_PatternMajorOrder(t *testing.T) {
	t.Parallel()

	src := "from numpy import ndarray\n" +
		"import pandas as pd\n" +
		"from polars import {\n" +
		"    DataFrame,\n" +
		"    Series as S,\n" +
		"}\n" +
		"import torch.nn\n" +
		"from x.y import z as  w\n"

	got := Extract(src)

	assert.Equal(t, []ImportStatement{
		"import pandas as pd",
		"import torch.nn",
		"from numpy import ndarray",
		"from x.y import z as w",
		"from polars import { DataFrame, Series as S, }",
	}, got)
}

func TestExtract_RelativeImports(t *testing.T) {
	t.Parallel()

	src := "from . import utils\nfrom ..core.engine import Engine as E\n"
	assert.Equal(t, []ImportStatement{
		"from . import utils",
		"from ..core.engine import Engine as E",
	}, Extract(src))
}

func TestExtract_SkipsUnrecognizedSyntax(t *testing.T) {
	t.Parallel()

	src := "from os import *\n" +
		"from typing import (\n    Any,\n)\n" +
		"importlib = None\n" +
		"    import nested\n" +
		"# import commented\n"

	assert.Empty(t, Extract(src))
}

func TestExtract_CollapsesWhitespace(t *testing.T) {
	t.Parallel()

	src := "import\tfoo.bar   as\t baz\n"
	assert.Equal(t, []ImportStatement{"import foo.bar as baz"}, Extract(src))
}

func TestExtract_StopsAtFirstClosingBrace(t *testing.T) {
	t.Parallel()

	src := "from a import { b,\n c }\nx = {1: 2}\n"
	assert.Equal(t, []ImportStatement{"from a import { b, c }"}, Extract(src))
}

func TestPatternNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"import", "from-import", "from-import-braced"}, PatternNames())
}

func TestExtract_NonASCIIIdentifiers(t *testing.T) {
	t.Parallel()

	src := "import café\n" +
		"from naïve.módulo import größe as ß\n" +
		"import données.tableau\n"

	assert.Equal(t, []ImportStatement{
		"import café",
		"import données.tableau",
		"from naïve.módulo import größe as ß",
	}, Extract(src))
}

func TestExtract_RejectsTruncatedStatements(t *testing.T) {
	t.Parallel()

	src := "import a.\n" +
		"import a-b\n" +
		"from m import a, b\n" +
		"from m import x.y\n" +
		"from polars import{DataFrame}\n" +
		"from m import {}\n" +
		"from m import { , }\n"

	assert.Empty(t, Extract(src))
}

func TestExtract_StatementTerminators(t *testing.T) {
	t.Parallel()

	src := "import os  # stdlib\n" +
		"import sys; import json\n" +
		"import re\r\n" +
		"import abc"

	assert.Equal(t, []ImportStatement{
		"import os",
		"import sys",
		"import re",
		"import abc",
	}, Extract(src))
}

func TestExtract_OutputAlwaysResolves(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"import a.b.c\nimport x as y\nimport a.\nimport café\n",
		"from . import x\nfrom .. import y as z\nfrom ...pkg.sub import w\n",
		"from import import x\nimport as\nfrom m import as\n",
		"from m import {}\nfrom m import{a}\nfrom m import { , }\nfrom m import { a,\n b as c, }\n",
		"from m import { a b c }\nfrom m import {\n\n}\nimport a.b as\n",
	}

	for _, input := range inputs {
		for _, stmt := range Extract(input) {
			names, err := Resolve(stmt)
			require.NoError(t, err, "statement %q", stmt)
			assert.NotEmpty(t, names)
		}
	}
}
