package cli

// Test Plan for Clean Command:
// - cleanRoots rewrites every target file and reports it
// - cleanRoots in check mode writes nothing and returns ErrWouldChange
// - cleanRoots on already clean files returns nil in check mode
// - cleanRoots with a missing root returns an IO error
// - cleanRoots with an unreadable file fails that file but cleans the others
// - cleanRoots writes a JSON report when asked
// - --quiet suppresses per-file output but not errors
// - --diff prints added and removed lines
// - outcome prefers failures over pending changes
// - version command prints the version

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/initclean/internal/cleaner"
	"github.com/mvp-joe/initclean/internal/config"
)

const dirtyInit = `import numpy as np
from os import path

__all__ = ["stale"]

if __name__ == '__main__':
    print(np)
`

const cleanInit = `import numpy as np
from os import path


__all__ = [
    "np",
    "path",
]
`

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func writePackage(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel, "__init__.py")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// writeDanglingPackage creates an __init__.py symlink whose target is missing,
// so discovery finds it but reading it fails.
func writeDanglingPackage(t *testing.T, root, rel string) string {
	t.Helper()
	path := filepath.Join(root, rel, "__init__.py")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.Symlink(filepath.Join(root, rel, "missing.py"), path))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestCleanRoots_RewritesFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	a := writePackage(t, root, "a", dirtyInit)
	b := writePackage(t, root, "a/b", "import os\n")

	var out, errOut bytes.Buffer
	err := cleanRoots(context.Background(), config.Default(), cleanOptions{Roots: []string{root}}, &out, &errOut)
	require.NoError(t, err)

	assert.Equal(t, cleanInit, readFile(t, a))
	assert.Equal(t, "import os\n__all__ = [\n    \"os\",\n]\n", readFile(t, b))
	assert.Contains(t, out.String(), "✓ "+a+" (2 exports)")
	assert.Contains(t, out.String(), "2 files checked, 2 cleaned, 0 failed")
	assert.NotContains(t, errOut.String(), "✗")
}

func TestCleanRoots_CheckMode(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := writePackage(t, root, "pkg", dirtyInit)

	var out, errOut bytes.Buffer
	opts := cleanOptions{Roots: []string{root}, Check: true}
	err := cleanRoots(context.Background(), config.Default(), opts, &out, &errOut)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWouldChange))
	assert.Equal(t, "1 files would be cleaned", err.Error())
	assert.Equal(t, dirtyInit, readFile(t, path), "check mode must not write")
	assert.Contains(t, out.String(), "~ "+path+" would be cleaned")
}

func TestCleanRoots_CheckModeClean(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writePackage(t, root, "pkg", cleanInit)

	var out, errOut bytes.Buffer
	opts := cleanOptions{Roots: []string{root}, Check: true}
	require.NoError(t, cleanRoots(context.Background(), config.Default(), opts, &out, &errOut))
}

func TestCleanRoots_MissingRoot(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "missing")

	var out, errOut bytes.Buffer
	err := cleanRoots(context.Background(), config.Default(), cleanOptions{Roots: []string{missing}}, &out, &errOut)

	require.Error(t, err)
	assert.ErrorIs(t, err, cleaner.ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCleanRoots_UnreadableFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	bad := writeDanglingPackage(t, root, "bad")
	good := writePackage(t, root, "good", dirtyInit)

	var out, errOut bytes.Buffer
	err := cleanRoots(context.Background(), config.Default(), cleanOptions{Roots: []string{root}, Workers: 1}, &out, &errOut)

	require.Error(t, err)
	assert.True(t, isFileFailure(err))
	assert.Equal(t, "1 of 2 files failed", err.Error())

	_, statErr := os.Lstat(bad)
	require.NoError(t, statErr, "failed file must be untouched")
	assert.Equal(t, cleanInit, readFile(t, good))
	assert.Contains(t, errOut.String(), "✗ "+bad)
}

func TestCleanRoots_Report(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writePackage(t, root, "pkg", dirtyInit)
	reportPath := filepath.Join(t.TempDir(), "report.json")

	var out, errOut bytes.Buffer
	opts := cleanOptions{Roots: []string{root}, Report: reportPath, Quiet: true}
	require.NoError(t, cleanRoots(context.Background(), config.Default(), opts, &out, &errOut))

	var report cleaner.Report
	require.NoError(t, json.Unmarshal([]byte(readFile(t, reportPath)), &report))
	assert.Equal(t, cleaner.Totals{Files: 1, Changed: 1, Written: 1}, report.Totals)
	assert.Equal(t, []string{"np", "path"}, report.Files[0].Exports)
	assert.Equal(t, 3, report.Files[0].RemovedLines)
}

func TestCleanRoots_Quiet(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writePackage(t, root, "ok", dirtyInit)
	bad := writeDanglingPackage(t, root, "bad")

	var out, errOut bytes.Buffer
	opts := cleanOptions{Roots: []string{root}, Quiet: true}
	err := cleanRoots(context.Background(), config.Default(), opts, &out, &errOut)

	require.Error(t, err)
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), bad)
	assert.Contains(t, errOut.String(), cleaner.ErrIO.Error())
}

func TestCleanRoots_Diff(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writePackage(t, root, "pkg", dirtyInit)

	var out, errOut bytes.Buffer
	opts := cleanOptions{Roots: []string{root}, Check: true, Diff: true, Quiet: true}
	err := cleanRoots(context.Background(), config.Default(), opts, &out, &errOut)
	require.ErrorIs(t, err, ErrWouldChange)

	diff := out.String()
	assert.Contains(t, diff, "-if __name__ == '__main__':\n")
	assert.Contains(t, diff, "-__all__ = [\"stale\"]\n")
	assert.Contains(t, diff, "+    \"np\",\n")
}

func TestOutcome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		results []cleaner.FileResult
		check   bool
		wantErr error
		failure bool
	}{
		{name: "all clean", results: []cleaner.FileResult{{Path: "a"}}},
		{name: "changed without check", results: []cleaner.FileResult{{Path: "a", Changed: true}}},
		{name: "changed with check", results: []cleaner.FileResult{{Path: "a", Changed: true}}, check: true, wantErr: ErrWouldChange},
		{
			name:    "failure wins",
			results: []cleaner.FileResult{{Path: "a", Changed: true}, {Path: "b", Err: errors.New("boom")}},
			check:   true,
			failure: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := outcome(tt.results, tt.check)
			switch {
			case tt.failure:
				assert.True(t, isFileFailure(err))
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestFirstLine(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "import os", firstLine("import os"))
	assert.Equal(t, "from m import ( ...", firstLine("from m import (\n    a,\n)"))
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)

	assert.Contains(t, out.String(), "initclean "+Version)
}
