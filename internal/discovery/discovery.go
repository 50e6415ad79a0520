// Package discovery enumerates the package entry-point files under a set of
// root directories.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// FileDiscovery finds files by exact basename, honoring ignore rules.
type FileDiscovery struct {
	basename       string
	ignorePatterns []compiledPattern
}

// NewFileDiscovery creates a new file discovery instance.
// Ignore patterns are matched against slash-separated paths relative to
// each root.
func NewFileDiscovery(basename string, ignorePatterns []string) (*FileDiscovery, error) {
	fd := &FileDiscovery{
		basename: basename,
	}

	for _, pattern := range ignorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("failed to compile ignore pattern %q: %w", pattern, err)
		}
		fd.ignorePatterns = append(fd.ignorePatterns, compiledPattern{pattern: pattern, glob: g})
	}

	return fd, nil
}

// Basename returns the file name being matched.
func (fd *FileDiscovery) Basename() string {
	return fd.basename
}

// Matches reports whether path names a target file that is not ignored
// under root.
func (fd *FileDiscovery) Matches(root, path string) bool {
	if filepath.Base(path) != fd.basename {
		return false
	}
	relPath, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(relPath, "..") {
		return false
	}
	return !fd.shouldIgnore(filepath.ToSlash(relPath))
}

// SkipDir reports whether dir, located under root, is excluded by the ignore
// patterns.
func (fd *FileDiscovery) SkipDir(root, dir string) bool {
	relPath, err := filepath.Rel(root, dir)
	if err != nil || relPath == "." || strings.HasPrefix(relPath, "..") {
		return false
	}
	return fd.shouldIgnore(filepath.ToSlash(relPath))
}

// DiscoverFiles walks every root and returns the matching files, sorted and
// without duplicates. A root that cannot be read fails the whole discovery.
func (fd *FileDiscovery) DiscoverFiles(roots []string) ([]string, error) {
	seen := make(map[string]bool)
	files := []string{}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to read root %s: %w", root, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("root %s is not a directory", root)
		}

		err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			relPath, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}

			// Normalize path separators for glob matching
			relPath = filepath.ToSlash(relPath)

			if info.IsDir() {
				if fd.SkipDir(root, path) {
					return filepath.SkipDir
				}
				return nil
			}

			if info.Name() != fd.basename || fd.shouldIgnore(relPath) {
				return nil
			}

			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			if !seen[abs] {
				seen[abs] = true
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

// shouldIgnore checks if a path matches any ignore pattern.
func (fd *FileDiscovery) shouldIgnore(relPath string) bool {
	if fd.matchesAnyPattern(relPath) {
		return true
	}

	// Also check if this is a directory that would match with /** suffix
	// For example, "node_modules" should match pattern "node_modules/**"
	return fd.matchesAnyPattern(relPath + "/**")
}

// matchesAnyPattern checks if a path matches any ignore pattern.
func (fd *FileDiscovery) matchesAnyPattern(path string) bool {
	for _, cp := range fd.ignorePatterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// A path directly under the root has no leading directory for "**/" to
	// consume, so such patterns are retried without it.
	for _, cp := range fd.ignorePatterns {
		if strings.HasPrefix(cp.pattern, "**/") {
			simplified := strings.TrimPrefix(cp.pattern, "**/")
			if simplifiedGlob, err := glob.Compile(simplified, '/'); err == nil {
				if simplifiedGlob.Match(path) {
					return true
				}
			}
		}
	}

	return false
}
