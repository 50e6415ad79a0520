package watcher

import "context"

// FileWatcher monitors target files for changes with debouncing.
type FileWatcher interface {
	// Start begins watching the roots, calling callback with debounced file changes.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error
}

// Matcher decides which paths under a root are watched.
type Matcher interface {
	// Matches reports whether path is a target file under root.
	Matches(root, path string) bool

	// SkipDir reports whether dir under root should not be watched.
	SkipDir(root, dir string) bool
}
