package watcher

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// fileWatcher implements FileWatcher interface.
type fileWatcher struct {
	watcher       *fsnotify.Watcher
	roots         []string             // Root directories watched recursively
	matcher       Matcher              // Decides which files and directories count
	debounceTime  time.Duration        // Quiet period before firing callback
	callback      func(files []string) // Callback to invoke with changed files
	ctx           context.Context      // Context for lifecycle management
	cancel        context.CancelFunc   // Cancel function for internal context
	accumulated   map[string]bool      // Accumulated file changes
	accumulatedMu sync.Mutex           // Protects accumulated map
	debounceTimer *time.Timer          // Current debounce timer
	timerMu       sync.Mutex           // Protects debounce timer
	stopOnce      sync.Once            // Ensures Stop() is idempotent
	doneCh        chan struct{}        // Signals watch goroutine has finished
}

// NewFileWatcher creates a new file watcher for the given roots.
// matcher: selects target files and prunes ignored directories
// debounce: quiet period after the last change before the callback fires
func NewFileWatcher(roots []string, matcher Matcher, debounce time.Duration) (FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &fileWatcher{
		watcher:      watcher,
		roots:        roots,
		matcher:      matcher,
		debounceTime: debounce,
		accumulated:  make(map[string]bool),
		doneCh:       make(chan struct{}),
	}

	for _, root := range roots {
		if err := fw.addDirectoriesRecursively(root); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	return fw, nil
}

// Start begins watching for file changes.
func (fw *fileWatcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return nil
	}

	fw.callback = callback
	fw.ctx, fw.cancel = context.WithCancel(ctx)

	go fw.watch()
	return nil
}

// Stop stops the file watcher.
func (fw *fileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		if fw.cancel != nil {
			fw.cancel()

			// Wait for goroutine to finish (only if Start() was called)
			<-fw.doneCh
		} else {
			// Never started, close doneCh manually
			close(fw.doneCh)
		}

		err = fw.watcher.Close()
	})
	return err
}

// watch is the main event loop.
func (fw *fileWatcher) watch() {
	defer close(fw.doneCh)

	fireCh := make(chan struct{}, 1)

	for {
		select {
		case <-fw.ctx.Done():
			fw.stopDebounceTimer()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			// Handle new directories - add them to watcher
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.addDirectoriesRecursively(event.Name); err != nil {
						log.Printf("Warning: failed to watch new directory %s: %v", event.Name, err)
					}
				}
			}

			if !fw.shouldProcessEvent(event) {
				continue
			}

			fw.accumulatedMu.Lock()
			fw.accumulated[event.Name] = true
			fw.accumulatedMu.Unlock()

			fw.resetDebounceTimer(fireCh)

		case <-fireCh:
			fw.handleDebounceExpired()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
		}
	}
}

// handleDebounceExpired fires the callback with the accumulated files.
func (fw *fileWatcher) handleDebounceExpired() {
	fw.accumulatedMu.Lock()
	if len(fw.accumulated) == 0 {
		fw.accumulatedMu.Unlock()
		return
	}

	files := make([]string, 0, len(fw.accumulated))
	for file := range fw.accumulated {
		files = append(files, file)
	}
	fw.accumulated = make(map[string]bool)
	fw.accumulatedMu.Unlock()

	sort.Strings(files)
	fw.callback(files)
}

// resetDebounceTimer resets the debounce timer, properly stopping the old one.
func (fw *fileWatcher) resetDebounceTimer(fireCh chan struct{}) {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	// Stop and drain existing timer
	if fw.debounceTimer != nil {
		if !fw.debounceTimer.Stop() {
			select {
			case <-fw.debounceTimer.C:
			default:
			}
		}
	}

	fw.debounceTimer = time.AfterFunc(fw.debounceTime, func() {
		// Non-blocking send
		select {
		case fireCh <- struct{}{}:
		default:
		}
	})
}

// stopDebounceTimer stops the debounce timer if it exists.
func (fw *fileWatcher) stopDebounceTimer() {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
		fw.debounceTimer = nil
	}
}

// shouldProcessEvent checks if an event names a target file that still
// exists to be cleaned.
func (fw *fileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	// Only WRITE and CREATE; a removed file has nothing to clean
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}

	for _, root := range fw.roots {
		if fw.matcher.Matches(root, event.Name) {
			return true
		}
	}
	return false
}

// rootFor returns the watched root containing path.
func (fw *fileWatcher) rootFor(path string) string {
	best := ""
	for _, root := range fw.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		if len(root) > len(best) {
			best = root
		}
	}
	return best
}

// addDirectoriesRecursively adds all non-ignored directories in the tree to
// the watcher.
func (fw *fileWatcher) addDirectoriesRecursively(rootPath string) error {
	root := fw.rootFor(rootPath)

	return filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// If it's the root path, fail immediately
			if path == rootPath {
				return err
			}
			// For subdirectories, log but continue
			log.Printf("Warning: error accessing %s: %v", path, err)
			return nil
		}

		if !info.IsDir() {
			return nil
		}

		if root != "" && fw.matcher.SkipDir(root, path) {
			return filepath.SkipDir
		}

		if err := fw.watcher.Add(path); err != nil {
			log.Printf("Warning: failed to watch directory %s: %v", path, err)
			return nil // Continue anyway
		}

		return nil
	})
}
