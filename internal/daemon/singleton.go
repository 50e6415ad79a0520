// Package daemon keeps long-running watch sessions exclusive per set of
// roots.
package daemon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"
)

// Singleton enforces that only one watcher serves a given set of roots.
// The lock is advisory and released automatically if the process dies.
type Singleton struct {
	lockPath string
	lock     *flock.Flock
}

// NewSingleton creates a singleton for roots with its lock file in lockDir.
// The same roots in any order, relative or absolute, share one lock.
func NewSingleton(lockDir string, roots []string) (*Singleton, error) {
	abs := make([]string, 0, len(roots))
	for _, root := range roots {
		p, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
		}
		abs = append(abs, filepath.Clean(p))
	}
	sort.Strings(abs)

	sum := sha256.Sum256([]byte(strings.Join(abs, "\n")))
	name := "watch-" + hex.EncodeToString(sum[:8]) + ".lock"

	return &Singleton{
		lockPath: filepath.Join(lockDir, name),
	}, nil
}

// DefaultLockDir returns the per-user directory holding lock files.
func DefaultLockDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "initclean")
}

// LockPath returns the lock file location.
func (s *Singleton) LockPath() string {
	return s.lockPath
}

// Acquire attempts to become the only watcher for the roots.
// Returns (true, nil) if this process holds the lock.
// Returns (false, nil) if another process holds it.
// Returns (false, err) on actual errors.
func (s *Singleton) Acquire() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(s.lockPath), 0755); err != nil {
		return false, fmt.Errorf("failed to create lock directory: %w", err)
	}

	s.lock = flock.New(s.lockPath)

	locked, err := s.lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	return locked, nil
}

// Release releases the file lock (called on shutdown).
func (s *Singleton) Release() error {
	if s.lock != nil {
		return s.lock.Unlock()
	}
	return nil
}
