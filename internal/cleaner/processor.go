// Package cleaner applies the rewrite core to files on disk: it reads each
// target, computes the cleaned content in memory and replaces the file
// atomically.
package cleaner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/initclean/internal/pyast"
	"github.com/mvp-joe/initclean/internal/rewrite"
)

var (
	// ErrIO marks a file that could not be read or written.
	ErrIO = errors.New("io failure")

	// ErrNotAttempted marks a file skipped because an earlier file failed
	// in fail-fast mode.
	ErrNotAttempted = errors.New("not attempted after earlier failure")
)

const (
	cleanCacheSize = 10_000
	cleanCacheTTL  = 24 * time.Hour
)

// Options controls a Processor.
type Options struct {
	Check    bool // compute results without writing
	Diff     bool // render a diff for changed files
	Diagnose bool // report module-level imports the extractor does not recognize
	FailFast bool // stop dispatching after the first failure
	Workers  int  // parallel files; 0 means one per CPU
}

// FileResult is the outcome of cleaning one file.
type FileResult struct {
	Path         string
	Changed      bool
	Written      bool
	Cached       bool // content was already known to be clean
	Exports      []string
	RemovedLines int
	Diff         string
	Unrecognized []pyast.ImportNode
	Duration     time.Duration
	Err          error
}

// ProgressReporter receives per-file progress from Run.
type ProgressReporter interface {
	OnStart(totalFiles int)
	OnFileProcessed(result FileResult)
	OnComplete(results []FileResult)
}

type noOpProgressReporter struct{}

func (noOpProgressReporter) OnStart(int)                {}
func (noOpProgressReporter) OnFileProcessed(FileResult) {}
func (noOpProgressReporter) OnComplete([]FileResult)    {}

// Processor cleans files. It is safe for concurrent use on distinct paths;
// concurrent calls for the same path are not coordinated.
type Processor struct {
	opts      Options
	inspector *pyast.Inspector
	progress  ProgressReporter

	// clean maps a path to the hash of content known to need no rewrite.
	clean otter.Cache[string, string]
}

// NewProcessor creates a processor. Close releases its cache.
func NewProcessor(opts Options, progress ProgressReporter) (*Processor, error) {
	if progress == nil {
		progress = noOpProgressReporter{}
	}

	cache, err := otter.MustBuilder[string, string](cleanCacheSize).
		WithTTL(cleanCacheTTL).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create clean cache: %w", err)
	}

	p := &Processor{
		opts:     opts,
		progress: progress,
		clean:    cache,
	}
	if opts.Diagnose {
		p.inspector = pyast.NewInspector()
	}
	return p, nil
}

// Close releases resources held by the processor.
func (p *Processor) Close() {
	p.clean.Close()
}

// Run cleans every path and returns one result per path, in input order.
// Distinct files are processed in parallel. Every path is reported to the
// progress reporter, including those skipped after a fail-fast stop.
func (p *Processor) Run(ctx context.Context, paths []string) []FileResult {
	results := make([]FileResult, len(paths))
	p.progress.OnStart(len(paths))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := p.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	var progressMu sync.Mutex

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if runCtx.Err() != nil {
					results[i] = p.notAttempted(ctx, paths[i])
				} else {
					results[i] = p.CleanFile(runCtx, paths[i])
					switch {
					case results[i].Err == nil:
					case errors.Is(results[i].Err, context.Canceled) && ctx.Err() == nil:
						// Another worker failed while this file was in flight
						results[i] = p.notAttempted(ctx, paths[i])
					case p.opts.FailFast:
						cancel()
					}
				}

				progressMu.Lock()
				p.progress.OnFileProcessed(results[i])
				progressMu.Unlock()
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	p.progress.OnComplete(results)
	return results
}

func (p *Processor) notAttempted(parent context.Context, path string) FileResult {
	if err := parent.Err(); err != nil {
		return FileResult{Path: path, Err: err}
	}
	return FileResult{Path: path, Err: ErrNotAttempted}
}

// CleanFile cleans a single file. The replacement content is fully computed
// before anything is written, so a failure leaves the file untouched.
func (p *Processor) CleanFile(ctx context.Context, path string) (result FileResult) {
	start := time.Now()
	result.Path = path
	defer func() { result.Duration = time.Since(start) }()

	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Err = fmt.Errorf("%w: failed to read %s: %w", ErrIO, path, err)
		return result
	}
	original := string(data)
	sum := contentHash(data)

	if cached, ok := p.clean.Get(path); ok && cached == sum {
		result.Cached = true
		return result
	}

	cleaned, err := rewrite.Clean(original)
	if err != nil {
		result.Err = fmt.Errorf("failed to clean %s: %w", path, err)
		return result
	}
	result.Exports = cleaned.Exports
	result.RemovedLines = cleaned.RemovedLines
	result.Changed = cleaned.Changed(original)

	if p.inspector != nil {
		nodes, err := p.inspector.ModuleImports(ctx, data)
		if err != nil {
			result.Err = fmt.Errorf("failed to inspect %s: %w", path, err)
			return result
		}
		result.Unrecognized = Unrecognized(nodes)
	}

	if result.Changed && p.opts.Diff {
		result.Diff = RenderDiff(path, original, cleaned.Content)
	}

	if !result.Changed {
		p.clean.Set(path, sum)
		return result
	}
	if p.opts.Check {
		return result
	}

	if err := writeAtomic(path, []byte(cleaned.Content)); err != nil {
		result.Err = fmt.Errorf("%w: failed to write %s: %w", ErrIO, path, err)
		return result
	}
	result.Written = true
	p.clean.Set(path, contentHash([]byte(cleaned.Content)))

	return result
}

// writeAtomic replaces path with data via a temp file in the same
// directory, preserving the original permissions.
func writeAtomic(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".initclean-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	// Rename to final location (atomic operation)
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Failed returns the results that carry an error.
func Failed(results []FileResult) []FileResult {
	var failed []FileResult
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
