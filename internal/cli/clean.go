package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/initclean/internal/cleaner"
	"github.com/mvp-joe/initclean/internal/config"
	"github.com/mvp-joe/initclean/internal/daemon"
	"github.com/mvp-joe/initclean/internal/discovery"
	"github.com/mvp-joe/initclean/internal/watcher"
)

// ErrWouldChange is returned in check mode when at least one file is not
// already clean.
var ErrWouldChange = errors.New("files would be cleaned")

var (
	cleanDirsFlag     []string
	cleanCheckFlag    bool
	cleanDiffFlag     bool
	cleanFailFastFlag bool
	cleanWorkersFlag  int
	cleanQuietFlag    bool
	cleanWatchFlag    bool
	cleanReportFlag   string
)

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean [DIR...]",
	Short: "Regenerate __all__ in every package file under the given directories",
	Long: `Clean finds every __init__.py under the given directories and rewrites it:
the main-guard block and any existing __all__ block are removed, and a new
sorted __all__ listing every name bound by a top-level import is appended.

Each file is replaced atomically. A file that cannot be read, written or
parsed is reported and left untouched; the command then exits non-zero.

Examples:
  # Clean a source tree
  initclean clean src

  # Several roots
  initclean clean --dir pkg_a --dir pkg_b

  # Show what would change without writing, for CI
  initclean clean --check --diff .

  # Keep files clean while editing
  initclean clean --watch src
`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringArrayVarP(&cleanDirsFlag, "dir", "d", nil, "Directory to clean (repeatable)")
	cleanCmd.Flags().BoolVar(&cleanCheckFlag, "check", false, "Report files that would change without writing them")
	cleanCmd.Flags().BoolVar(&cleanDiffFlag, "diff", false, "Print a diff for every changed file")
	cleanCmd.Flags().BoolVar(&cleanFailFastFlag, "fail-fast", false, "Stop after the first file that fails")
	cleanCmd.Flags().IntVar(&cleanWorkersFlag, "workers", 0, "Files cleaned in parallel (0 = one per CPU)")
	cleanCmd.Flags().BoolVarP(&cleanQuietFlag, "quiet", "q", false, "Suppress progress and per-file output")
	cleanCmd.Flags().BoolVar(&cleanWatchFlag, "watch", false, "Keep running and clean files as they change")
	cleanCmd.Flags().StringVar(&cleanReportFlag, "report", "", "Write a JSON run report to this file")
}

// cleanOptions is the resolved input of one clean invocation.
type cleanOptions struct {
	Roots    []string
	Check    bool
	Diff     bool
	FailFast bool
	Workers  int
	Quiet    bool
	Verbose  bool
	Report   string
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	roots := append(append([]string{}, args...), cleanDirsFlag...)
	if len(roots) == 0 {
		return errors.New("no directories given: pass DIR arguments or --dir")
	}

	opts := cleanOptions{
		Roots:    roots,
		Check:    cleanCheckFlag,
		Diff:     cleanDiffFlag,
		FailFast: cleanFailFastFlag || cfg.Run.FailFast,
		Workers:  cfg.Run.Workers,
		Quiet:    cleanQuietFlag,
		Verbose:  verbose,
		Report:   cleanReportFlag,
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers = cleanWorkersFlag
	}

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	if !cleanWatchFlag {
		return cleanRoots(cmd.Context(), cfg, opts, out, errOut)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchRoots(ctx, cfg, opts, out, errOut)
}

// cleanSession holds what one invocation shares across runs. In watch mode
// the same processor serves every batch, so files it just wrote are
// recognized as clean when their change events arrive.
type cleanSession struct {
	opts      cleanOptions
	discovery *discovery.FileDiscovery
	processor *cleaner.Processor
	out       io.Writer
	errOut    io.Writer
}

func newCleanSession(cfg *config.Config, opts cleanOptions, out, errOut io.Writer) (*cleanSession, error) {
	fd, err := discovery.NewFileDiscovery(cfg.Target.Basename, cfg.Target.Ignore)
	if err != nil {
		return nil, err
	}

	processor, err := cleaner.NewProcessor(cleaner.Options{
		Check:    opts.Check,
		Diff:     opts.Diff,
		Diagnose: opts.Verbose,
		FailFast: opts.FailFast,
		Workers:  opts.Workers,
	}, NewCLIProgressReporter(errOut, opts.Quiet))
	if err != nil {
		return nil, err
	}

	return &cleanSession{
		opts:      opts,
		discovery: fd,
		processor: processor,
		out:       out,
		errOut:    errOut,
	}, nil
}

func (s *cleanSession) Close() {
	s.processor.Close()
}

// cleanRoots performs a single clean of every target file under opts.Roots.
func cleanRoots(ctx context.Context, cfg *config.Config, opts cleanOptions, out, errOut io.Writer) error {
	s, err := newCleanSession(cfg, opts, out, errOut)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.cleanAll(ctx)
}

// cleanAll discovers and cleans every target file, writes the optional
// report and converts the outcome into the command's error.
func (s *cleanSession) cleanAll(ctx context.Context) error {
	startedAt := time.Now()

	files, err := s.discovery.DiscoverFiles(s.opts.Roots)
	if err != nil {
		return fmt.Errorf("%w: %w", cleaner.ErrIO, err)
	}
	if s.opts.Verbose {
		log.Printf("Found %d %s files", len(files), s.discovery.Basename())
	}

	results := s.processor.Run(ctx, files)
	s.printResults(results)

	if s.opts.Report != "" {
		report := cleaner.NewReport(s.opts.Roots, s.opts.Check, startedAt, results)
		if err := cleaner.WriteReport(s.opts.Report, report); err != nil {
			return err
		}
	}

	if !s.opts.Quiet {
		s.printSummary(results, time.Since(startedAt))
	}

	return outcome(results, s.opts.Check)
}

// cleanBatch cleans files reported by the watcher.
func (s *cleanSession) cleanBatch(ctx context.Context, files []string) {
	results := s.processor.Run(ctx, files)
	s.printResults(results)
}

// watchRoots cleans everything once and then keeps cleaning changed files
// until ctx is cancelled. Failures during watching are reported but do not
// stop the loop.
func watchRoots(ctx context.Context, cfg *config.Config, opts cleanOptions, out, errOut io.Writer) error {
	singleton, err := daemon.NewSingleton(daemon.DefaultLockDir(), opts.Roots)
	if err != nil {
		return err
	}
	won, err := singleton.Acquire()
	if err != nil {
		return err
	}
	if !won {
		return fmt.Errorf("another initclean is already watching %s", strings.Join(opts.Roots, ", "))
	}
	defer singleton.Release()

	s, err := newCleanSession(cfg, opts, out, errOut)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.cleanAll(ctx); err != nil && !errors.Is(err, ErrWouldChange) && !isFileFailure(err) {
		return err
	}

	debounce := time.Duration(cfg.Watch.DebounceMS) * time.Millisecond
	fw, err := watcher.NewFileWatcher(opts.Roots, s.discovery, debounce)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer fw.Stop()

	if err := fw.Start(ctx, func(files []string) {
		s.cleanBatch(ctx, files)
	}); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	if !opts.Quiet {
		color.New(color.FgCyan).Fprintf(out, "Watching %s for changes (Ctrl+C to stop)\n", strings.Join(opts.Roots, ", "))
	}

	<-ctx.Done()
	return nil
}

// fileFailureError reports how many files failed in a run.
type fileFailureError struct {
	failed, total int
}

func (e *fileFailureError) Error() string {
	return fmt.Sprintf("%d of %d files failed", e.failed, e.total)
}

func isFileFailure(err error) bool {
	var ffe *fileFailureError
	return errors.As(err, &ffe)
}

// outcome maps run results to the command's error: failures first, then
// pending changes in check mode.
func outcome(results []cleaner.FileResult, check bool) error {
	if failed := cleaner.Failed(results); len(failed) > 0 {
		return &fileFailureError{failed: len(failed), total: len(results)}
	}
	if check {
		pending := 0
		for _, r := range results {
			if r.Changed {
				pending++
			}
		}
		if pending > 0 {
			return fmt.Errorf("%d %w", pending, ErrWouldChange)
		}
	}
	return nil
}

func (s *cleanSession) printResults(results []cleaner.FileResult) {
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	for _, r := range results {
		if r.Err != nil {
			// Errors are reported even when quiet
			red.Fprintf(s.errOut, "✗ %s: %v\n", r.Path, r.Err)
			continue
		}

		if s.opts.Verbose {
			for _, node := range r.Unrecognized {
				log.Printf("Warning: %s:%d: import not recognized, its names are not exported: %s",
					r.Path, node.Line, firstLine(node.Text))
			}
		}

		if r.Diff != "" {
			writeDiff(s.out, r.Diff)
		}

		if s.opts.Quiet {
			continue
		}
		switch {
		case r.Written:
			green.Fprintf(s.out, "✓ %s (%d exports)\n", r.Path, len(r.Exports))
		case r.Changed:
			yellow.Fprintf(s.out, "~ %s would be cleaned\n", r.Path)
		case s.opts.Verbose:
			fmt.Fprintf(s.out, "  %s unchanged\n", r.Path)
		}
	}
}

func (s *cleanSession) printSummary(results []cleaner.FileResult, elapsed time.Duration) {
	changed, failed := 0, 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		} else if r.Changed {
			changed++
		}
	}

	verb := "cleaned"
	if s.opts.Check {
		verb = "would be cleaned"
	}

	summary := color.New(color.Bold)
	if failed > 0 {
		summary.Add(color.FgRed)
	}
	summary.Fprintf(s.out, "%d files checked, %d %s, %d failed (%.1fs)\n",
		len(results), changed, verb, failed, elapsed.Seconds())
}

// writeDiff prints a rendered diff, coloring each line by its prefix.
func writeDiff(w io.Writer, diff string) {
	header := color.New(color.Bold)
	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)
	hunk := color.New(color.FgCyan)

	for _, line := range strings.SplitAfter(diff, "\n") {
		switch {
		case line == "":
		case strings.HasPrefix(line, "--- "), strings.HasPrefix(line, "+++ "):
			header.Fprint(w, line)
		case strings.HasPrefix(line, "+"):
			added.Fprint(w, line)
		case strings.HasPrefix(line, "-"):
			removed.Fprint(w, line)
		case strings.HasPrefix(line, "@@"):
			hunk.Fprint(w, line)
		default:
			fmt.Fprint(w, line)
		}
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
