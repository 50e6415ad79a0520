package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/initclean/internal/cleaner"
)

// CLIProgressReporter implements cleaner.ProgressReporter with a progress bar.
type CLIProgressReporter struct {
	out     io.Writer
	quiet   bool
	fileBar *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a new CLI progress reporter writing to out.
func NewCLIProgressReporter(out io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{
		out:   out,
		quiet: quiet,
	}
}

func (c *CLIProgressReporter) OnStart(totalFiles int) {
	// A bar for a single file is noise
	if c.quiet || totalFiles < 2 {
		c.fileBar = nil
		return
	}

	out := c.out
	c.fileBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("Cleaning files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(out)
		}),
	)
}

func (c *CLIProgressReporter) OnFileProcessed(result cleaner.FileResult) {
	if c.fileBar != nil {
		c.fileBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnComplete(results []cleaner.FileResult) {
	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}
}
