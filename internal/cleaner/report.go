package cleaner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Report summarizes one clean run for machine consumption.
type Report struct {
	RunID     string       `json:"run_id"`
	StartedAt time.Time    `json:"started_at"`
	Duration  string       `json:"duration"`
	Roots     []string     `json:"roots"`
	Check     bool         `json:"check"`
	Files     []FileReport `json:"files"`
	Totals    Totals       `json:"totals"`
}

// FileReport is the per-file part of a Report.
type FileReport struct {
	Path         string   `json:"path"`
	Changed      bool     `json:"changed"`
	Written      bool     `json:"written"`
	Exports      []string `json:"exports"`
	RemovedLines int      `json:"removed_lines"`
	Unrecognized []string `json:"unrecognized,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// Totals aggregates a run.
type Totals struct {
	Files   int `json:"files"`
	Changed int `json:"changed"`
	Written int `json:"written"`
	Failed  int `json:"failed"`
}

// NewReport builds a report for results produced by a run that began at
// startedAt.
func NewReport(roots []string, check bool, startedAt time.Time, results []FileResult) *Report {
	r := &Report{
		RunID:     uuid.New().String(),
		StartedAt: startedAt,
		Duration:  time.Since(startedAt).String(),
		Roots:     roots,
		Check:     check,
		Files:     make([]FileReport, 0, len(results)),
	}

	for _, res := range results {
		fr := FileReport{
			Path:         res.Path,
			Changed:      res.Changed,
			Written:      res.Written,
			Exports:      res.Exports,
			RemovedLines: res.RemovedLines,
		}
		if fr.Exports == nil {
			fr.Exports = []string{}
		}
		for _, node := range res.Unrecognized {
			fr.Unrecognized = append(fr.Unrecognized, fmt.Sprintf("%d: %s", node.Line, node.Text))
		}
		if res.Err != nil {
			fr.Error = res.Err.Error()
			r.Totals.Failed++
		}
		if res.Changed {
			r.Totals.Changed++
		}
		if res.Written {
			r.Totals.Written++
		}
		r.Files = append(r.Files, fr)
	}
	r.Totals.Files = len(results)

	return r
}

// WriteReport writes the report as indented JSON, atomically.
func WriteReport(path string, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	tempPath := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp")
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	// Rename to final location (atomic operation)
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}
