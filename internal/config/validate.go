package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrEmptyBasename indicates a missing target file name
	ErrEmptyBasename = errors.New("empty target basename")

	// ErrInvalidBasename indicates a target name that is a path, not a file name
	ErrInvalidBasename = errors.New("invalid target basename")

	// ErrInvalidPattern indicates an ignore glob that does not compile
	ErrInvalidPattern = errors.New("invalid ignore pattern")

	// ErrInvalidWorkers indicates a negative worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidDebounce indicates a negative debounce period
	ErrInvalidDebounce = errors.New("invalid debounce period")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateTarget(&cfg.Target); err != nil {
		errs = append(errs, err)
	}

	if err := validateRun(&cfg.Run); err != nil {
		errs = append(errs, err)
	}

	if err := validateWatch(&cfg.Watch); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateTarget(cfg *TargetConfig) error {
	var errs []error

	name := strings.TrimSpace(cfg.Basename)
	if name == "" {
		errs = append(errs, fmt.Errorf("%w: basename is required", ErrEmptyBasename))
	} else if strings.ContainsAny(name, `/\`) {
		errs = append(errs, fmt.Errorf("%w: must be a file name without directories, got '%s'", ErrInvalidBasename, cfg.Basename))
	}

	for _, pattern := range cfg.Ignore {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: '%s': %v", ErrInvalidPattern, pattern, err))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateRun(cfg *RunConfig) error {
	// Zero workers means one per CPU
	if cfg.Workers < 0 {
		return fmt.Errorf("%w: workers cannot be negative, got %d", ErrInvalidWorkers, cfg.Workers)
	}
	return nil
}

func validateWatch(cfg *WatchConfig) error {
	if cfg.DebounceMS < 0 {
		return fmt.Errorf("%w: debounce_ms cannot be negative, got %d", ErrInvalidDebounce, cfg.DebounceMS)
	}
	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
