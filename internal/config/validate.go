package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mvp-joe/codescope/internal/checksum"
)

var (
	// ErrInvalidThreads indicates a negative worker count
	ErrInvalidThreads = errors.New("invalid threads")

	// ErrInvalidSize indicates invalid file size bounds
	ErrInvalidSize = errors.New("invalid file size bounds")

	// ErrInvalidDate indicates an unparseable modified_after value
	ErrInvalidDate = errors.New("invalid modified_after date")

	// ErrInvalidPattern indicates an ignore pattern that does not compile
	ErrInvalidPattern = errors.New("invalid ignore pattern")

	// ErrInvalidAlgorithm indicates an unsupported checksum algorithm
	ErrInvalidAlgorithm = errors.New("invalid checksum algorithm")

	// ErrEmptyOutput indicates a missing output filename or folder
	ErrEmptyOutput = errors.New("empty output location")
)

// dateLayouts are the accepted modified_after formats.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// ParseDate parses a modified_after value. Empty yields the zero time.
// Date-only values are interpreted in the local time zone.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q (expected YYYY-MM-DD or RFC 3339)", ErrInvalidDate, s)
}

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Threads < 0 {
		errs = append(errs, fmt.Errorf("%w: must be >= 0, got %d", ErrInvalidThreads, cfg.Threads))
	}

	if err := validateSizes(cfg); err != nil {
		errs = append(errs, err)
	}

	if _, err := ParseDate(cfg.ModifiedAfter); err != nil {
		errs = append(errs, err)
	}

	for _, p := range cfg.IgnorePatterns {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, p, err))
		}
	}

	if _, err := checksum.ParseAlgorithm(cfg.ChecksumAlgorithm); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidAlgorithm, err))
	}

	if strings.TrimSpace(cfg.OutputFilename) == "" {
		errs = append(errs, fmt.Errorf("%w: output_filename is required", ErrEmptyOutput))
	}
	if strings.TrimSpace(cfg.OutputFolder) == "" {
		errs = append(errs, fmt.Errorf("%w: output_folder is required", ErrEmptyOutput))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateSizes(cfg *Config) error {
	var errs []error

	if cfg.MaxFileSize < 0 {
		errs = append(errs, fmt.Errorf("%w: max_file_size must be >= 0, got %d", ErrInvalidSize, cfg.MaxFileSize))
	}
	if cfg.MinFileSize < 0 {
		errs = append(errs, fmt.Errorf("%w: min_file_size must be >= 0, got %d", ErrInvalidSize, cfg.MinFileSize))
	}
	if cfg.MaxFileSize > 0 && cfg.MinFileSize > cfg.MaxFileSize {
		errs = append(errs, fmt.Errorf("%w: min_file_size (%d) exceeds max_file_size (%d)", ErrInvalidSize, cfg.MinFileSize, cfg.MaxFileSize))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
