package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rumor-ml/taxease/internal/domain"
)

// WriteReport serializes a report to JSON with 2-space indentation.
func WriteReport(report *domain.TaxReport, w io.Writer) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report as JSON: %w", err)
	}
	return nil
}

// WriteReportToFile writes a report to the given path, or stdout when the
// path is empty. File writes go through a temp file and rename so a crash
// mid-write never leaves a truncated report behind.
func WriteReportToFile(report *domain.TaxReport, path string) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}

	if path == "" {
		return WriteReport(report, os.Stdout)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if err := WriteReport(report, tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to finalize report file %s: %w", path, err)
	}
	return nil
}

// LoadReport reads a previously written JSON report.
func LoadReport(path string) (*domain.TaxReport, error) {
	f, err := os.Open(path)
	if err != nil {
		// Unwrapped so callers can check os.IsNotExist.
		return nil, err
	}
	defer f.Close()

	var report domain.TaxReport
	if err := json.NewDecoder(f).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to decode report JSON from %s: %w", path, err)
	}
	return &report, nil
}
