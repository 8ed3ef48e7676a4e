// =============================================================================
// SAS7BDAT Converter - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the converter, including:
//   - Source discovery (non-recursive, sorted by name)
//   - Destination naming for directory conversions
//   - Atomic file writes through uuid-named temp files
//   - Run reports
//
// WRITE STRATEGY:
//   Output is written to a hidden temp file beside the destination and renamed
//   into place once the encoder succeeds. A failed encode removes the temp file,
//   so a destination either holds a complete document or does not exist.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectory creates dir and its parents if they do not exist.
func EnsureDirectory(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", dir)
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverSourceFiles lists the regular files directly inside dir whose
// extension exactly matches one of extensions (leading dot included).
//
// PARAMETERS:
//   - dir: The directory to scan. Subdirectories are not descended into.
//   - extensions: Accepted extensions, e.g. ".sas7bdat", ".xpt".
//
// RETURNS:
//   - The matching file paths, sorted by file name.
//   - The error from reading dir, unchanged.
func DiscoverSourceFiles(dir string, extensions []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	accepted := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		accepted[ext] = true
	}

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if accepted[filepath.Ext(entry.Name())] {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	return files, nil
}

// =============================================================================
// FILE NAMING UTILITIES
// =============================================================================

// DestinationPath returns {dir}/{stem of source}.{ext}.
//
// Example:
//
//	DestinationPath("out", "data/people.sas7bdat", "csv") // out/people.csv
func DestinationPath(dir, source, ext string) string {
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+"."+strings.TrimPrefix(ext, "."))
}

// NewRunID returns a unique identifier for a conversion run.
func NewRunID() string {
	return uuid.New().String()
}

// tempPath returns a hidden uuid-named temp path beside path.
func tempPath(path string) string {
	dir, base := filepath.Split(path)
	return filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", base, uuid.New().String()))
}

// =============================================================================
// ATOMIC WRITES
// =============================================================================

// WriteFileAtomic writes path through write, replacing any existing file
// only once write has succeeded.
//
// PARAMETERS:
//   - path: The destination file.
//   - write: Produces the file content. It receives a buffered writer.
//
// RETURNS:
//   - The error from write, unchanged, or an error from the file system.
func WriteFileAtomic(path string, write func(w io.Writer) error) (err error) {
	tmp := tempPath(path)

	file, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to create temp file for %s", path)
	}

	defer func() {
		if err != nil {
			file.Close()
			os.Remove(tmp)
		}
	}()

	buf := bufio.NewWriter(file)
	if err = write(buf); err != nil {
		return err
	}
	if err = buf.Flush(); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	if err = file.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %s", path)
	}
	if err = os.Rename(tmp, path); err != nil {
		return errors.Wrapf(err, "failed to move output into place at %s", path)
	}

	return nil
}

// =============================================================================
// SUMMARY LOG
// =============================================================================

// ProcessingSummary contains summary information for a conversion run.
type ProcessingSummary struct {
	RunID           string              `yaml:"run_id"`
	Format          string              `yaml:"format"`
	StartTime       time.Time           `yaml:"start_time"`
	EndTime         time.Time           `yaml:"end_time"`
	TotalFiles      int                 `yaml:"total_files"`
	SuccessfulFiles int                 `yaml:"successful_files"`
	FailedFiles     int                 `yaml:"failed_files"`
	ProcessedFiles  []ProcessedFileInfo `yaml:"processed_files,omitempty"`
	FailedFilesList []FailedFileInfo    `yaml:"failed_files_list,omitempty"`
}

// ProcessedFileInfo contains information about a successfully converted file.
type ProcessedFileInfo struct {
	InputFile  string `yaml:"input"`
	OutputFile string `yaml:"output"`
}

// FailedFileInfo contains information about a file that failed to convert.
type FailedFileInfo struct {
	InputFile  string `yaml:"input"`
	OutputFile string `yaml:"output"`
	Error      string `yaml:"error"`
}

// WriteSummaryLog writes a YAML report of a run to outputDir.
//
// RETURNS:
//   - The path to the report file.
//   - An error if the report cannot be written.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = "."
	}
	if err := EnsureDirectory(outputDir); err != nil {
		return "", err
	}

	timestamp := summary.EndTime.Format("20060102_150405")
	if summary.EndTime.IsZero() {
		timestamp = time.Now().Format("20060102_150405")
	}
	id := summary.RunID
	if len(id) > 8 {
		id = id[:8]
	}
	summaryPath := filepath.Join(outputDir, fmt.Sprintf("processing_summary_%s_%s.yaml", timestamp, id))

	err := WriteFileAtomic(summaryPath, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(summary); err != nil {
			return errors.Wrap(err, "failed to encode summary")
		}
		return enc.Close()
	})
	if err != nil {
		return "", err
	}

	return summaryPath, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
