// =============================================================================
// Invoice Combination Finder - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for batch processing:
//   - Invoice file discovery by profile glob patterns
//   - File archival (moving processed invoice files, copying exports)
//   - Output file naming
//   - Processing summary and error log generation
//
// ARCHIVAL STRATEGY:
//   - Invoice files are moved to input_archive after successful processing
//   - Export files are copied to output_archive for long-term storage
//   - Failed files remain in the input directory for another run
//   - Summaries and error logs are created in the output directory
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// timestampLayout is used in file names and log headers.
const (
	timestampLayout = "20060102_150405"
	displayLayout   = "2006-01-02 15:04:05"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for batch processing.
type FileManager struct {
	// InputDir is where invoice files are dropped.
	InputDir string

	// OutputDir receives exports, summaries and error logs.
	OutputDir string

	// InputArchiveDir receives processed invoice files.
	InputArchiveDir string

	// OutputArchiveDir receives copies of exports.
	OutputArchiveDir string

	// DryRun disables every write: archiving becomes a no-op.
	DryRun bool
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir, outputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:         inputDir,
		OutputDir:        outputDir,
		InputArchiveDir:  inputArchiveDir,
		OutputArchiveDir: outputArchiveDir,
	}
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists regular files in the input directory whose base
// name matches at least one of the glob patterns and has one of the allowed
// extensions. The result is sorted and free of duplicates.
//
// PARAMETERS:
//   - patterns: Glob patterns such as "ar_*.xlsx". Empty means "*".
//   - extensions: Lower-case extensions with the dot, e.g. ".csv".
//                 Empty means any extension.
func (fm *FileManager) DiscoverInputFiles(patterns []string, extensions ...string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{"*"}
	}

	seen := make(map[string]bool)
	var result []string

	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(fm.InputDir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to scan input directory: %w", err)
		}

		for _, file := range matches {
			if seen[file] || !hasExtension(file, extensions) {
				continue
			}
			info, err := os.Stat(file)
			if err != nil || info.IsDir() {
				continue
			}
			seen[file] = true
			result = append(result, file)
		}
	}

	sort.Strings(result)
	return result, nil
}

// MatchesAny reports whether the base name of path matches one of patterns.
func MatchesAny(path string, patterns []string) bool {
	name := filepath.Base(path)
	for _, pattern := range patterns {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

func hasExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves a processed invoice file to the input archive.
//
// RETURNS:
//   - The path to the archived file.
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if fm.DryRun {
		return filePath, nil
	}

	archivePath := filepath.Join(fm.InputArchiveDir, filepath.Base(filePath))
	if err := os.MkdirAll(fm.InputArchiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// Rename fails across devices; fall back to copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// ArchiveOutputFile copies an export to the output archive. The export stays
// in the output directory.
func (fm *FileManager) ArchiveOutputFile(filePath string) (string, error) {
	if fm.DryRun {
		return filePath, nil
	}

	archivePath := filepath.Join(fm.OutputArchiveDir, filepath.Base(filePath))
	if err := os.MkdirAll(fm.OutputArchiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := copyFile(filePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to copy file to archive: %w", err)
	}

	return archivePath, nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName expands a name format.
//
// PARAMETERS:
//   - format: The format string. Built-in placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//             Any key of params is also available as {key}.
//   - extension: Appended (with its dot) unless the name already ends with it.
//   - params: Extra placeholder values, e.g. {"profile": "AR"}.
//
// EXAMPLE:
//   format: "{profile}_{original}_{uuid}", extension ".csv"
//   params: {"profile": "AR", "original": "march"}
//   output: "AR_march_a1b2c3d4-e5f6-7890-abcd-ef1234567890.csv"
func GenerateOutputFileName(format, extension string, params map[string]string) string {
	pairs := []string{
		"{uuid}", uuid.New().String(),
		"{timestamp}", time.Now().Format(timestampLayout),
	}
	for key, value := range params {
		pairs = append(pairs, "{"+key+"}", value)
	}

	result := strings.NewReplacer(pairs...).Replace(format)

	if extension != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(extension)) {
		result += extension
	}
	return result
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry represents one failed invoice file.
type ErrorLogEntry struct {
	Timestamp    time.Time
	FileName     string
	Profile      string
	ErrorType    string
	ErrorMessage string
}

// WriteErrorLog writes error entries to a log file in outputDir.
//
// RETURNS:
//   - The path to the error log file ("" when there were no entries).
//   - An error if writing fails.
func WriteErrorLog(entries []ErrorLogEntry, outputDir string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	logPath := filepath.Join(outputDir, fmt.Sprintf("error_log_%s.txt", time.Now().Format(timestampLayout)))

	return logPath, writeReport(logPath, func(w *bufio.Writer) {
		fmt.Fprintf(w, "Invoice Combination Finder - Error Log\n")
		fmt.Fprintf(w, "Generated: %s\n", time.Now().Format(displayLayout))
		fmt.Fprintf(w, "Total Errors: %d\n", len(entries))
		fmt.Fprintf(w, "%s\n\n", rule)

		for i, entry := range entries {
			fmt.Fprintf(w, "Error #%d\n", i+1)
			fmt.Fprintf(w, "  Timestamp:  %s\n", entry.Timestamp.Format(displayLayout))
			fmt.Fprintf(w, "  File:       %s\n", entry.FileName)
			if entry.Profile != "" {
				fmt.Fprintf(w, "  Profile:    %s\n", entry.Profile)
			}
			fmt.Fprintf(w, "  Error Type: %s\n", entry.ErrorType)
			fmt.Fprintf(w, "  Message:    %s\n\n", entry.ErrorMessage)
		}

		fmt.Fprintf(w, "%s\nEnd of Error Log\n", rule)
	})
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a batch run.
type ProcessingSummary struct {
	StartTime         time.Time
	EndTime           time.Time
	TotalFiles        int
	SuccessfulFiles   int
	FailedFiles       int
	TotalInvoices     int
	TotalCombinations int
	ProcessedFiles    []ProcessedFileInfo
	FailedFilesList   []FailedFileInfo
}

// ProcessedFileInfo describes a successfully processed invoice file.
type ProcessedFileInfo struct {
	InputFile    string
	OutputFile   string
	Profile      string
	Invoices     int
	Combinations int
	ProcessTime  time.Duration
}

// FailedFileInfo describes a failed invoice file.
type FailedFileInfo struct {
	InputFile    string
	Profile      string
	ErrorMessage string
}

// WriteSummaryLog writes a processing summary to a file in outputDir.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	summaryPath := filepath.Join(outputDir, fmt.Sprintf("processing_summary_%s.txt", time.Now().Format(timestampLayout)))

	return summaryPath, writeReport(summaryPath, func(w *bufio.Writer) {
		fmt.Fprintf(w, "Invoice Combination Finder - Processing Summary\n%s\n\n", rule)

		fmt.Fprintf(w, "Run Information:\n")
		fmt.Fprintf(w, "  Start Time:     %s\n", summary.StartTime.Format(displayLayout))
		fmt.Fprintf(w, "  End Time:       %s\n", summary.EndTime.Format(displayLayout))
		fmt.Fprintf(w, "  Duration:       %s\n\n", summary.EndTime.Sub(summary.StartTime))

		fmt.Fprintf(w, "Statistics:\n")
		fmt.Fprintf(w, "  Total Files:        %d\n", summary.TotalFiles)
		fmt.Fprintf(w, "  Successful:         %d\n", summary.SuccessfulFiles)
		fmt.Fprintf(w, "  Failed:             %d\n", summary.FailedFiles)
		fmt.Fprintf(w, "  Total Invoices:     %d\n", summary.TotalInvoices)
		fmt.Fprintf(w, "  Total Combinations: %d\n\n", summary.TotalCombinations)

		if len(summary.ProcessedFiles) > 0 {
			fmt.Fprintf(w, "Successful Files:\n%s\n", thinRule)
			for _, pf := range summary.ProcessedFiles {
				fmt.Fprintf(w, "  Input:        %s\n", pf.InputFile)
				fmt.Fprintf(w, "  Profile:      %s\n", pf.Profile)
				fmt.Fprintf(w, "  Output:       %s\n", pf.OutputFile)
				fmt.Fprintf(w, "  Invoices:     %d\n", pf.Invoices)
				fmt.Fprintf(w, "  Combinations: %d\n", pf.Combinations)
				fmt.Fprintf(w, "  Process Time: %s\n\n", pf.ProcessTime)
			}
		}

		if len(summary.FailedFilesList) > 0 {
			fmt.Fprintf(w, "Failed Files:\n%s\n", thinRule)
			for _, ff := range summary.FailedFilesList {
				fmt.Fprintf(w, "  File:    %s\n", ff.InputFile)
				if ff.Profile != "" {
					fmt.Fprintf(w, "  Profile: %s\n", ff.Profile)
				}
				fmt.Fprintf(w, "  Error:   %s\n\n", ff.ErrorMessage)
			}
		}

		fmt.Fprintf(w, "%s\nEnd of Summary\n", rule)
	})
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

var (
	rule     = strings.Repeat("=", 80)
	thinRule = strings.Repeat("-", 80)
)

// writeReport creates path and hands a buffered writer to body.
func writeReport(path string, body func(w *bufio.Writer)) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	body(writer)

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", filepath.Base(path), err)
	}
	return nil
}

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
