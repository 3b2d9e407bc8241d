// =============================================================================
// Invoice Combination Finder - Process Command
// =============================================================================
//
// This file defines the 'process' command, which runs the combination search
// over every invoice file dropped into the input directory.
//
// COMMAND USAGE:
//   finder process [flags]
//
// FLAGS:
//   --dry-run : Search without writing exports or archiving files
//   --file    : Process only this file
//   --profile : Process only files matching this profile code
//
// PROCESSING PIPELINE:
//   1. Load profile configurations
//   2. Discover invoice files in the input directory
//   3. Match each file to a profile
//   4. For each file (at most max_concurrency at once):
//      a. Read the invoices
//      b. Apply id transformations
//      c. Search with the profile's target and constraints
//      d. Write the export
//   5. Archive processed files
//   6. Write the summary report and error log
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mohamed-kadi/invoice-combination-finder/internal/config"
	"github.com/mohamed-kadi/invoice-combination-finder/internal/ingest"
	"github.com/mohamed-kadi/invoice-combination-finder/internal/processor"
	"github.com/mohamed-kadi/invoice-combination-finder/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun searches without writing exports or moving files.
var dryRun bool

// filePath restricts the run to one file.
var filePath string

// profileCode restricts the run to one profile.
var profileCode string

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Search every invoice file in the input directory",
	Long: `The process command scans the input directory for invoice spreadsheets,
matches each one to a profile by file name, and searches it for combinations
adding up to the profile's target amount.

Files are processed concurrently, bounded by max_concurrency.

On successful processing:
  - The export is placed in the output directory and copied to the output archive
  - The invoice file is moved to the input archive
  - A summary report is generated

On error:
  - An error log is created in the output directory
  - The invoice file remains in the input directory
  - Other files continue unless continue_on_error is false`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Search without writing exports or archiving files",
	)

	processCmd.Flags().StringVar(
		&filePath,
		"file",
		"",
		"Path to a specific file to process",
	)

	processCmd.Flags().StringVar(
		&profileCode,
		"profile",
		"",
		"Process only files for a specific profile code",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess orchestrates the batch run.
func runProcess(cmd *cobra.Command) error {
	startTime := time.Now()
	out := cmd.OutOrStdout()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	profiles, err := config.LoadProfileConfigs(mainConfig.ProfilesDir)
	if err != nil {
		return fmt.Errorf("failed to load profile configs: %w", err)
	}
	if profileCode != "" {
		if _, ok := profiles[profileCode]; !ok {
			return fmt.Errorf("unknown profile code: %s", profileCode)
		}
	}
	logger.Info("loaded profiles", zap.Int("profiles", len(profiles)))

	if !dryRun {
		if err := config.EnsureDirectories(mainConfig); err != nil {
			return fmt.Errorf("failed to create directories: %w", err)
		}
	}

	files := utils.NewFileManager(
		mainConfig.InputDir,
		mainConfig.OutputDir,
		mainConfig.InputArchiveDir,
		mainConfig.OutputArchiveDir,
	)
	files.DryRun = dryRun

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	var inputFiles []string
	if filePath != "" {
		if !utils.FileExists(filePath) {
			return fmt.Errorf("file not found: %s", filePath)
		}
		inputFiles = []string{filePath}
	} else {
		inputFiles, err = files.DiscoverInputFiles([]string{"*"}, ingest.ExtXLSX, ingest.ExtCSV)
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
	}

	jobs := processor.PlanJobs(inputFiles, profiles, profileCode)
	if len(jobs) == 0 {
		fmt.Fprintln(out, "No invoice files found to process.")
		return nil
	}
	fmt.Fprintf(out, "Found %d file(s) to process\n", len(jobs))

	// =========================================================================
	// STEP 3: PROCESS FILES CONCURRENTLY
	// =========================================================================

	batch := &processor.Batch{
		MainConfig: mainConfig,
		Files:      files,
		Logger:     logger,
	}
	results := batch.Run(cmd.Context(), jobs)

	for _, r := range results {
		if r.Success {
			fmt.Fprintf(out, "  ✓ %s -> %s (%d combination(s))\n",
				filepath.Base(r.FilePath), outputLabel(r), r.Stats.Combinations)
		} else {
			fmt.Fprintf(out, "  ✗ %s: %v\n", filepath.Base(r.FilePath), r.Error)
		}
	}

	// =========================================================================
	// STEP 4: SUMMARY AND ERROR LOG
	// =========================================================================

	summary, entries := processor.Summarize(startTime, time.Now(), results)

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(out, "Errors:          %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Combinations:    %d\n", summary.TotalCombinations)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime))

	if !dryRun {
		if path, err := utils.WriteSummaryLog(summary, mainConfig.OutputDir); err != nil {
			logger.Warn("failed to write summary", zap.Error(err))
		} else {
			logger.Info("wrote summary", zap.String("path", path))
		}

		if len(entries) > 0 {
			if path, err := utils.WriteErrorLog(entries, mainConfig.OutputDir); err != nil {
				logger.Warn("failed to write error log", zap.Error(err))
			} else {
				fmt.Fprintf(out, "\nErrors have been logged to %s\n", path)
			}
		}
	}

	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d of %d file(s) failed", summary.FailedFiles, summary.TotalFiles)
	}
	return nil
}

func outputLabel(r processor.Result) string {
	if r.OutputFile == "" {
		return "(dry run)"
	}
	return filepath.Base(r.OutputFile)
}
