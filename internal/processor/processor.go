// =============================================================================
// Invoice Combination Finder - Batch File Processor
// =============================================================================
//
// This module runs the whole pipeline for a single invoice file dropped into
// the input directory.
//
// PROCESSING PIPELINE:
//   1. Read the invoice file (.xlsx or .csv)
//   2. Apply the profile's id transformations
//   3. Enforce the max_invoices cap
//   4. Search for combinations (bounded by search_timeout)
//   5. Write the export (csv or xlsx) to the output directory
//   6. Archive the invoice file and the export
//
// CONCURRENCY:
//   A Processor handles one file and shares nothing mutable with others, so
//   the batch runner can run many of them at once.
//
// =============================================================================

package processor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mohamed-kadi/invoice-combination-finder/internal/combination"
	"github.com/mohamed-kadi/invoice-combination-finder/internal/config"
	"github.com/mohamed-kadi/invoice-combination-finder/internal/export"
	"github.com/mohamed-kadi/invoice-combination-finder/internal/ingest"
	"github.com/mohamed-kadi/invoice-combination-finder/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the invoice file that was processed.
	FilePath string

	// Profile is the code of the profile used, empty when none matched.
	Profile string

	// OutputFile is the export written. Empty on failure and in dry runs.
	OutputFile string

	// Success indicates whether the processing was successful.
	Success bool

	// Error is nil on success.
	Error error

	Stats Stats
}

// Stats contains statistics about the processing.
type Stats struct {
	// Invoices is the number of invoices read from the file.
	Invoices int

	// Combinations is the number of combinations found.
	Combinations int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// PROCESSOR STRUCTURE
// =============================================================================

// Processor handles a single invoice file.
type Processor struct {
	filePath    string
	profile     *config.ProfileConfig
	mainConfig  *config.MainConfig
	files       *utils.FileManager
	transformer *Transformer
	logger      *zap.Logger
}

// New creates a Processor for filePath using profile.
//
// RETURNS:
//   - An error when the profile's id transformations cannot be prepared.
func New(filePath string, profile *config.ProfileConfig, mainConfig *config.MainConfig, files *utils.FileManager, logger *zap.Logger) (*Processor, error) {
	transformer, err := NewTransformer(profile.IDTransformations)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", profile.ProfileCode, err)
	}

	return &Processor{
		filePath:    filePath,
		profile:     profile,
		mainConfig:  mainConfig,
		files:       files,
		transformer: transformer,
		logger: logger.With(
			zap.String("file", filepath.Base(filePath)),
			zap.String("profile", profile.ProfileCode),
		),
	}, nil
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the pipeline for the file.
func (p *Processor) Run(ctx context.Context) (result Result) {
	startTime := time.Now()
	result = Result{
		FilePath: p.filePath,
		Profile:  p.profile.ProfileCode,
	}
	defer func() {
		result.Stats.ProcessingTime = time.Since(startTime)
	}()

	p.logger.Info("processing file")

	// =========================================================================
	// STEP 1: READ INVOICES
	// =========================================================================

	file, err := os.Open(p.filePath)
	if err != nil {
		result.Error = fmt.Errorf("failed to open file: %w", err)
		return result
	}
	invoices, err := ingest.Read(p.filePath, file, p.profile.CSVSettings)
	file.Close()
	if err != nil {
		result.Error = err
		return result
	}

	result.Stats.Invoices = len(invoices)
	p.logger.Debug("read invoices", zap.Int("invoices", len(invoices)))

	// =========================================================================
	// STEP 2: APPLY ID TRANSFORMATIONS
	// =========================================================================

	if !p.transformer.Empty() {
		for i := range invoices {
			invoices[i].ID = p.transformer.Transform(invoices[i].ID)
		}
		p.logger.Debug("applied id transformations")
	}

	// =========================================================================
	// STEP 3 + 4: SEARCH
	// =========================================================================

	if err := combination.CheckSize(len(invoices), p.mainConfig.MaxInvoices); err != nil {
		result.Error = err
		return result
	}

	target, err := p.profile.TargetAmount()
	if err != nil {
		result.Error = err
		return result
	}
	minSize, maxSize := p.profile.SizeBounds()
	constraints := combination.Constraints{
		MinSize:     minSize,
		MaxSize:     maxSize,
		RequiredIDs: p.profile.RequiredInvoiceIDs,
	}

	searchCtx := ctx
	if p.mainConfig.SearchTimeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, p.mainConfig.SearchTimeout)
		defer cancel()
	}

	outcome, err := combination.FindContext(searchCtx, target, invoices, constraints)
	if err != nil {
		if !combination.IsValidationError(err) {
			err = fmt.Errorf("search abandoned after %s: %w", p.mainConfig.SearchTimeout, err)
		}
		result.Error = err
		return result
	}

	result.Stats.Combinations = outcome.Count()
	p.logger.Info("search complete",
		zap.Int("invoices", len(invoices)),
		zap.Int("combinations", outcome.Count()),
	)

	if p.files.DryRun {
		result.Success = true
		return result
	}

	// =========================================================================
	// STEP 5: WRITE EXPORT
	// =========================================================================

	outputPath, err := p.writeOutput(outcome)
	if err != nil {
		result.Error = fmt.Errorf("failed to write output: %w", err)
		return result
	}
	result.OutputFile = outputPath
	p.logger.Info("wrote output", zap.String("output", outputPath))

	// =========================================================================
	// STEP 6: ARCHIVE FILES
	// =========================================================================
	// Archive failures are logged; the export already exists.

	if _, err := p.files.ArchiveInputFile(p.filePath); err != nil {
		p.logger.Warn("failed to archive input file", zap.Error(err))
	}
	if _, err := p.files.ArchiveOutputFile(outputPath); err != nil {
		p.logger.Warn("failed to archive output file", zap.Error(err))
	}

	result.Success = true
	return result
}

// writeOutput renders the export in the profile's format and writes it to
// the output directory.
func (p *Processor) writeOutput(outcome *combination.Outcome) (string, error) {
	format, err := export.ParseFormat(p.profile.ExportFormat)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := export.Render(&buf, outcome, format); err != nil {
		return "", err
	}

	original := strings.TrimSuffix(filepath.Base(p.filePath), filepath.Ext(p.filePath))
	fileName := utils.GenerateOutputFileName(p.mainConfig.OutputNameFormat, format.Extension(), map[string]string{
		"profile":  p.profile.ProfileCode,
		"original": original,
	})
	outputPath := filepath.Join(p.files.OutputDir, fileName)

	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return outputPath, nil
}
