package processor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mohamed-kadi/invoice-combination-finder/internal/combination"
	"github.com/mohamed-kadi/invoice-combination-finder/internal/config"
	"github.com/mohamed-kadi/invoice-combination-finder/internal/ingest"
	"github.com/mohamed-kadi/invoice-combination-finder/pkg/utils"
)

// ErrNoProfile is reported for files no profile pattern matches.
var ErrNoProfile = errors.New("no matching profile configuration found")

// ErrSkipped is reported for files not started because an earlier file failed
// and continue_on_error is off, or because the run was cancelled.
var ErrSkipped = errors.New("skipped after an earlier failure")

// Job pairs an invoice file with the profile that will process it.
// Profile is nil when no profile matched.
type Job struct {
	FilePath string
	Profile  *config.ProfileConfig
}

// MatchProfile returns the first profile, in profile code order, with a
// pattern matching the file name.
func MatchProfile(filePath string, profiles map[string]*config.ProfileConfig) *config.ProfileConfig {
	codes := make([]string, 0, len(profiles))
	for code := range profiles {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		if utils.MatchesAny(filePath, profiles[code].FileMatchingPatterns) {
			return profiles[code]
		}
	}
	return nil
}

// PlanJobs matches each file to a profile. When only is set, files matching
// a different profile are dropped.
func PlanJobs(files []string, profiles map[string]*config.ProfileConfig, only string) []Job {
	jobs := make([]Job, 0, len(files))
	for _, file := range files {
		profile := MatchProfile(file, profiles)
		if only != "" && (profile == nil || profile.ProfileCode != only) {
			continue
		}
		jobs = append(jobs, Job{FilePath: file, Profile: profile})
	}
	return jobs
}

// =============================================================================
// BATCH RUNNER
// =============================================================================

// Batch runs many jobs with at most MainConfig.MaxConcurrency at once.
type Batch struct {
	MainConfig *config.MainConfig
	Files      *utils.FileManager
	Logger     *zap.Logger
}

// Run processes every job and returns one Result per job, in job order.
func (b *Batch) Run(ctx context.Context, jobs []Job) []Result {
	gate, stop := context.WithCancel(ctx)
	defer stop()

	limit := b.MainConfig.MaxConcurrency
	if limit < 1 {
		limit = 1
	}
	sem := make(chan struct{}, limit)
	results := make([]Result, len(jobs))

	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-gate.Done():
				results[i] = skipped(job)
				return
			}
			defer func() { <-sem }()

			if gate.Err() != nil {
				results[i] = skipped(job)
				return
			}

			results[i] = b.runOne(ctx, job)
			if !results[i].Success && !b.MainConfig.Continue() {
				stop()
			}
		}(i, job)
	}
	wg.Wait()

	return results
}

func (b *Batch) runOne(ctx context.Context, job Job) Result {
	if job.Profile == nil {
		b.Logger.Warn("no matching profile", zap.String("file", filepath.Base(job.FilePath)))
		return Result{FilePath: job.FilePath, Error: ErrNoProfile}
	}

	p, err := New(job.FilePath, job.Profile, b.MainConfig, b.Files, b.Logger)
	if err != nil {
		return Result{FilePath: job.FilePath, Profile: job.Profile.ProfileCode, Error: err}
	}

	result := p.Run(ctx)
	if result.Error != nil {
		b.Logger.Error("file failed",
			zap.String("file", filepath.Base(job.FilePath)),
			zap.String("profile", job.Profile.ProfileCode),
			zap.Error(result.Error),
		)
	}
	return result
}

func skipped(job Job) Result {
	result := Result{FilePath: job.FilePath, Error: ErrSkipped}
	if job.Profile != nil {
		result.Profile = job.Profile.ProfileCode
	}
	return result
}

// =============================================================================
// REPORTING
// =============================================================================

// Summarize builds the summary and error log entries for a finished run.
func Summarize(start, end time.Time, results []Result) (utils.ProcessingSummary, []utils.ErrorLogEntry) {
	summary := utils.ProcessingSummary{
		StartTime:  start,
		EndTime:    end,
		TotalFiles: len(results),
	}
	var entries []utils.ErrorLogEntry

	for _, r := range results {
		if r.Success {
			summary.SuccessfulFiles++
			summary.TotalInvoices += r.Stats.Invoices
			summary.TotalCombinations += r.Stats.Combinations
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:    r.FilePath,
				OutputFile:   r.OutputFile,
				Profile:      r.Profile,
				Invoices:     r.Stats.Invoices,
				Combinations: r.Stats.Combinations,
				ProcessTime:  r.Stats.ProcessingTime,
			})
			continue
		}

		summary.FailedFiles++
		summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
			InputFile:    r.FilePath,
			Profile:      r.Profile,
			ErrorMessage: fmt.Sprint(r.Error),
		})
		entries = append(entries, utils.ErrorLogEntry{
			Timestamp:    end,
			FileName:     filepath.Base(r.FilePath),
			Profile:      r.Profile,
			ErrorType:    ErrorType(r.Error),
			ErrorMessage: fmt.Sprint(r.Error),
		})
	}

	return summary, entries
}

// ErrorType classifies a failure for the error log.
func ErrorType(err error) string {
	switch {
	case errors.Is(err, ErrNoProfile):
		return "unmatched"
	case errors.Is(err, ErrSkipped):
		return "skipped"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ingest.ErrInvalidFile):
		return "file"
	case combination.IsValidationError(err):
		return "validation"
	default:
		return "processing"
	}
}
