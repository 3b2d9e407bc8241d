package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *FileManager {
	t.Helper()
	root := t.TempDir()
	fm := NewFileManager(
		filepath.Join(root, "input"),
		filepath.Join(root, "output"),
		filepath.Join(root, "input_archive"),
		filepath.Join(root, "output_archive"),
	)
	require.NoError(t, os.MkdirAll(fm.InputDir, 0o755))
	require.NoError(t, os.MkdirAll(fm.OutputDir, 0o755))
	return fm
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestDiscoverInputFiles(t *testing.T) {
	fm := newManager(t)
	for _, name := range []string{"ar_march.xlsx", "ar_april.csv", "ar_notes.txt", "ap_march.csv"} {
		touch(t, filepath.Join(fm.InputDir, name))
	}
	require.NoError(t, os.Mkdir(filepath.Join(fm.InputDir, "ar_dir.csv"), 0o755))

	files, err := fm.DiscoverInputFiles([]string{"ar_*", "*_april.*"}, ".xlsx", ".csv")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(fm.InputDir, "ar_april.csv"),
		filepath.Join(fm.InputDir, "ar_march.xlsx"),
	}, files)

	all, err := fm.DiscoverInputFiles(nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestMatchesAny(t *testing.T) {
	assert.True(t, MatchesAny("/in/ar_march.xlsx", []string{"ap_*", "ar_*.xlsx"}))
	assert.False(t, MatchesAny("/in/ar_march.xlsx", []string{"ap_*"}))
	assert.False(t, MatchesAny("/in/ar_march.xlsx", nil))
}

func TestArchive(t *testing.T) {
	fm := newManager(t)
	input := filepath.Join(fm.InputDir, "ar.csv")
	output := filepath.Join(fm.OutputDir, "AR_ar.csv")
	touch(t, input)
	touch(t, output)

	archived, err := fm.ArchiveInputFile(input)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fm.InputArchiveDir, "ar.csv"), archived)
	assert.False(t, FileExists(input))
	assert.True(t, FileExists(archived))

	copied, err := fm.ArchiveOutputFile(output)
	require.NoError(t, err)
	assert.True(t, FileExists(output))
	assert.True(t, FileExists(copied))
}

func TestArchive_DryRun(t *testing.T) {
	fm := newManager(t)
	fm.DryRun = true
	input := filepath.Join(fm.InputDir, "ar.csv")
	touch(t, input)

	archived, err := fm.ArchiveInputFile(input)
	require.NoError(t, err)
	assert.Equal(t, input, archived)
	assert.True(t, FileExists(input))
	assert.NoDirExists(t, fm.InputArchiveDir)
}

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("{profile}_{original}_{uuid}", ".csv", map[string]string{
		"profile":  "AR",
		"original": "march",
	})
	assert.Regexp(t, regexp.MustCompile(`^AR_march_[0-9a-f-]{36}\.csv$`), name)

	assert.Equal(t, "fixed.XLSX", GenerateOutputFileName("fixed.XLSX", ".xlsx", nil))
	assert.Regexp(t, `^run_\d{8}_\d{6}$`, GenerateOutputFileName("run_{timestamp}", "", nil))
}

func TestWriteErrorLog(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteErrorLog(nil, dir)
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = WriteErrorLog([]ErrorLogEntry{{
		Timestamp:    time.Now(),
		FileName:     "ar.csv",
		Profile:      "AR",
		ErrorType:    "processing",
		ErrorMessage: "Invalid amount at row 3: abc",
	}}, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Total Errors: 1")
	assert.Contains(t, string(data), "  Profile:    AR\n")
	assert.Contains(t, string(data), "  Message:    Invalid amount at row 3: abc\n")
}

func TestWriteSummaryLog(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	path, err := WriteSummaryLog(ProcessingSummary{
		StartTime:         start,
		EndTime:           start.Add(2 * time.Second),
		TotalFiles:        2,
		SuccessfulFiles:   1,
		FailedFiles:       1,
		TotalInvoices:     12,
		TotalCombinations: 3,
		ProcessedFiles:    []ProcessedFileInfo{{InputFile: "ar.csv", OutputFile: "out.csv", Profile: "AR", Invoices: 12, Combinations: 3}},
		FailedFilesList:   []FailedFileInfo{{InputFile: "bad.csv", ErrorMessage: "boom"}},
	}, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "  Duration:       2s\n")
	assert.Contains(t, text, "  Total Combinations: 3\n")
	assert.Contains(t, text, "  Combinations: 3\n")
	assert.Contains(t, text, "  Error:   boom\n")
	assert.NotContains(t, text, "  Profile: \n")
}
