package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMainConfig_MissingOptionalFileUsesDefaults(t *testing.T) {
	cfg, err := LoadMainConfig(filepath.Join(t.TempDir(), "config.yaml"), true)
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 60, cfg.MaxInvoices)
	assert.Equal(t, 30*time.Second, cfg.SearchTimeout)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.True(t, cfg.Continue())
}

func TestLoadMainConfig_MissingRequiredFileFails(t *testing.T) {
	_, err := LoadMainConfig(filepath.Join(t.TempDir(), "config.yaml"), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadMainConfig_ReadsFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
input_dir: ./in
log_level: debug
log_format: json
max_concurrency: 2
continue_on_error: false
max_invoices: 25
search_timeout: 1500ms
server:
  address: 127.0.0.1:9000
  allowed_origins: [http://localhost:5173]
  rate_limit_per_minute: 30
`)

	cfg, err := LoadMainConfig(path, false)
	require.NoError(t, err)

	assert.Equal(t, "./in", cfg.InputDir)
	assert.Equal(t, "./output", cfg.OutputDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 2, cfg.MaxConcurrency)
	assert.False(t, cfg.Continue())
	assert.Equal(t, 25, cfg.MaxInvoices)
	assert.Equal(t, 1500*time.Millisecond, cfg.SearchTimeout)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Address)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 30, cfg.Server.RateLimitPerMinute)
	assert.Equal(t, 20, cfg.Server.RateLimitBurst)
}

func TestLoadMainConfig_RejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"log level":  "log_level: loud\n",
		"log format": "log_format: xml\n",
		"negative":   "max_concurrency: -1\n",
		"yaml":       "log_level: [\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.yaml", body)
			_, err := LoadMainConfig(path, false)
			assert.Error(t, err)
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	v := viper.New()
	v.Set("log_level", "warn")
	v.Set("max_invoices", 12)
	v.Set("search_timeout", "2s")
	v.Set("server.address", ":9999")

	require.NoError(t, ApplyOverrides(cfg, v))

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 12, cfg.MaxInvoices)
	assert.Equal(t, 2*time.Second, cfg.SearchTimeout)
	assert.Equal(t, ":9999", cfg.Server.Address)
	assert.Equal(t, "./input", cfg.InputDir)
}

func TestApplyOverrides_FromEnvironment(t *testing.T) {
	t.Setenv("FINDER_SERVER_RATE_LIMIT_BURST", "7")
	t.Setenv("FINDER_LOG_FORMAT", "json")

	cfg := Default()
	v := NewViper()
	require.NoError(t, ApplyOverrides(cfg, v))

	assert.Equal(t, 7, cfg.Server.RateLimitBurst)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestApplyOverrides_Revalidates(t *testing.T) {
	v := viper.New()
	v.Set("log_level", "chatty")
	assert.Error(t, ApplyOverrides(Default(), v))
}

func TestLoadProfileConfigs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "receivables.yaml", `
profile_name: Receivables
profile_code: AR
file_matching_patterns: ["ar_*.xlsx", "ar_*.csv"]
target: "1500.00"
min_invoices: 2
required_invoice_ids: [INV-7]
csv_settings:
  delimiter: ";"
id_transformations:
  - type: trim
  - type: prepend_string
    value: "INV-"
`)
	writeFile(t, dir, "payables.yml", `
profile_code: AP
file_matching_patterns: ["ap_*.csv"]
target: "99.5"
export_format: xlsx
`)

	profiles, err := LoadProfileConfigs(dir)
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	ar := profiles["AR"]
	require.NotNil(t, ar)
	assert.Equal(t, "Receivables", ar.ProfileName)
	assert.Equal(t, ";", ar.CSVSettings.Delimiter)
	assert.Equal(t, "csv", ar.ExportFormat)
	assert.Len(t, ar.IDTransformations, 2)
	assert.Equal(t, filepath.Join(dir, "receivables.yaml"), ar.Source())

	target, err := ar.TargetAmount()
	require.NoError(t, err)
	assert.Equal(t, "1500", target.Decimal.String())

	min, max := ar.SizeBounds()
	require.NotNil(t, min)
	assert.Equal(t, 2, *min)
	assert.Nil(t, max)

	ap := profiles["AP"]
	require.NotNil(t, ap)
	assert.Equal(t, "AP", ap.ProfileName)
	assert.Equal(t, ",", ap.CSVSettings.Delimiter)
	assert.Equal(t, "xlsx", ap.ExportFormat)
}

func TestLoadProfileConfigs_Invalid(t *testing.T) {
	tests := map[string]string{
		"no patterns":    "target: \"10\"\n",
		"no target":      "file_matching_patterns: [\"*.csv\"]\n",
		"zero target":    "file_matching_patterns: [\"*.csv\"]\ntarget: \"0\"\n",
		"bad target":     "file_matching_patterns: [\"*.csv\"]\ntarget: ten\n",
		"bad pattern":    "file_matching_patterns: [\"[\"]\ntarget: \"10\"\n",
		"inverted sizes": "file_matching_patterns: [\"*.csv\"]\ntarget: \"10\"\nmin_invoices: 3\nmax_invoices: 2\n",
		"export format":  "file_matching_patterns: [\"*.csv\"]\ntarget: \"10\"\nexport_format: pdf\n",
		"transformation": "file_matching_patterns: [\"*.csv\"]\ntarget: \"10\"\nid_transformations:\n  - type: reverse\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "p.yaml", body)
			_, err := LoadProfileConfigs(dir)
			assert.Error(t, err)
		})
	}
}

func TestLoadProfileConfigs_DuplicateCode(t *testing.T) {
	dir := t.TempDir()
	body := "profile_code: X\nfile_matching_patterns: [\"*.csv\"]\ntarget: \"10\"\n"
	writeFile(t, dir, "a.yaml", body)
	writeFile(t, dir, "b.yaml", body)

	_, err := LoadProfileConfigs(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `profile code "X"`)
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	cfg.InputDir = filepath.Join(root, "in")
	cfg.OutputDir = filepath.Join(root, "out")
	cfg.InputArchiveDir = filepath.Join(root, "in_archive")
	cfg.OutputArchiveDir = filepath.Join(root, "out_archive")
	cfg.ProfilesDir = filepath.Join(root, "profiles")

	require.NoError(t, EnsureDirectories(cfg))
	for _, dir := range []string{cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir, cfg.ProfilesDir} {
		assert.DirExists(t, dir)
	}
}
