// =============================================================================
// Invoice Combination Finder - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing all configuration files.
// It handles both the main application configuration and the batch profiles.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): Global settings, directories, HTTP server
//   2. Profile Configs (profiles/*.yaml): One reconciliation job per profile
//      (file patterns, target amount, size bounds, required invoices)
//
// OVERRIDES:
//   Environment variables prefixed FINDER_ and bound command-line flags
//   override values from the file (see ApplyOverrides). Nested keys use an
//   underscore: server.address -> FINDER_SERVER_ADDRESS.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
// This is loaded from the main config.yaml file.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned by the process command for invoice files.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives combination exports, summaries and error logs.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives invoice files after successful processing.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputArchiveDir receives a copy of every export.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir"`

	// ProfilesDir holds one YAML file per batch profile.
	// Default: "./profiles"
	ProfilesDir string `yaml:"profiles_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the zap encoder: "json" or "console".
	// Default: "console"
	LogFormat string `yaml:"log_format"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat defines the export file name.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {profile}   - Profile code
	//   {original}  - Input file name without extension
	// The extension matching the export format is appended when missing.
	// Default: "{profile}_{original}_{uuid}"
	OutputNameFormat string `yaml:"output_name_format"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files processed at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError keeps the batch going after a file fails.
	// Default: true (set explicitly to false to stop at the first failure)
	ContinueOnError *bool `yaml:"continue_on_error"`

	// MaxInvoices caps how many invoices one search may receive.
	// The search is exponential in the list length; this is the guard.
	// Default: 60
	MaxInvoices int `yaml:"max_invoices"`

	// SearchTimeout bounds how long a caller waits for one search.
	// Default: 30s
	SearchTimeout time.Duration `yaml:"search_timeout"`

	// Server holds the HTTP API settings.
	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds the settings used by the serve command.
type ServerConfig struct {
	// Address is the listen address. Default: ":8080"
	Address string `yaml:"address"`

	// AllowedOrigins lists CORS origins. Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// RateLimitPerMinute is the sustained request rate per client IP.
	// Default: 120
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`

	// RateLimitBurst is the burst size per client IP. Default: 20
	RateLimitBurst int `yaml:"rate_limit_burst"`

	// MaxUploadBytes caps the size of uploaded spreadsheets.
	// Default: 10 MiB
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

// Continue reports whether the batch should go on after a failed file.
func (c *MainConfig) Continue() bool {
	return c.ContinueOnError == nil || *c.ContinueOnError
}

// =============================================================================
// PROFILE CONFIGURATION STRUCTURE
// =============================================================================

// ProfileConfig describes one batch reconciliation job. Every invoice file
// whose name matches one of the patterns is searched for combinations that
// add up to Target.
type ProfileConfig struct {
	// ProfileName is the human-readable name used in logs.
	ProfileName string `yaml:"profile_name"`

	// ProfileCode is a short code used in output file names.
	ProfileCode string `yaml:"profile_code"`

	// FileMatchingPatterns are glob patterns matched against file names.
	// Examples: "ar_*.xlsx", "*_payments.csv"
	FileMatchingPatterns []string `yaml:"file_matching_patterns"`

	// Target is the amount to match, as an exact decimal string ("1500.00").
	Target string `yaml:"target"`

	// MinInvoices and MaxInvoices bound combination size. Zero means unset.
	MinInvoices int `yaml:"min_invoices,omitempty"`
	MaxInvoices int `yaml:"max_invoices,omitempty"`

	// RequiredInvoiceIDs must appear in every combination.
	RequiredInvoiceIDs []string `yaml:"required_invoice_ids,omitempty"`

	// CSVSettings applies to .csv inputs only.
	CSVSettings CSVSettings `yaml:"csv_settings"`

	// IDTransformations are applied in order to every invoice id read from
	// the file, before the search.
	IDTransformations []TransformationAction `yaml:"id_transformations,omitempty"`

	// ExportFormat is "csv" or "xlsx". Default: "csv"
	ExportFormat string `yaml:"export_format"`

	// source is the file the profile was loaded from.
	source string
}

// Source returns the path the profile was loaded from.
func (p *ProfileConfig) Source() string {
	return p.source
}

// TargetAmount parses Target as an exact decimal.
func (p *ProfileConfig) TargetAmount() (decimal.NullDecimal, error) {
	if strings.TrimSpace(p.Target) == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(p.Target))
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid target %q: %w", p.Target, err)
	}
	return decimal.NewNullDecimal(d), nil
}

// SizeBounds converts the zero-means-unset bounds to optional values.
func (p *ProfileConfig) SizeBounds() (min, max *int) {
	if p.MinInvoices != 0 {
		v := p.MinInvoices
		min = &v
	}
	if p.MaxInvoices != 0 {
		v := p.MaxInvoices
		max = &v
	}
	return min, max
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for parsing CSV invoice files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields.
	// Common values: "," (comma), ";" (semicolon), "|" (pipe), "\t" (tab)
	// Default: ","
	Delimiter string `yaml:"delimiter"`
}

// =============================================================================
// TRANSFORMATION ACTION STRUCTURE
// =============================================================================

// TransformationAction defines a single id transformation.
type TransformationAction struct {
	// Type is one of:
	//   - "trim", "uppercase", "lowercase"
	//   - "prepend_string", "append_string" : Value is the text to add
	//   - "replace"                          : Find -> Value
	//   - "regex_replace"                    : Find is the pattern
	//   - "pad_zeros_to_length"              : Value is the length
	//   - "lookup"                           : LookupTable maps old -> new
	Type string `yaml:"type"`

	Value string `yaml:"value,omitempty"`

	Find string `yaml:"find,omitempty"`

	LookupTable map[string]string `yaml:"lookup_table,omitempty"`
}

// KnownTransformations lists the accepted TransformationAction types.
var KnownTransformations = map[string]bool{
	"trim":                true,
	"uppercase":           true,
	"lowercase":           true,
	"prepend_string":      true,
	"append_string":       true,
	"replace":             true,
	"regex_replace":       true,
	"pad_zeros_to_length": true,
	"lookup":              true,
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a MainConfig with every default applied.
func Default() *MainConfig {
	cfg := &MainConfig{}
	applyMainConfigDefaults(cfg)
	return cfg
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//   - optional: When true a missing file yields the defaults instead of an error.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string, optional bool) (*MainConfig, error) {
	var config MainConfig

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case optional && errors.Is(err, os.ErrNotExist):
		// Defaults only.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := ValidateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = "./output_archive"
	}
	if config.ProfilesDir == "" {
		config.ProfilesDir = "./profiles"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "console"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{profile}_{original}_{uuid}"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
	if config.MaxInvoices == 0 {
		config.MaxInvoices = 60
	}
	if config.SearchTimeout == 0 {
		config.SearchTimeout = 30 * time.Second
	}
	if config.Server.Address == "" {
		config.Server.Address = ":8080"
	}
	if len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = []string{"*"}
	}
	if config.Server.RateLimitPerMinute == 0 {
		config.Server.RateLimitPerMinute = 120
	}
	if config.Server.RateLimitBurst == 0 {
		config.Server.RateLimitBurst = 20
	}
	if config.Server.MaxUploadBytes == 0 {
		config.Server.MaxUploadBytes = 10 << 20
	}
}

// ValidateMainConfig checks value ranges. It does not touch the file system.
func ValidateMainConfig(config *MainConfig) error {
	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error (got %q)", config.LogLevel)
	}
	switch config.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("log_format must be json or console (got %q)", config.LogFormat)
	}
	if config.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1")
	}
	if config.MaxInvoices < 1 {
		return fmt.Errorf("max_invoices must be at least 1")
	}
	if config.SearchTimeout < 0 {
		return fmt.Errorf("search_timeout cannot be negative")
	}
	if config.Server.RateLimitPerMinute < 1 || config.Server.RateLimitBurst < 1 {
		return fmt.Errorf("server rate limits must be at least 1")
	}
	if config.Server.MaxUploadBytes < 1 {
		return fmt.Errorf("server.max_upload_bytes must be at least 1")
	}
	return nil
}

// EnsureDirectories creates the working directories used by batch processing.
func EnsureDirectories(config *MainConfig) error {
	dirs := []string{
		config.InputDir,
		config.OutputDir,
		config.InputArchiveDir,
		config.OutputArchiveDir,
		config.ProfilesDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// OVERRIDES
// =============================================================================

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "FINDER"

// NewViper returns a viper instance that resolves keys from FINDER_*
// environment variables. Callers bind flags onto it before ApplyOverrides.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ApplyOverrides copies every key that is set in v (environment variable or
// changed flag) onto config, then re-validates.
func ApplyOverrides(config *MainConfig, v *viper.Viper) error {
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	num := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}

	str("input_dir", &config.InputDir)
	str("output_dir", &config.OutputDir)
	str("input_archive_dir", &config.InputArchiveDir)
	str("output_archive_dir", &config.OutputArchiveDir)
	str("profiles_dir", &config.ProfilesDir)
	str("log_level", &config.LogLevel)
	str("log_format", &config.LogFormat)
	str("output_name_format", &config.OutputNameFormat)
	num("max_concurrency", &config.MaxConcurrency)
	num("max_invoices", &config.MaxInvoices)
	if v.IsSet("search_timeout") {
		config.SearchTimeout = v.GetDuration("search_timeout")
	}
	if v.IsSet("continue_on_error") {
		b := v.GetBool("continue_on_error")
		config.ContinueOnError = &b
	}

	str("server.address", &config.Server.Address)
	num("server.rate_limit_per_minute", &config.Server.RateLimitPerMinute)
	num("server.rate_limit_burst", &config.Server.RateLimitBurst)
	if v.IsSet("server.allowed_origins") {
		config.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}
	if v.IsSet("server.max_upload_bytes") {
		config.Server.MaxUploadBytes = v.GetInt64("server.max_upload_bytes")
	}

	return ValidateMainConfig(config)
}

// =============================================================================
// PROFILE LOADING
// =============================================================================

// LoadProfileConfigs loads all profile configurations from a directory.
//
// RETURNS:
//   - A map of profiles keyed by profile code (file name when no code is set).
//   - An error if any file cannot be read, parsed or validated.
func LoadProfileConfigs(profilesDir string) (map[string]*ProfileConfig, error) {
	profiles := make(map[string]*ProfileConfig)

	files, err := filepath.Glob(filepath.Join(profilesDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list profile files: %w", err)
	}

	// Also check for .yml extension.
	ymlFiles, err := filepath.Glob(filepath.Join(profilesDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list profile files: %w", err)
	}
	files = append(files, ymlFiles...)

	for _, file := range files {
		profile, err := loadProfileConfig(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}

		key := profile.ProfileCode
		if key == "" {
			key = filepath.Base(file)
		}
		if existing, dup := profiles[key]; dup {
			return nil, fmt.Errorf("profile code %q defined in both %s and %s", key, existing.source, file)
		}

		profiles[key] = profile
	}

	return profiles, nil
}

// loadProfileConfig loads a single profile configuration file.
func loadProfileConfig(filePath string) (*ProfileConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var profile ProfileConfig
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}
	profile.source = filePath

	applyProfileConfigDefaults(&profile)

	if err := ValidateProfileConfig(&profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

// applyProfileConfigDefaults sets default values for profile configuration.
func applyProfileConfigDefaults(profile *ProfileConfig) {
	if profile.CSVSettings.Delimiter == "" {
		profile.CSVSettings.Delimiter = ","
	}
	if profile.ExportFormat == "" {
		profile.ExportFormat = "csv"
	}
	if profile.ProfileName == "" {
		profile.ProfileName = profile.ProfileCode
	}
}

// ValidateProfileConfig checks a profile for values the batch cannot use.
// Size bounds and the target are checked again by the search itself; they
// are checked here too so a bad profile fails at load time, not per file.
func ValidateProfileConfig(profile *ProfileConfig) error {
	if len(profile.FileMatchingPatterns) == 0 {
		return fmt.Errorf("file_matching_patterns must not be empty")
	}
	for _, pattern := range profile.FileMatchingPatterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid file pattern %q: %w", pattern, err)
		}
	}

	target, err := profile.TargetAmount()
	if err != nil {
		return err
	}
	if !target.Valid || !target.Decimal.IsPositive() {
		return fmt.Errorf("target must be a decimal greater than zero")
	}

	if profile.MinInvoices < 0 || profile.MaxInvoices < 0 {
		return fmt.Errorf("min_invoices and max_invoices must be positive when set")
	}
	if profile.MinInvoices > 0 && profile.MaxInvoices > 0 && profile.MaxInvoices < profile.MinInvoices {
		return fmt.Errorf("max_invoices cannot be less than min_invoices")
	}

	switch profile.ExportFormat {
	case "csv", "xlsx":
	default:
		return fmt.Errorf("export_format must be csv or xlsx (got %q)", profile.ExportFormat)
	}

	for i, action := range profile.IDTransformations {
		if !KnownTransformations[action.Type] {
			return fmt.Errorf("id_transformations[%d]: unknown type %q", i, action.Type)
		}
	}

	return nil
}
