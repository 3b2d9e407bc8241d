// =============================================================================
// Invoice Combination Finder - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (finder)
//   ├── findCmd     (finder find)      one-off search over a spreadsheet
//   ├── serveCmd    (finder serve)     HTTP API
//   ├── processCmd  (finder process)   batch mode over the input directory
//   ├── validateCmd (finder validate)  configuration check
//   └── versionCmd  (finder version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads the main configuration file (--config)
//   2. Applies FINDER_* environment variables and --log-level
//   3. Builds the zap logger
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mohamed-kadi/invoice-combination-finder/internal/config"
	"github.com/mohamed-kadi/invoice-combination-finder/internal/logging"
	"github.com/mohamed-kadi/invoice-combination-finder/pkg/utils"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// logLevel overrides log_level from the config file.
var logLevel string

// mainConfig and logger are ready for use inside every subcommand's RunE.
var (
	mainConfig *config.MainConfig
	logger     = zap.NewNop()
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "finder",

	Short: "Invoice Combination Finder - find the invoices that add up to a payment",

	Long: `Invoice Combination Finder searches a list of invoices for every combination
whose amounts add up exactly to a target, such as a payment received without
remittance advice.

Key Features:
  - Exact decimal arithmetic, no rounding surprises
  - Minimum / maximum combination size and required invoices
  - Reads invoice lists from .xlsx and .csv files
  - Exports combinations as CSV or XLSX
  - HTTP API for the web front end
  - Batch processing of a drop folder with per-profile settings

Example Usage:
  finder find --target 1500.00 --file march.xlsx
  finder find --target 99.5 --file ar.csv --min 2 --require INV-7 --format json
  finder serve                          # Start the HTTP API
  finder process                        # Process all files in the input directory
  finder validate                       # Validate configuration without processing`,

	SilenceUsage: true,

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// Assigned here rather than in the rootCmd literal to avoid an
	// initialization cycle (initConfig refers to rootCmd).
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	}

	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file (optional unless set explicitly)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	rootCmd.PersistentFlags().StringVar(
		&logLevel,
		"log-level",
		"",
		"Override log_level (debug, info, warn, error)",
	)
}

// initConfig loads the main configuration, applies overrides and builds the
// logger. A missing config file is only an error when --config was given.
func initConfig(cmd *cobra.Command) error {
	optional := !rootCmd.PersistentFlags().Changed("config")

	cfg, err := config.LoadMainConfig(cfgFile, optional)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}

	v := config.NewViper()
	if err := v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		return err
	}
	if verbose {
		v.Set("log_level", "debug")
	}
	if err := config.ApplyOverrides(cfg, v); err != nil {
		return fmt.Errorf("invalid configuration override: %w", err)
	}

	l, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	mainConfig = cfg
	logger = l
	logger.Debug("configuration loaded",
		zap.String("config", cfgFile),
		zap.Bool("defaults_only", optional && !utils.FileExists(cfgFile)),
	)
	return nil
}
