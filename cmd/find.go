// =============================================================================
// Invoice Combination Finder - Find Command
// =============================================================================
//
// COMMAND USAGE:
//   finder find --target AMOUNT --file PATH [flags]
//
// FLAGS:
//   --target    : Amount every combination must add up to (required)
//   --file      : Invoice spreadsheet (.xlsx or .csv)
//   --min       : Minimum invoices per combination
//   --max       : Maximum invoices per combination
//   --require   : Invoice id every combination must contain (repeatable)
//   --delimiter : CSV delimiter (default ",")
//   --format    : text, json, yaml, csv or xlsx
//   --output    : Write to this file instead of stdout
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mohamed-kadi/invoice-combination-finder/internal/combination"
	"github.com/mohamed-kadi/invoice-combination-finder/internal/config"
	"github.com/mohamed-kadi/invoice-combination-finder/internal/export"
	"github.com/mohamed-kadi/invoice-combination-finder/internal/ingest"
)

// findOptions holds the flags of the find command.
type findOptions struct {
	target    string
	file      string
	min       int
	max       int
	require   []string
	delimiter string
	format    string
	output    string
}

var findOpts findOptions

// findCmd represents the 'find' command.
var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Find invoice combinations matching a target amount",
	Long: `The find command reads an invoice list from a spreadsheet and prints every
combination of invoices whose amounts add up exactly to the target.

The first sheet of an .xlsx file is used. Each data row holds an invoice id
and an amount; a header row is detected and skipped.`,
	Example: `  finder find --target 1500.00 --file march.xlsx
  finder find --target 99.5 --file ar.csv --min 2 --max 4 --require INV-7
  finder find --target 250 --file ar.csv --format xlsx --output matches.xlsx`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFind(cmd.Context(), cmd)
	},
}

func init() {
	rootCmd.AddCommand(findCmd)

	f := findCmd.Flags()
	f.StringVar(&findOpts.target, "target", "", "Target amount (required)")
	f.StringVar(&findOpts.file, "file", "", "Invoice spreadsheet (.xlsx or .csv)")
	f.IntVar(&findOpts.min, "min", 0, "Minimum invoices per combination")
	f.IntVar(&findOpts.max, "max", 0, "Maximum invoices per combination")
	f.StringArrayVar(&findOpts.require, "require", nil, "Invoice id every combination must contain (repeatable)")
	f.StringVar(&findOpts.delimiter, "delimiter", ",", "Field delimiter for .csv files")
	f.StringVar(&findOpts.format, "format", string(export.FormatText), "Output format: text, json, yaml, csv or xlsx")
	f.StringVarP(&findOpts.output, "output", "o", "", "Write the result to this file instead of stdout")

	_ = findCmd.MarkFlagRequired("target")
	_ = findCmd.MarkFlagRequired("file")
}

// runFind reads the invoice file, runs the search and renders the outcome.
func runFind(ctx context.Context, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	format, err := findFormat(cmd)
	if err != nil {
		return err
	}
	if format == export.FormatXLSX && findOpts.output == "" {
		return fmt.Errorf("--format xlsx requires --output")
	}

	target, err := parseTarget(findOpts.target)
	if err != nil {
		return err
	}

	file, err := os.Open(findOpts.file)
	if err != nil {
		return fmt.Errorf("failed to open invoice file: %w", err)
	}
	defer file.Close()

	invoices, err := ingest.Read(findOpts.file, file, config.CSVSettings{Delimiter: findOpts.delimiter})
	if err != nil {
		return err
	}
	logger.Debug("read invoices", zap.String("file", findOpts.file), zap.Int("invoices", len(invoices)))

	if err := combination.CheckSize(len(invoices), mainConfig.MaxInvoices); err != nil {
		return err
	}

	constraints := combination.Constraints{RequiredIDs: findOpts.require}
	if cmd.Flags().Changed("min") {
		constraints.MinSize = &findOpts.min
	}
	if cmd.Flags().Changed("max") {
		constraints.MaxSize = &findOpts.max
	}

	if mainConfig.SearchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, mainConfig.SearchTimeout)
		defer cancel()
	}

	outcome, err := combination.FindContext(ctx, target, invoices, constraints)
	if err != nil {
		if !combination.IsValidationError(err) {
			return fmt.Errorf("search abandoned after %s: %w", mainConfig.SearchTimeout, err)
		}
		return err
	}
	logger.Debug("search complete", zap.Int("combinations", outcome.Count()))

	return writeFindOutput(cmd.OutOrStdout(), outcome, format)
}

// findFormat resolves --format. When only --output is given, the format
// follows the output file's extension.
func findFormat(cmd *cobra.Command) (export.Format, error) {
	if !cmd.Flags().Changed("format") && findOpts.output != "" {
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(findOpts.output)), ".")
		if f, err := export.ParseFormat(ext); err == nil {
			return f, nil
		}
	}
	return export.ParseFormat(findOpts.format)
}

// parseTarget turns the --target flag into an amount. An empty flag is
// passed through as absent so the engine reports it.
func parseTarget(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid target amount: %s", s)
	}
	return decimal.NewNullDecimal(d), nil
}

func writeFindOutput(stdout io.Writer, outcome *combination.Outcome, format export.Format) error {
	if findOpts.output == "" {
		return export.Render(stdout, outcome, format)
	}

	out, err := os.Create(findOpts.output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := export.Render(out, outcome, format); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Wrote %d combination(s) to %s\n", outcome.Count(), findOpts.output)
	return nil
}
