// =============================================================================
// Invoice Combination Finder - CSV Invoice File Reader
// =============================================================================
//
// This module reads invoice lists exported as delimited text. It handles:
//   - Different delimiters (comma, semicolon, pipe, tab)
//   - Ragged rows (variable number of fields per row)
//   - Lazy quotes produced by some spreadsheet exports
//   - A UTF-8 byte order mark at the start of the file
//
// Like the XLSX reader, it only returns text; the ingest package decides what
// the rows mean.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/mohamed-kadi/invoice-combination-finder/internal/config"
)

// utf8BOM is stripped from the first cell when present.
const utf8BOM = "\uFEFF"

// =============================================================================
// READER FUNCTIONS
// =============================================================================

// ReadRows reads every record of a delimited invoice file.
//
// PARAMETERS:
//   - r: The file content.
//   - settings: Delimiter settings from the profile (or defaults).
//
// RETURNS:
//   - One []string per record with trimmed cells.
//   - An error if the content is not valid delimited text.
func ReadRows(r io.Reader, settings config.CSVSettings) ([][]string, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	configureReader(reader, settings)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	for i, record := range records {
		for j, cell := range record {
			if i == 0 && j == 0 {
				cell = strings.TrimPrefix(cell, utf8BOM)
			}
			record[j] = strings.TrimSpace(cell)
		}
	}
	return records, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	reader.Comma = Delimiter(settings.Delimiter)

	// Allow variable number of fields per row.
	reader.FieldsPerRecord = -1

	// Allow lazy quotes (quotes that don't follow strict CSV rules).
	reader.LazyQuotes = true

	reader.TrimLeadingSpace = true
}

// Delimiter maps a configured delimiter name or character to a rune.
// Unknown or empty values fall back to a comma.
func Delimiter(value string) rune {
	switch value {
	case "\\t", "\t", "tab", "TAB":
		return '\t'
	case "|", "pipe", "PIPE":
		return '|'
	case ";", "semicolon", "SEMICOLON":
		return ';'
	case "", ",", "comma", "COMMA":
		return ','
	default:
		return []rune(value)[0]
	}
}
