// =============================================================================
// Invoice Combination Finder - XLSX Invoice Sheet Reader
// =============================================================================
//
// This module reads invoice workbooks uploaded by users or dropped into the
// batch input directory. Only the FIRST worksheet is read. Each row is returned
// as the formatted text of its cells, exactly as a user sees it in Excel.
//
// EXPECTED SHEET LAYOUT:
//
//   | Column A    | Column B |
//   |-------------|----------|
//   | Invoice ID  | Amount   |   <- optional header row
//   | INV-100     | 10.00    |
//   | INV-200     | 5        |
//
// Interpreting the rows (header detection, amount parsing) is the job of the
// ingest package; this module only gets text out of the workbook.
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrNoSheets is returned for a workbook without any worksheet.
var ErrNoSheets = errors.New("the Excel file does not contain any sheets")

// =============================================================================
// READER FUNCTIONS
// =============================================================================

// ReadRows reads every row of the first worksheet from an XLSX stream.
//
// PARAMETERS:
//   - r: The workbook content.
//
// RETURNS:
//   - One []string per sheet row, cells trimmed. Blank rows are kept as empty
//     slices so callers can report 1-based row numbers.
//   - An error if the workbook cannot be opened or has no sheets.
func ReadRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read the Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	for i, row := range rows {
		rows[i] = trimCells(row)
	}
	return rows, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// trimCells trims surrounding whitespace from every cell.
func trimCells(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = strings.TrimSpace(cell)
	}
	return out
}
