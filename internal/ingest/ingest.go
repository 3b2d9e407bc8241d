// Package ingest turns spreadsheet rows into raw invoice entries.
//
// A row contributes its first two non-empty cells as (id, amount). Fully
// blank rows are skipped. The first row that looks like a header
// ("id" or "...invoice..." followed by "...amount...") is skipped once.
// Amounts are parsed as exact decimals; nothing else is validated here,
// the combination engine does that.
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mohamed-kadi/invoice-combination-finder/internal/config"
	"github.com/mohamed-kadi/invoice-combination-finder/internal/csvparser"
	"github.com/mohamed-kadi/invoice-combination-finder/internal/types"
	"github.com/mohamed-kadi/invoice-combination-finder/internal/xlsxparser"
)

// ErrInvalidFile wraps every rejection of an uploaded or batch file.
var ErrInvalidFile = errors.New("invalid invoice file")

// FileError is a rejection with the message shown to the user.
type FileError struct {
	Message string
	Err     error
}

func (e *FileError) Error() string {
	return e.Message
}

func (e *FileError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidFile}
	}
	return []error{ErrInvalidFile, e.Err}
}

func fileError(err error, format string, args ...any) error {
	return &FileError{Message: fmt.Sprintf(format, args...), Err: err}
}

// Supported file extensions.
const (
	ExtXLSX = ".xlsx"
	ExtCSV  = ".csv"
)

// Supported reports whether name has an extension Read accepts.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ExtXLSX, ExtCSV:
		return true
	}
	return false
}

// Read dispatches on the file extension of name and returns the invoices
// found in r. settings only applies to .csv files.
func Read(name string, r io.Reader, settings config.CSVSettings) ([]types.RawInvoice, error) {
	if !Supported(name) {
		return nil, fileError(nil, "Only .xlsx or .csv files are supported.")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fileError(err, "Unable to read the uploaded file.")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fileError(nil, "Uploaded file is empty.")
	}

	var rows [][]string
	if strings.EqualFold(filepath.Ext(name), ExtXLSX) {
		rows, err = xlsxparser.ReadRows(bytes.NewReader(data))
	} else {
		rows, err = csvparser.ReadRows(bytes.NewReader(data), settings)
	}
	if err != nil {
		if errors.Is(err, xlsxparser.ErrNoSheets) {
			return nil, fileError(err, "The Excel file does not contain any sheets.")
		}
		return nil, fileError(err, "Unable to read the uploaded file.")
	}

	return Invoices(rows)
}

// Invoices converts text rows to raw invoices. Row numbers in error messages
// are 1-based positions in rows.
func Invoices(rows [][]string) ([]types.RawInvoice, error) {
	var (
		invoices      []types.RawInvoice
		headerSkipped bool
	)

	for i, row := range rows {
		cells := nonEmpty(row)
		if len(cells) == 0 {
			continue
		}

		if !headerSkipped && len(cells) >= 2 && looksLikeHeader(cells[0], cells[1]) {
			headerSkipped = true
			continue
		}

		if len(cells) < 2 {
			return nil, fileError(nil, "Each data row must contain both an invoice id and amount.")
		}

		amount, err := decimal.NewFromString(cells[1])
		if err != nil {
			return nil, fileError(err, "Invalid amount at row %d: %s", i+1, cells[1])
		}

		invoices = append(invoices, types.NewRawInvoice(cells[0], amount))
	}

	if len(invoices) == 0 {
		return nil, fileError(nil, "No invoice rows were detected in the file.")
	}
	return invoices, nil
}

// nonEmpty returns the first two cells that are not blank.
func nonEmpty(row []string) []string {
	cells := make([]string, 0, 2)
	for _, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		cells = append(cells, cell)
		if len(cells) == 2 {
			break
		}
	}
	return cells
}

func looksLikeHeader(first, second string) bool {
	first = strings.ToLower(first)
	second = strings.ToLower(second)
	return (first == "id" || strings.Contains(first, "invoice")) && strings.Contains(second, "amount")
}
