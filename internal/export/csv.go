package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mohamed-kadi/invoice-combination-finder/internal/combination"
)

// Header is the first row of every tabular export.
var Header = []string{"Combination", "Invoice IDs", "Total Amount"}

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "Combinations"

// Rows flattens an outcome into tabular rows, header excluded.
func Rows(o *combination.Outcome) [][]string {
	rows := make([][]string, 0, o.Count())
	for i := range o.Combinations {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			Members(o, i),
			Plain(o.Total(i)),
		})
	}
	return rows
}

// Members lists combination i as "ID (amount); ID (amount)".
func Members(o *combination.Outcome, i int) string {
	members := o.Members(i)
	parts := make([]string, len(members))
	for k, inv := range members {
		parts[k] = fmt.Sprintf("%s (%s)", inv.ID, Plain(inv.Amount))
	}
	return strings.Join(parts, "; ")
}

// WriteCSV writes the header and one row per combination.
func WriteCSV(w io.Writer, o *combination.Outcome) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writer.WriteAll(Rows(o)); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

// WriteXLSX writes the same table as WriteCSV into a single-sheet workbook.
// Totals are stored as text so their scale survives.
func WriteXLSX(w io.Writer, o *combination.Outcome) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "C1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, row := range Rows(o) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{i + 1, row[1], row[2]}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(SheetName, "B", "B", 60); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
