// =============================================================================
// Invoice Combination Finder - Result Export
// =============================================================================
//
// This module turns a search outcome into what users actually receive:
//
//   - View         : the structured response (HTTP JSON body, CLI json/yaml)
//   - WriteCSV     : one row per combination, for spreadsheets
//   - WriteXLSX    : the same three columns in a workbook
//   - Render       : format dispatch used by the CLI
//
// CSV / XLSX ROW LAYOUT:
//
//   | Combination | Invoice IDs                  | Total Amount |
//   |-------------|------------------------------|--------------|
//   | 1           | INV-1 (10.00); INV-3 (5.00)  | 15.00        |
//
// Amounts are always written in plain notation with the scale they were given in.
//
// =============================================================================

package export

import (
	"github.com/mohamed-kadi/invoice-combination-finder/internal/combination"
)

// View is the structured form of an outcome.
type View struct {
	Combinations     [][]string        `json:"combinations" yaml:"combinations"`
	CombinationCount int               `json:"combinationCount" yaml:"combinationCount"`
	InvoiceAmounts   map[string]Amount `json:"invoiceAmounts" yaml:"invoiceAmounts"`
}

// NewView builds the structured form of o. Combinations is never nil so it
// encodes as [] rather than null.
func NewView(o *combination.Outcome) View {
	combos := make([][]string, len(o.Combinations))
	for i, c := range o.Combinations {
		combos[i] = []string(c)
	}

	amounts := make(map[string]Amount, len(o.AmountByID))
	for id, amount := range o.AmountByID {
		amounts[id] = Amount{amount}
	}

	return View{
		Combinations:     combos,
		CombinationCount: o.Count(),
		InvoiceAmounts:   amounts,
	}
}
