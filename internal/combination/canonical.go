package combination

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/mohamed-kadi/invoice-combination-finder/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice is a validated invoice: trimmed, non-blank id and a strictly
// positive amount.
type Invoice struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
}

// Canonicalize validates raw entries, trims every id and returns the entries
// sorted by amount ascending, then id ascending.
//
// The search relies on this order: amounts never decrease along the list, so
// the first candidate that overshoots the remaining amount ends the scan.
// Duplicate ids are kept as distinct entries.
func Canonicalize(raw []types.RawInvoice) ([]Invoice, error) {
	if len(raw) == 0 {
		return nil, reject(ErrInvalidInvoiceList, "Invoice list cannot be empty.")
	}

	invoices := make([]Invoice, 0, len(raw))
	for i, entry := range raw {
		if !entry.Amount.Valid || !entry.Amount.Decimal.IsPositive() {
			return nil, reject(ErrInvalidInvoiceEntry,
				fmt.Sprintf("Invoice amounts must be greater than zero (entry %d).", i+1))
		}
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			return nil, reject(ErrInvalidInvoiceEntry,
				fmt.Sprintf("Invoice id is required (entry %d).", i+1))
		}
		invoices = append(invoices, Invoice{ID: id, Amount: entry.Amount.Decimal})
	}

	slices.SortStableFunc(invoices, compareInvoices)
	return invoices, nil
}

func compareInvoices(a, b Invoice) int {
	if c := a.Amount.Cmp(b.Amount); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
