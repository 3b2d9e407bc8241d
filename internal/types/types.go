// =============================================================================
// Invoice Combination Finder - Shared Types
// =============================================================================
//
// This package contains types shared by the ingestion, validation and engine
// packages to avoid import cycles. Types defined here are used by:
//   - ingest      (spreadsheet rows -> raw invoices)
//   - validation  (request field checks)
//   - combination (canonicalization and search)
//   - server      (JSON request decoding)
//
// =============================================================================

package types

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// INVOICE TYPES
// =============================================================================

// RawInvoice is an invoice entry exactly as supplied by a caller.
// Nothing about it has been validated yet: the id may be blank or padded with
// whitespace and the amount may be missing or non-positive.
type RawInvoice struct {
	// ID is the invoice identifier as entered or read from a spreadsheet cell.
	ID string `json:"id" yaml:"id"`

	// Amount is the exact invoice amount. Valid is false when the amount was
	// absent (JSON null or missing field).
	Amount decimal.NullDecimal `json:"amount" yaml:"amount"`
}

// NewRawInvoice builds a RawInvoice with a present amount.
func NewRawInvoice(id string, amount decimal.Decimal) RawInvoice {
	return RawInvoice{
		ID:     id,
		Amount: decimal.NewNullDecimal(amount),
	}
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CombinationRequest is the structured form of a search request, used as the
// JSON body of POST /api/combinations and built from multipart fields for
// uploads.
type CombinationRequest struct {
	// Target is the amount every combination must sum to.
	Target decimal.NullDecimal `json:"target"`

	// Invoices is the candidate list.
	Invoices []RawInvoice `json:"invoices"`

	// MinInvoices and MaxInvoices bound combination size when set.
	MinInvoices *int `json:"minInvoices,omitempty"`
	MaxInvoices *int `json:"maxInvoices,omitempty"`

	// RequiredInvoiceIDs must appear in every combination.
	RequiredInvoiceIDs []string `json:"requiredInvoiceIds,omitempty"`
}
