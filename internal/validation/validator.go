// =============================================================================
// Invoice Combination Finder - Request Validation
// =============================================================================
//
// This module checks the shape of an incoming search request before it reaches
// the combination engine. It reports every field problem at once so a client
// can fix a form in one round trip. The engine re-checks the same rules and
// stops at the first violation; this layer is only about better messages.
//
// FIELDS CHECKED (in this order):
//   1. target                  - required, greater than zero
//   2. invoices                - at least one entry
//   3. invoices[i].id          - not blank
//   4. invoices[i].amount      - required, greater than zero
//   5. minInvoices/maxInvoices - greater than zero when set
//   6. requiredInvoiceIds[i]   - not blank
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/mohamed-kadi/invoice-combination-finder/internal/types"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// FieldError represents a single field that failed validation.
type FieldError struct {
	// Field is the JSON path of the offending field, e.g. "invoices[2].amount".
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// Result contains the field errors of one request, in check order.
type Result struct {
	Errors []*FieldError
}

// IsValid is true if no field failed.
func (r *Result) IsValid() bool {
	return len(r.Errors) == 0
}

// ByField groups messages per field.
func (r *Result) ByField() map[string][]string {
	out := make(map[string][]string, len(r.Errors))
	for _, e := range r.Errors {
		out[e.Field] = append(out[e.Field], e.Message)
	}
	return out
}

// Error joins every field error, making Result usable as an error.
func (r *Result) Error() string {
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = e.Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (r *Result) add(field, message string) {
	r.Errors = append(r.Errors, &FieldError{Field: field, Message: message})
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// ValidateRequest checks every field of req.
//
// RETURNS:
//   - nil if the request is well formed.
//   - A *Result listing every field error otherwise.
func ValidateRequest(req *types.CombinationRequest) *Result {
	result := &Result{}

	if !req.Target.Valid {
		result.add("target", "Target amount is required")
	} else if !req.Target.Decimal.IsPositive() {
		result.add("target", "Target must be greater than zero")
	}

	if len(req.Invoices) == 0 {
		result.add("invoices", "At least one invoice is required")
	}
	for i, inv := range req.Invoices {
		validateInvoice(result, i, inv)
	}

	validateCount(result, "minInvoices", "Minimum", req.MinInvoices)
	validateCount(result, "maxInvoices", "Maximum", req.MaxInvoices)

	for i, id := range req.RequiredInvoiceIDs {
		if strings.TrimSpace(id) == "" {
			result.add(fmt.Sprintf("requiredInvoiceIds[%d]", i), "Required invoice ids cannot be blank")
		}
	}

	if result.IsValid() {
		return nil
	}
	return result
}

// validateInvoice checks a single invoice entry.
func validateInvoice(result *Result, index int, inv types.RawInvoice) {
	if strings.TrimSpace(inv.ID) == "" {
		result.add(fmt.Sprintf("invoices[%d].id", index), "Invoice id is required")
	}

	field := fmt.Sprintf("invoices[%d].amount", index)
	switch {
	case !inv.Amount.Valid:
		result.add(field, "Invoice amount is required")
	case !inv.Amount.Decimal.IsPositive():
		result.add(field, "Invoice amounts must be greater than zero")
	}
}

// validateCount checks an optional size bound.
func validateCount(result *Result, field, label string, value *int) {
	if value != nil && *value <= 0 {
		result.add(field, label+" invoice count must be greater than zero")
	}
}
