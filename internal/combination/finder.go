package combination

import (
	"context"

	"github.com/mohamed-kadi/invoice-combination-finder/internal/types"
	"github.com/shopspring/decimal"
)

// Find validates its input and returns every combination of invoices whose
// amounts sum exactly to target.
//
// Validation fails fast in this order: target, invoice list, invoice entries,
// size bounds, required ids. A minimum size larger than the invoice list is
// not an error; it yields an empty outcome.
func Find(target decimal.NullDecimal, invoices []types.RawInvoice, c Constraints) (*Outcome, error) {
	if err := CheckTarget(target); err != nil {
		return nil, err
	}

	canonical, err := Canonicalize(invoices)
	if err != nil {
		return nil, err
	}

	plan, err := ResolveConstraints(target.Decimal, c, canonical)
	if err != nil {
		return nil, err
	}

	return Aggregate(canonical, SearchIndices(canonical, plan)), nil
}

type findResult struct {
	outcome *Outcome
	err     error
}

// FindContext runs Find on its own goroutine and gives up waiting when ctx is
// done. The search itself is not interruptible: an abandoned search keeps
// running until it finishes and its result is dropped.
func FindContext(ctx context.Context, target decimal.NullDecimal, invoices []types.RawInvoice, c Constraints) (*Outcome, error) {
	done := make(chan findResult, 1)
	go func() {
		outcome, err := Find(target, invoices, c)
		done <- findResult{outcome: outcome, err: err}
	}()

	select {
	case r := <-done:
		return r.outcome, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
