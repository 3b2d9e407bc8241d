// Package combination finds every subset of a set of invoices whose amounts
// add up exactly to a target amount.
//
// A call flows through four stages, leaves first:
//
//	raw invoices -> Canonicalize      (validate, trim ids, sort by amount then id)
//	             -> ResolveConstraints (size bounds, required ids)
//	             -> Search            (depth-first enumeration with pruning)
//	             -> Aggregate         (combinations + id -> amount lookup)
//
// All arithmetic uses shopspring/decimal so the "remaining == 0" test is exact.
// Nothing is shared between calls; Find may be used from any number of
// goroutines at once.
package combination
