package combination

import "github.com/shopspring/decimal"

// Outcome is what one Find call produces.
type Outcome struct {
	// Combinations in search order. Empty, never nil, when nothing matched.
	Combinations []Combination

	// Picks holds, for each combination, the positions of its members in
	// Invoices.
	Picks [][]int

	// Invoices is the canonical list the search ran over.
	Invoices []Invoice

	// AmountByID maps every canonical id to its amount. When the same id
	// appears more than once the later canonical entry wins.
	AmountByID map[string]decimal.Decimal
}

// Aggregate packages the combinations found as canonical positions with the
// id -> amount lookup built from the canonical list.
func Aggregate(canonical []Invoice, picks [][]int) *Outcome {
	amounts := make(map[string]decimal.Decimal, len(canonical))
	for _, inv := range canonical {
		amounts[inv.ID] = inv.Amount
	}
	if picks == nil {
		picks = [][]int{}
	}

	combinations := make([]Combination, len(picks))
	for i, pick := range picks {
		combinations[i] = idsAt(canonical, pick)
	}

	return &Outcome{
		Combinations: combinations,
		Picks:        picks,
		Invoices:     canonical,
		AmountByID:   amounts,
	}
}

// Count returns the number of combinations found.
func (o *Outcome) Count() int {
	return len(o.Combinations)
}

// Members returns the invoices of combination i in selection order. Amounts
// are the ones each member was selected with, so repeated ids keep their own
// amounts.
func (o *Outcome) Members(i int) []Invoice {
	members := make([]Invoice, len(o.Picks[i]))
	for k, index := range o.Picks[i] {
		members[k] = o.Invoices[index]
	}
	return members
}

// Total sums the amounts of combination i. It always equals the target.
func (o *Outcome) Total(i int) decimal.Decimal {
	total := decimal.Zero
	for _, inv := range o.Members(i) {
		total = total.Add(inv.Amount)
	}
	return total
}
