package combination

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Combination is one subset of invoice ids, in the order the search picked
// them (canonical order).
type Combination []string

// frame is one level of the explicit depth-first stack. Frame k (k > 0) was
// entered by appending one index to the path, so the path always holds
// len(stack)-1 indices while a frame is live.
type frame struct {
	next      int
	remaining decimal.Decimal
}

// Search enumerates every combination of the canonical list whose amounts sum
// exactly to plan.Target and that satisfies the plan's size and required-id
// rules. See SearchIndices for the traversal.
func Search(canonical []Invoice, plan Plan) []Combination {
	picks := SearchIndices(canonical, plan)
	results := make([]Combination, len(picks))
	for i, pick := range picks {
		results[i] = idsAt(canonical, pick)
	}
	return results
}

// SearchIndices is Search reporting each combination as the positions of its
// members in canonical. Positions stay unambiguous when ids repeat.
//
// Results come out in lexicographic order of canonical index sequences. The
// traversal is the classic recursive backtracking unrolled onto a slice so
// long invoice lists cannot exhaust the goroutine stack:
//
//   - a candidate whose amount exceeds what is left stops the scan of its
//     level, since every later candidate is at least as large;
//   - a path that reaches zero is checked and recorded, never extended;
//   - a path already at the maximum size is not extended.
//
// canonical must be sorted as returned by Canonicalize.
func SearchIndices(canonical []Invoice, plan Plan) [][]int {
	results := [][]int{}
	if plan.Unsatisfiable(len(canonical)) {
		return results
	}

	path := make([]int, 0, len(canonical))
	stack := []frame{{next: 0, remaining: plan.Target}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]

		if top.next >= len(canonical) || canonical[top.next].Amount.GreaterThan(top.remaining) {
			stack = stack[:len(stack)-1]
			if len(stack) > 0 {
				path = path[:len(path)-1]
			}
			continue
		}

		index := top.next
		top.next++
		remaining := top.remaining.Sub(canonical[index].Amount)
		path = append(path, index)

		switch {
		case remaining.IsZero():
			if plan.accepts(idsAt(canonical, path)) {
				results = append(results, slices.Clone(path))
			}
			path = path[:len(path)-1]
		case plan.Bounded() && len(path) >= plan.MaxSize:
			path = path[:len(path)-1]
		default:
			stack = append(stack, frame{next: top.next, remaining: remaining})
		}
	}

	return results
}

func idsAt(canonical []Invoice, indices []int) Combination {
	ids := make(Combination, len(indices))
	for i, index := range indices {
		ids[i] = canonical[index].ID
	}
	return ids
}

// accepts applies the size bounds and required-id rule to a path that sums
// to the target.
func (p Plan) accepts(path []string) bool {
	if len(path) < p.MinSize {
		return false
	}
	if p.Bounded() && len(path) > p.MaxSize {
		return false
	}
	for _, id := range p.RequiredIDs {
		if !slices.Contains(path, id) {
			return false
		}
	}
	return true
}
