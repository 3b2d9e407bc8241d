package combination

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Constraints are the optional filters a caller may put on combinations.
// A nil bound means "not set".
type Constraints struct {
	MinSize     *int
	MaxSize     *int
	RequiredIDs []string
}

// Plan is the resolved form of Constraints for one canonical list.
type Plan struct {
	// Target is the amount every combination must add up to.
	Target decimal.Decimal

	// MinSize is the effective minimum (1 when unset).
	MinSize int

	// MaxSize is the effective maximum; zero means unbounded.
	MaxSize int

	// RequiredIDs is the sanitized required-id list in first-seen order.
	RequiredIDs []string
}

// Bounded reports whether the plan caps combination size.
func (p Plan) Bounded() bool {
	return p.MaxSize > 0
}

// Unsatisfiable reports whether no combination can reach the minimum size,
// in which case the search is skipped and the outcome is empty.
func (p Plan) Unsatisfiable(listLen int) bool {
	return p.MinSize > listLen
}

// CheckTarget rejects a missing or non-positive target.
func CheckTarget(target decimal.NullDecimal) error {
	if !target.Valid {
		return reject(ErrInvalidTarget, "Target amount is required.")
	}
	if !target.Decimal.IsPositive() {
		return reject(ErrInvalidTarget, "Target amount must be greater than zero.")
	}
	return nil
}

// ResolveConstraints validates size bounds and required ids against the
// canonical list and returns the effective plan.
func ResolveConstraints(target decimal.Decimal, c Constraints, canonical []Invoice) (Plan, error) {
	if c.MinSize != nil && *c.MinSize <= 0 {
		return Plan{}, reject(ErrInvalidSizeBound, "Minimum invoice count must be greater than zero.")
	}
	if c.MaxSize != nil && *c.MaxSize <= 0 {
		return Plan{}, reject(ErrInvalidSizeBound, "Maximum invoice count must be greater than zero.")
	}
	if c.MinSize != nil && c.MaxSize != nil && *c.MaxSize < *c.MinSize {
		return Plan{}, reject(ErrInvalidSizeBound, "Maximum invoice count cannot be less than the minimum invoice count.")
	}

	required := SanitizeIDs(c.RequiredIDs)
	if len(required) > 0 {
		available := make(map[string]struct{}, len(canonical))
		for _, inv := range canonical {
			available[inv.ID] = struct{}{}
		}
		var missing []string
		for _, id := range required {
			if _, ok := available[id]; !ok {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			return Plan{}, reject(ErrMissingRequiredID, fmt.Sprintf(
				"One or more required invoice ids are not present in the invoice list: %s",
				strings.Join(missing, ", ")))
		}
	}

	plan := Plan{
		Target:      target,
		MinSize:     1,
		RequiredIDs: required,
	}
	if c.MinSize != nil {
		plan.MinSize = *c.MinSize
	}
	if c.MaxSize != nil {
		plan.MaxSize = *c.MaxSize
	}
	return plan, nil
}

// SanitizeIDs trims ids, drops blanks and removes duplicates while keeping
// first-seen order.
func SanitizeIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
