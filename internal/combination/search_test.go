package combination

import (
	"fmt"
	"math/rand"
	"slices"
	"sort"
	"testing"

	"github.com/mohamed-kadi/invoice-combination-finder/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bruteForce enumerates all 2^n subsets of canonical and returns the index
// sequences that satisfy plan, sorted lexicographically.
func bruteForce(canonical []Invoice, plan Plan) [][]int {
	var out [][]int
	n := len(canonical)
	for mask := 1; mask < 1<<n; mask++ {
		var idx []int
		sum := decimal.Zero
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				idx = append(idx, i)
				sum = sum.Add(canonical[i].Amount)
			}
		}
		if !sum.Equal(plan.Target) {
			continue
		}
		ids := make([]string, len(idx))
		for k, i := range idx {
			ids[k] = canonical[i].ID
		}
		if plan.accepts(ids) {
			out = append(out, idx)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		return slices.Compare(out[a], out[b]) < 0
	})
	return out
}

func randomCase(rng *rand.Rand) ([]types.RawInvoice, decimal.Decimal, Constraints) {
	n := 4 + rng.Intn(8)
	raw := make([]types.RawInvoice, n)
	for i := range raw {
		// Tenths between 0.5 and 6.0 keep collisions frequent.
		cents := int64(5+rng.Intn(56)) * 10
		raw[i] = types.NewRawInvoice(fmt.Sprintf("INV-%02d", i), decimal.New(cents, -2))
	}
	target := decimal.New(int64(10+rng.Intn(140))*10, -2)

	var c Constraints
	if rng.Intn(3) == 0 {
		c.MinSize = intPtr(1 + rng.Intn(3))
	}
	if rng.Intn(3) == 0 {
		lo := 1
		if c.MinSize != nil {
			lo = *c.MinSize
		}
		c.MaxSize = intPtr(lo + rng.Intn(3))
	}
	if rng.Intn(4) == 0 {
		c.RequiredIDs = []string{raw[rng.Intn(n)].ID}
	}
	return raw, target, c
}

func TestSearch_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 300; run++ {
		raw, target, c := randomCase(rng)

		canonical, err := Canonicalize(raw)
		require.NoError(t, err)
		plan, err := ResolveConstraints(target, c, canonical)
		require.NoError(t, err)

		got := Search(canonical, plan)

		position := make(map[string]int, len(canonical))
		for i, inv := range canonical {
			position[inv.ID] = i
		}
		gotIdx := make([][]int, len(got))
		for k, combo := range got {
			for _, id := range combo {
				gotIdx[k] = append(gotIdx[k], position[id])
			}
		}

		want := bruteForce(canonical, plan)
		if len(want) == 0 {
			assert.Empty(t, gotIdx, "run %d", run)
			continue
		}
		assert.Equal(t, want, gotIdx, "run %d: target %s constraints %+v", run, target, c)
	}
}

func TestSearch_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 200; run++ {
		raw, target, c := randomCase(rng)
		outcome, err := Find(decimal.NewNullDecimal(target), raw, c)
		require.NoError(t, err)

		again, err := Find(decimal.NewNullDecimal(target), raw, c)
		require.NoError(t, err)
		assert.Equal(t, outcome.Combinations, again.Combinations, "determinism")

		seen := map[string]bool{}
		for k, combo := range outcome.Combinations {
			assert.True(t, outcome.Total(k).Equal(target), "sum exactness")
			assert.GreaterOrEqual(t, len(combo), 1)
			if c.MinSize != nil {
				assert.GreaterOrEqual(t, len(combo), *c.MinSize)
			}
			if c.MaxSize != nil {
				assert.LessOrEqual(t, len(combo), *c.MaxSize)
			}
			for _, id := range c.RequiredIDs {
				assert.Contains(t, combo, id)
			}

			key := slices.Clone(combo)
			slices.Sort(key)
			k := fmt.Sprint(key)
			assert.False(t, seen[k], "duplicate combination %v", combo)
			seen[k] = true
		}
	}
}

func TestSearch_RecordedCombinationsDoNotAlias(t *testing.T) {
	canonical, err := Canonicalize(invoices("A", "1", "B", "1", "C", "1", "D", "2"))
	require.NoError(t, err)
	plan, err := ResolveConstraints(decimal.NewFromInt(2), Constraints{}, canonical)
	require.NoError(t, err)

	got := Search(canonical, plan)
	assert.Equal(t, []Combination{
		{"A", "B"}, {"A", "C"}, {"B", "C"}, {"D"},
	}, got)
}

func TestSearchIndices_KeepsRepeatedIDsApart(t *testing.T) {
	canonical, err := Canonicalize(invoices("DUP", "4", "DUP", "3"))
	require.NoError(t, err)
	plan, err := ResolveConstraints(decimal.NewFromInt(7), Constraints{}, canonical)
	require.NoError(t, err)

	assert.Equal(t, [][]int{{0, 1}}, SearchIndices(canonical, plan))
	assert.Equal(t, []Combination{{"DUP", "DUP"}}, Search(canonical, plan))
}

func TestSearch_MaxSizeStopsDescent(t *testing.T) {
	canonical, err := Canonicalize(invoices("A", "1", "B", "1", "C", "1", "D", "3"))
	require.NoError(t, err)
	plan, err := ResolveConstraints(decimal.NewFromInt(3), Constraints{MaxSize: intPtr(1)}, canonical)
	require.NoError(t, err)

	assert.Equal(t, []Combination{{"D"}}, Search(canonical, plan))
}

func TestCanonicalize_SortsByAmountThenID(t *testing.T) {
	got, err := Canonicalize(invoices("b", "2", " a ", "2", "z", "1.5", "c", "10"))
	require.NoError(t, err)

	var ids []string
	for _, inv := range got {
		ids = append(ids, inv.ID)
	}
	assert.Equal(t, []string{"z", "a", "b", "c"}, ids)
}

func TestSanitizeIDs(t *testing.T) {
	assert.Nil(t, SanitizeIDs(nil))
	assert.Equal(t, []string{"B", "A"}, SanitizeIDs([]string{" B", "", "A", "B ", "  "}))
}
