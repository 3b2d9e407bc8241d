package combination

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mohamed-kadi/invoice-combination-finder/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func invoices(pairs ...string) []types.RawInvoice {
	out := make([]types.RawInvoice, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, types.RawInvoice{ID: pairs[i], Amount: amount(pairs[i+1])})
	}
	return out
}

func intPtr(v int) *int { return &v }

func TestFind_Scenarios(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		invoices    []types.RawInvoice
		constraints Constraints
		want        []Combination
	}{
		{
			name:     "two pairs",
			target:   "15",
			invoices: invoices("INV-100", "10", "INV-200", "5", "INV-300", "7", "INV-400", "8"),
			want: []Combination{
				{"INV-200", "INV-100"},
				{"INV-300", "INV-400"},
			},
		},
		{
			name:     "duplicate amounts",
			target:   "20",
			invoices: invoices("INV-A1", "10", "INV-A2", "10", "INV-B1", "5", "INV-B2", "5"),
			want: []Combination{
				{"INV-B1", "INV-B2", "INV-A1"},
				{"INV-B1", "INV-B2", "INV-A2"},
				{"INV-A1", "INV-A2"},
			},
		},
		{
			name:     "no match",
			target:   "50",
			invoices: invoices("INV-1", "10", "INV-2", "15", "INV-3", "20"),
			want:     []Combination{},
		},
		{
			name:        "exact size two",
			target:      "15",
			invoices:    invoices("INV-100", "5", "INV-200", "5", "INV-300", "5", "INV-400", "10"),
			constraints: Constraints{MinSize: intPtr(2), MaxSize: intPtr(2)},
			want: []Combination{
				{"INV-100", "INV-400"},
				{"INV-200", "INV-400"},
				{"INV-300", "INV-400"},
			},
		},
		{
			name:        "required id",
			target:      "15",
			invoices:    invoices("INV-A", "5", "INV-B", "6", "INV-C", "9", "INV-D", "10"),
			constraints: Constraints{RequiredIDs: []string{"INV-A"}},
			want:        []Combination{{"INV-A", "INV-D"}},
		},
		{
			name:        "required id is trimmed and deduplicated",
			target:      "15",
			invoices:    invoices("INV-A", "5", "INV-B", "6", "INV-C", "9", "INV-D", "10"),
			constraints: Constraints{RequiredIDs: []string{" INV-A ", "", "INV-A", "   "}},
			want:        []Combination{{"INV-A", "INV-D"}},
		},
		{
			name:     "exact decimal arithmetic",
			target:   "0.3",
			invoices: invoices("X", "0.1", "Y", "0.2", "Z", "0.30"),
			want: []Combination{
				{"X", "Y"},
				{"Z"},
			},
		},
		{
			name:        "minimum larger than list is empty",
			target:      "10",
			invoices:    invoices("A", "5", "B", "5"),
			constraints: Constraints{MinSize: intPtr(3)},
			want:        []Combination{},
		},
		{
			name:     "ids are trimmed before sorting",
			target:   "3",
			invoices: invoices("  b ", "1", "a", "1", "c", "2"),
			want: []Combination{
				{"a", "c"},
				{"b", "c"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := Find(amount(tt.target), tt.invoices, tt.constraints)
			require.NoError(t, err)
			assert.Equal(t, tt.want, outcome.Combinations)
			assert.Equal(t, len(tt.want), outcome.Count())
		})
	}
}

func TestFind_ErrorKinds(t *testing.T) {
	valid := invoices("INV-1", "10", "INV-2", "5")

	tests := []struct {
		name        string
		target      decimal.NullDecimal
		invoices    []types.RawInvoice
		constraints Constraints
		wantKind    error
	}{
		{"missing target", decimal.NullDecimal{}, valid, Constraints{}, ErrInvalidTarget},
		{"zero target", amount("0"), valid, Constraints{}, ErrInvalidTarget},
		{"negative target", amount("-5"), valid, Constraints{}, ErrInvalidTarget},
		{"nil list", amount("5"), nil, Constraints{}, ErrInvalidInvoiceList},
		{"empty list", amount("5"), []types.RawInvoice{}, Constraints{}, ErrInvalidInvoiceList},
		{"blank id", amount("5"), invoices("   ", "5"), Constraints{}, ErrInvalidInvoiceEntry},
		{"missing amount", amount("5"), []types.RawInvoice{{ID: "INV-1"}}, Constraints{}, ErrInvalidInvoiceEntry},
		{"zero amount", amount("5"), invoices("INV-1", "0"), Constraints{}, ErrInvalidInvoiceEntry},
		{"negative amount", amount("5"), invoices("INV-1", "-1"), Constraints{}, ErrInvalidInvoiceEntry},
		{"zero minimum", amount("5"), valid, Constraints{MinSize: intPtr(0)}, ErrInvalidSizeBound},
		{"negative maximum", amount("5"), valid, Constraints{MaxSize: intPtr(-1)}, ErrInvalidSizeBound},
		{"maximum below minimum", amount("5"), valid, Constraints{MinSize: intPtr(3), MaxSize: intPtr(2)}, ErrInvalidSizeBound},
		{"required id absent", amount("5"), valid, Constraints{RequiredIDs: []string{"INV-9"}}, ErrMissingRequiredID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := Find(tt.target, tt.invoices, tt.constraints)
			require.Error(t, err)
			assert.Nil(t, outcome)
			assert.ErrorIs(t, err, tt.wantKind)
			assert.True(t, IsValidationError(err))
			assert.NotEmpty(t, err.Error())
		})
	}
}

func TestFind_FirstViolationWins(t *testing.T) {
	// Bad target and bad entry: target is reported.
	_, err := Find(amount("0"), invoices("", "0"), Constraints{MinSize: intPtr(-1)})
	assert.ErrorIs(t, err, ErrInvalidTarget)

	// Bad entry and bad bound: entry is reported.
	_, err = Find(amount("5"), invoices("INV-1", "0"), Constraints{MinSize: intPtr(-1)})
	assert.ErrorIs(t, err, ErrInvalidInvoiceEntry)

	// Bad bound and missing required id: bound is reported.
	_, err = Find(amount("5"), invoices("INV-1", "5"), Constraints{MaxSize: intPtr(0), RequiredIDs: []string{"nope"}})
	assert.ErrorIs(t, err, ErrInvalidSizeBound)
}

func TestFind_MissingRequiredIDMessageNamesIDs(t *testing.T) {
	_, err := Find(amount("5"), invoices("INV-1", "5"), Constraints{RequiredIDs: []string{"INV-1", "INV-7", "INV-8"}})
	require.ErrorIs(t, err, ErrMissingRequiredID)
	assert.Contains(t, err.Error(), "INV-7, INV-8")
	assert.NotContains(t, err.Error(), "INV-1,")
}

func TestFind_DuplicateIDsLastCanonicalEntryWins(t *testing.T) {
	outcome, err := Find(amount("7"), invoices("DUP", "4", "DUP", "3", "X", "4"), Constraints{})
	require.NoError(t, err)

	// Canonical order: DUP:3, DUP:4, X:4. Both DUP entries are usable.
	assert.Equal(t, []Combination{{"DUP", "DUP"}, {"DUP", "X"}}, outcome.Combinations)
	assert.True(t, decimal.RequireFromString("4").Equal(outcome.AmountByID["DUP"]))
	assert.Len(t, outcome.Invoices, 3)

	// Members and totals use the amount each entry was picked with.
	assert.Equal(t, [][]int{{0, 1}, {0, 2}}, outcome.Picks)
	members := outcome.Members(0)
	require.Len(t, members, 2)
	assert.Equal(t, "3", members[0].Amount.String())
	assert.Equal(t, "4", members[1].Amount.String())
	for i := range outcome.Combinations {
		assert.True(t, outcome.Total(i).Equal(decimal.NewFromInt(7)), "combination %d", i)
	}
}

func TestFind_AmountLookupCoversEveryInvoice(t *testing.T) {
	outcome, err := Find(amount("100"), invoices("A", "1", "B", "2.50"), Constraints{})
	require.NoError(t, err)
	assert.Empty(t, outcome.Combinations)
	assert.NotNil(t, outcome.Combinations)
	require.Len(t, outcome.AmountByID, 2)
	assert.Equal(t, "2.50", outcome.AmountByID["B"].StringFixed(2))
}

func TestFind_UnsatisfiableMinimumStillReturnsLookup(t *testing.T) {
	outcome, err := Find(amount("3"), invoices("A", "1", "B", "2"), Constraints{MinSize: intPtr(5)})
	require.NoError(t, err)
	assert.Empty(t, outcome.Combinations)
	assert.Len(t, outcome.AmountByID, 2)
}

func TestFind_DoesNotMutateInput(t *testing.T) {
	raw := invoices(" B ", "2", "A", "1")
	_, err := Find(amount("3"), raw, Constraints{})
	require.NoError(t, err)
	assert.Equal(t, " B ", raw[0].ID)
	assert.Equal(t, "A", raw[1].ID)
}

func TestFindContext_ReturnsOutcome(t *testing.T) {
	outcome, err := FindContext(context.Background(), amount("15"),
		invoices("INV-100", "10", "INV-200", "5"), Constraints{})
	require.NoError(t, err)
	assert.Equal(t, []Combination{{"INV-200", "INV-100"}}, outcome.Combinations)
}

func TestFindContext_ValidationErrorPassesThrough(t *testing.T) {
	_, err := FindContext(context.Background(), amount("0"), invoices("A", "1"), Constraints{})
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestFindContext_AbandonsOnDeadline(t *testing.T) {
	// 22 equal amounts, a target needing half of them and a minimum that no
	// match can meet: millions of nodes visited, nothing recorded.
	raw := make([]types.RawInvoice, 22)
	for i := range raw {
		raw[i] = types.NewRawInvoice(string(rune('A'+i)), decimal.NewFromInt(1))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := FindContext(ctx, amount("11"), raw, Constraints{MinSize: intPtr(12)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, IsValidationError(err))
}

func TestCheckSize(t *testing.T) {
	assert.NoError(t, CheckSize(5, 5))
	assert.NoError(t, CheckSize(500, 0))

	err := CheckSize(6, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooManyInvoices)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, "Too many invoices: 6 supplied, at most 5 allowed.", err.Error())
}
