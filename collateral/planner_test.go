package collateral

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"
)

// TestSubsetSums checks the power-set sum enumeration.
func TestSubsetSums(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		amounts  []btcutil.Amount
		expected []btcutil.Amount
		err      error
	}{
		{
			name:     "two deposits",
			amounts:  []btcutil.Amount{10, 20},
			expected: []btcutil.Amount{0, 10, 20, 30},
		},
		{
			name:     "no deposits",
			amounts:  nil,
			expected: []btcutil.Amount{0},
		},
		{
			name:     "duplicate sums collapse",
			amounts:  []btcutil.Amount{10, 10},
			expected: []btcutil.Amount{0, 10, 20},
		},
		{
			name:    "three deposits",
			amounts: []btcutil.Amount{1, 2, 4},
			expected: []btcutil.Amount{
				0, 1, 2, 3, 4, 5, 6, 7,
			},
		},
		{
			name:    "negative amount",
			amounts: []btcutil.Amount{10, -5},
			err:     ErrInvalidAmount,
		},
		{
			name:    "zero amount",
			amounts: []btcutil.Amount{0},
			err:     ErrInvalidAmount,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sums, err := SubsetSums(tc.amounts)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.expected, sums)
		})
	}
}

// TestSubsetSumsBound checks the guarded deposit cardinality.
func TestSubsetSumsBound(t *testing.T) {
	t.Parallel()

	amounts := make([]btcutil.Amount, MaxDeposits+1)
	for i := range amounts {
		amounts[i] = btcutil.Amount(i + 1)
	}

	_, err := SubsetSums(amounts)
	require.ErrorIs(t, err, ErrTooManyDeposits)

	// Exactly MaxDeposits is accepted.
	_, err = SubsetSums(amounts[:MaxDeposits])
	require.NoError(t, err)
}

// TestMaxCombinable checks that the full total matches the maximum subset
// sum.
func TestMaxCombinable(t *testing.T) {
	t.Parallel()

	amounts := []btcutil.Amount{5, 7, 11}

	total, err := MaxCombinable(amounts)
	require.NoError(t, err)
	require.Equal(t, btcutil.Amount(23), total)

	sums, err := SubsetSums(amounts)
	require.NoError(t, err)
	require.Equal(t, total, sums[len(sums)-1])

	_, err = MaxCombinable([]btcutil.Amount{-1})
	require.ErrorIs(t, err, ErrInvalidAmount)
}

// TestAmounts checks deposit extraction and duplicate source detection.
func TestAmounts(t *testing.T) {
	t.Parallel()

	deposits := []Deposit{
		{Amount: 100, SourceID: "tx1"},
		{Amount: 200, SourceID: "tx2"},
	}

	amounts, err := Amounts(deposits)
	require.NoError(t, err)
	require.Equal(t, []btcutil.Amount{100, 200}, amounts)

	_, err = Amounts(append(deposits, Deposit{
		Amount: 300, SourceID: "tx1",
	}))
	require.ErrorIs(t, err, ErrDuplicateDeposit)
}

// TestBoundedSteps checks the compression of the achievable-sum set.
func TestBoundedSteps(t *testing.T) {
	t.Parallel()

	sums := []btcutil.Amount{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

	testCases := []struct {
		name     string
		maxSteps int
		expected []btcutil.Amount
	}{
		{
			name:     "no compression needed",
			maxSteps: 20,
			expected: sums,
		},
		{
			name:     "exact fit",
			maxSteps: 11,
			expected: sums,
		},
		{
			name:     "even sampling",
			maxSteps: 3,
			expected: []btcutil.Amount{0, 50, 100},
		},
		{
			name:     "extremes always survive",
			maxSteps: 2,
			expected: []btcutil.Amount{0, 100},
		},
		{
			name:     "single slot still brackets the range",
			maxSteps: 1,
			expected: []btcutil.Amount{0, 100},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			steps := BoundedSteps(sums, tc.maxSteps)
			require.Equal(t, tc.expected, steps)

			// Every step must come from the input set.
			for _, step := range steps {
				require.Contains(t, sums, step)
			}
		})
	}

	// Degenerate inputs.
	require.Nil(t, BoundedSteps(nil, 5))
	require.Equal(
		t, []btcutil.Amount{0},
		BoundedSteps([]btcutil.Amount{0}, 5),
	)
}
