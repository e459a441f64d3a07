package utxo

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"
)

// TestFilterDust checks the strict dust boundary and the stability of the
// filter.
func TestFilterDust(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		values    []btcutil.Amount
		threshold btcutil.Amount
		expected  []btcutil.Amount
	}{
		{
			name:      "value equal to threshold is dust",
			values:    []btcutil.Amount{10_000},
			threshold: DefaultDustThreshold,
			expected:  []btcutil.Amount{},
		},
		{
			name:      "value above threshold is kept",
			values:    []btcutil.Amount{10_001},
			threshold: DefaultDustThreshold,
			expected:  []btcutil.Amount{10_001},
		},
		{
			name:      "order is preserved",
			values:    []btcutil.Amount{50_000, 1, 20_000, 9_999},
			threshold: DefaultDustThreshold,
			expected:  []btcutil.Amount{50_000, 20_000},
		},
		{
			name:      "empty input",
			values:    nil,
			threshold: DefaultDustThreshold,
			expected:  []btcutil.Amount{},
		},
		{
			name:      "zero threshold keeps positive values",
			values:    []btcutil.Amount{0, 1},
			threshold: 0,
			expected:  []btcutil.Amount{1},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			outputs := make([]Output, len(tc.values))
			for i, v := range tc.values {
				outputs[i] = Output{
					TxID:  "aa",
					Vout:  uint32(i),
					Value: v,
				}
			}

			filtered := FilterDust(outputs, tc.threshold)

			values := make([]btcutil.Amount, 0, len(filtered))
			for _, o := range filtered {
				values = append(values, o.Value)
			}
			require.Equal(t, tc.expected, values)
		})
	}
}

// TestOutPoint checks parsing of the output identity into a wire outpoint.
func TestOutPoint(t *testing.T) {
	t.Parallel()

	// A well-formed 32-byte hex hash parses.
	output := Output{
		TxID: "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3" +
			"f1b60a8ce26f",
		Vout: 7,
	}
	op, err := output.OutPoint()
	require.NoError(t, err)
	require.Equal(t, uint32(7), op.Index)
	require.Equal(t, output.TxID, op.Hash.String())

	// A malformed ID is rejected.
	bad := Output{TxID: "not-a-hash", Vout: 0}
	_, err = bad.OutPoint()
	require.Error(t, err)
}

// TestIsRelayDust checks the relay-policy dust helper against values that
// are unambiguously on either side of the policy threshold.
func TestIsRelayDust(t *testing.T) {
	t.Parallel()

	require.True(t, IsRelayDust(100))
	require.False(t, IsRelayDust(10_000))
}
