package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestProfit(t *testing.T) {
	tests := []struct {
		name     string
		stake    string
		odds     string
		expected string
	}{
		{
			name:     "positive odds pay stake times N/100",
			stake:    "100",
			odds:     "+150",
			expected: "150",
		},
		{
			name:     "even odds double the stake",
			stake:    "25",
			odds:     "+100",
			expected: "25",
		},
		{
			name:     "negative odds pay stake over N/100",
			stake:    "100",
			odds:     "-110",
			expected: "90.91",
		},
		{
			name:     "negative odds round to cents",
			stake:    "33",
			odds:     "-300",
			expected: "11",
		},
		{
			name:     "positive odds round half up",
			stake:    "37.5",
			odds:     "+125",
			expected: "46.88",
		},
		{
			name:     "empty string falls back to zero",
			stake:    "100",
			odds:     "",
			expected: "0",
		},
		{
			name:     "bare sign falls back to zero",
			stake:    "100",
			odds:     "+",
			expected: "0",
		},
		{
			name:     "missing sign falls back to zero",
			stake:    "100",
			odds:     "150",
			expected: "0",
		},
		{
			name:     "non-numeric magnitude falls back to zero",
			stake:    "100",
			odds:     "+abc",
			expected: "0",
		},
		{
			name:     "garbage falls back to zero",
			stake:    "100",
			odds:     "abc",
			expected: "0",
		},
		{
			name:     "zero magnitude falls back to zero",
			stake:    "100",
			odds:     "+0",
			expected: "0",
		},
		{
			name:     "negative magnitude falls back to zero",
			stake:    "100",
			odds:     "+-50",
			expected: "0",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stake, err := decimal.NewFromString(tc.stake)
			require.NoError(t, err)

			got := Profit(stake, tc.odds)
			require.True(t, got.Equal(decimal.RequireFromString(tc.expected)),
				"expected %s, got %s", tc.expected, got.String())
		})
	}
}

func TestProfitIsPure(t *testing.T) {
	stake := decimal.NewFromInt(100)
	first := Profit(stake, "-110")
	second := Profit(stake, "-110")
	require.True(t, first.Equal(second))
}

func TestValidOdds(t *testing.T) {
	valid := []string{"+150", "-110", "+1", "-9999", "+0"}
	for _, s := range valid {
		require.True(t, ValidOdds(s), "expected %q to be valid", s)
	}

	invalid := []string{"", "+", "-", "150", "abc", "+abc", "+1.5", "++100", "+150 ", " -110", "+-50"}
	for _, s := range invalid {
		require.False(t, ValidOdds(s), "expected %q to be invalid", s)
	}
}
