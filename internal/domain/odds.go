package domain

import (
	"regexp"

	"github.com/shopspring/decimal"
)

var (
	oddsPattern = regexp.MustCompile(`^[+-]\d+$`)
	hundred     = decimal.NewFromInt(100)
)

// ValidOdds reports whether s is a well-formed American odds string.
// Creation must gate on this before projecting, otherwise zero-profit odds
// spin the projection loop up to its ceiling for nothing.
func ValidOdds(s string) bool {
	return oddsPattern.MatchString(s)
}

// Profit converts a stake and an American odds string into the profit paid
// out if the wager wins, rounded to 2 decimal places. Positive odds pay
// stake*N/100, negative odds pay stake/(N/100). Malformed odds yield zero
// instead of an error so display paths never break on bad input.
func Profit(stake decimal.Decimal, odds string) decimal.Decimal {
	if len(odds) < 2 {
		return decimal.Zero
	}

	sign := odds[0]
	if sign != '+' && sign != '-' {
		return decimal.Zero
	}

	magnitude, err := decimal.NewFromString(odds[1:])
	if err != nil || magnitude.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	ratio := magnitude.Div(hundred)
	if sign == '+' {
		return stake.Mul(ratio).Round(2)
	}

	return stake.Div(ratio).Round(2)
}
