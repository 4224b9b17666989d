// Package currency formats money for display. Formatting is a presentation
// concern: core state always stays in decimal form.
package currency

import "github.com/shopspring/decimal"

// USD renders a value as "$" plus two fixed decimal places.
func USD(value decimal.Decimal) string {
	return "$" + value.StringFixed(2)
}
