// Package calculator contains the pure tax and compliance computations.
// Every function here is deterministic: it takes aggregated inputs and a
// statutory parameter table and returns a result without touching clocks,
// databases, or global state. Services do the aggregation and pass euros in
// as decimals.
package calculator

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// FromCents converts a euro-cent amount into a decimal euro amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(hundred)
}

// ToCents converts a decimal euro amount to cents, rounding half up.
func ToCents(euros decimal.Decimal) int64 {
	return euros.Mul(hundred).Round(0).IntPart()
}

// euros rounds a decimal to two places, half up.
func euros(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// ratio divides a by b, returning zero when b is zero.
func ratio(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b).Round(4)
}
