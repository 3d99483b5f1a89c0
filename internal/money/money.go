// Package money holds the rounding rules shared by the calculators. All
// arithmetic is done in decimal and converted to float64 only for storage.
package money

import "github.com/shopspring/decimal"

// Amount rounds a currency value to paise.
func Amount(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// Hours rounds a duration in hours to one decimal place.
func Hours(d decimal.Decimal) float64 {
	return d.Round(1).InexactFloat64()
}

// Of converts a stored float64 into a decimal.
func Of(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// Count converts an integer quantity (days, kilometres) into a decimal.
func Count(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

// PositivePart returns max(0, d).
func PositivePart(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
