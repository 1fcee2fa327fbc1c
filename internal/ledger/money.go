package ledger

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Round2 rounds an amount to cents for output. Sums are kept at full
// precision until this point.
func Round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// Percent returns part/whole*100, or zero when whole is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// Amount converts a stored float column into a decimal.
func Amount(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
