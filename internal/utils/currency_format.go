package utils

import (
	"github.com/shopspring/decimal"
)

// FormatTicks renders an integer amount of smallest units with the precision implied by scale.
// Example: 12345 ticks at scale 1000 returns "12.345"
// Example: 7 shares at scale 1 returns "7"
func FormatTicks(ticks int64, scale int64) string {
	if scale <= 1 {
		return decimal.NewFromInt(ticks).String()
	}
	return decimal.NewFromInt(ticks).
		Div(decimal.NewFromInt(scale)).
		StringFixed(PrecisionOf(scale))
}

// PrecisionOf returns the number of decimal places a power-of-ten scale represents.
func PrecisionOf(scale int64) int32 {
	var p int32
	for scale >= 10 {
		scale /= 10
		p++
	}
	return p
}

// TicksFromDecimal converts a decimal amount of whole units into ticks, rounding half away from zero.
func TicksFromDecimal(amount decimal.Decimal, scale int64) int64 {
	return amount.Mul(decimal.NewFromInt(scale)).Round(0).IntPart()
}
