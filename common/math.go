package common

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round rounds half away from zero.
func Round(num float64) int {
	return int(num + math.Copysign(0.5, num))
}

// DecimalToFixed rounds num to precision decimal places.
func DecimalToFixed(num float64, precision int32) float64 {
	return decimal.NewFromFloat(num).Round(precision).InexactFloat64()
}

// FixedString formats num with at most precision decimal places and
// no trailing zeros, eg. FixedString(-116.2500004, 6) == "-116.25".
func FixedString(num float64, precision int32) string {
	return decimal.NewFromFloat(num).Round(precision).String()
}

// IsFinite reports whether f is neither NaN nor an infinity.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
