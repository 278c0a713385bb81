// Package mathutil provides common mathematical utility functions for won
// amounts.
package mathutil

import (
	"math"

	"github.com/iwvelando/property-tax/pkg/constants"
	"github.com/shopspring/decimal"
)

var (
	roundingUnit     = decimal.NewFromInt(constants.RoundingUnit)
	hundred          = decimal.NewFromInt(constants.PercentageMultiplier)
	installmentShare = decimal.NewFromInt(1).Div(decimal.NewFromInt(constants.InstallmentsPerYear))

	// largestUnit is the largest multiple of ten won an int64 can hold.
	largestUnit = FloorToUnitDecimal(decimal.NewFromInt(math.MaxInt64))
)

// Won converts an integer won amount into a decimal.
func Won(amount int64) decimal.Decimal {
	return decimal.NewFromInt(amount)
}

// Truncate drops the fractional won from an amount. It never rounds up.
func Truncate(amount decimal.Decimal) int64 {
	return amount.Floor().IntPart()
}

// FloorToUnit truncates an amount to the nearest lower multiple of ten won,
// i.e. floor(amount / 10) * 10.
func FloorToUnit(amount decimal.Decimal) int64 {
	return FloorToUnitDecimal(amount).IntPart()
}

// FloorToUnitDecimal is FloorToUnit without the conversion to int64.
func FloorToUnitDecimal(amount decimal.Decimal) decimal.Decimal {
	return amount.Div(roundingUnit).Floor().Mul(roundingUnit)
}

// SaturateToUnit converts a non-negative multiple of ten won to int64,
// clamping values an int64 cannot hold to the largest multiple of ten.
func SaturateToUnit(amount decimal.Decimal) int64 {
	if amount.GreaterThan(largestUnit) {
		return largestUnit.IntPart()
	}
	return amount.IntPart()
}

// ApplyRate multiplies an integer amount by a rate and floors the product to
// ten won.
func ApplyRate(amount int64, rate decimal.Decimal) int64 {
	return FloorToUnit(Won(amount).Mul(rate))
}

// Halve returns one installment of an annual amount,
// floor(amount / InstallmentsPerYear / 10) * 10. Each installment is floored
// on its own, so the installments can fall short of the annual figure.
func Halve(amount int64) int64 {
	return FloorToUnit(Won(amount).Mul(installmentShare))
}

// IsUnitMultiple reports whether an amount is a non-negative multiple of ten won.
func IsUnitMultiple(amount int64) bool {
	return amount >= 0 && amount%constants.RoundingUnit == 0
}

// Percent expresses a ratio such as 0.43 as a whole percentage (43).
func Percent(ratio decimal.Decimal) int64 {
	return ratio.Mul(hundred).Round(0).IntPart()
}

