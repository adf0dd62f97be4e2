// Package types provides the numeric types used for money and quantities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// decimal.Decimal avoids floating-point drift in running balances.
type Money = decimal.Decimal

// Quantity is a stock or consumable quantity (fractional units such as kg or ltr are allowed).
type Quantity = decimal.Decimal

// NewMoney creates a Money value from a float.
// Prefer MustMoney/NewMoneyFromString for exact literals.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	return decimal.RequireFromString(s)
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Round2 rounds half away from zero to 2 decimal places.
func Round2(m Money) Money {
	return m.Round(2)
}

// MaxZero clamps negative values to zero.
func MaxZero(m Money) Money {
	if m.IsNegative() {
		return decimal.Zero
	}
	return m
}

// Min returns the smaller of a and b.
func Min(a, b Money) Money {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Sum adds all values.
func Sum(values ...Money) Money {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
