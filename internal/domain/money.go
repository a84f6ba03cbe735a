package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// Epsilon is the tolerance used when checking derived monetary invariants,
// e.g. total_invested == quantity × average_price.
var Epsilon = decimal.New(1, -9) // 1e-9

// ParseAmount converts a float64 monetary value to a decimal. It validates
// that the input is finite, strictly positive, and has at most 2 decimal
// places, returning a ValidationError otherwise.
func ParseAmount(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, &ValidationError{Message: "amount must be a finite number"}
	}
	d := decimal.NewFromFloat(f)
	if !d.IsPositive() {
		return decimal.Zero, &ValidationError{Message: "amount must be greater than 0"}
	}
	if !d.Equal(d.Truncate(2)) {
		return decimal.Zero, &ValidationError{Message: "amount must have at most 2 decimal places"}
	}
	return d, nil
}

// WithinEpsilon reports whether two decimals differ by less than Epsilon.
func WithinEpsilon(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(Epsilon)
}
